package osmsource

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/paulmach/orb"
)

// NodeCache stores node coordinates keyed by NodeRef. The address pipeline
// owns one instance, filled by the Address Extractor from the Node events
// it sees; the Topology Builder keeps its coordinates in its own in-memory
// map instead of a NodeCache backend — this is the direct analogue of the
// original TopologyMigrator's self.way_nodes dict, generalized with a
// second backend for country-scale extracts (spec.md §5).
type NodeCache interface {
	// Set records the coordinate for id.
	Set(id NodeRef, lon, lat float64)
	// Get returns the coordinate for id and whether it was present.
	Get(id NodeRef) (orb.Point, bool)
	// Len reports how many coordinates are currently stored.
	Len() int
	// Close releases any backing resources (file handles).
	Close() error
}

// flexMemCache is the in-memory backend ("flex_mem" in spec.md §5): a plain
// map, fastest when the extract is small enough that all referenced node
// coordinates fit comfortably in RAM.
type flexMemCache struct {
	m map[NodeRef]orb.Point
}

// NewFlexMemCache returns a NodeCache backed by a Go map.
func NewFlexMemCache() NodeCache {
	return &flexMemCache{m: make(map[NodeRef]orb.Point)}
}

func (c *flexMemCache) Set(id NodeRef, lon, lat float64) {
	c.m[id] = orb.Point{lon, lat}
}

func (c *flexMemCache) Get(id NodeRef) (orb.Point, bool) {
	p, ok := c.m[id]
	return p, ok
}

func (c *flexMemCache) Len() int { return len(c.m) }

func (c *flexMemCache) Close() error { return nil }

// sparseFileCache is the on-disk backend ("sparse_file_array" in
// spec.md §5): a file addressed directly by node ID, 16 bytes per slot
// (two float64s), grown with os.Truncate as higher IDs are seen. Holes read
// back as zero bytes, and Get reports any slot holding (0,0) as unset, so a
// node located exactly at (0,0) is treated as missing. This trades RAM for
// disk I/O on country-scale extracts where
// every referenced node coordinate would not otherwise fit in memory.
type sparseFileCache struct {
	f       *os.File
	count   int
	slotLen int64
}

const sparseSlotSize = 16 // two float64s: lon, lat

// NewSparseFileCache opens (creating if needed) a sparse coordinate file at
// path, truncated to zero length.
func NewSparseFileCache(path string) (NodeCache, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("osmsource: open sparse cache file: %w", err)
	}
	return &sparseFileCache{f: f}, nil
}

func (c *sparseFileCache) offset(id NodeRef) int64 {
	return int64(id) * sparseSlotSize
}

func (c *sparseFileCache) ensureSize(off int64) error {
	need := off + sparseSlotSize
	fi, err := c.f.Stat()
	if err != nil {
		return err
	}
	if fi.Size() >= need {
		return nil
	}
	return c.f.Truncate(need)
}

func (c *sparseFileCache) Set(id NodeRef, lon, lat float64) {
	off := c.offset(id)
	if off < 0 {
		return
	}
	if err := c.ensureSize(off); err != nil {
		return
	}
	var buf [sparseSlotSize]byte
	binary.LittleEndian.PutUint64(buf[0:8], math.Float64bits(lon))
	binary.LittleEndian.PutUint64(buf[8:16], math.Float64bits(lat))
	if _, err := c.f.WriteAt(buf[:], off); err == nil {
		c.count++
	}
}

func (c *sparseFileCache) Get(id NodeRef) (orb.Point, bool) {
	off := c.offset(id)
	if off < 0 {
		return orb.Point{}, false
	}
	fi, err := c.f.Stat()
	if err != nil || fi.Size() < off+sparseSlotSize {
		return orb.Point{}, false
	}
	var buf [sparseSlotSize]byte
	if _, err := c.f.ReadAt(buf[:], off); err != nil {
		return orb.Point{}, false
	}
	lon := math.Float64frombits(binary.LittleEndian.Uint64(buf[0:8]))
	lat := math.Float64frombits(binary.LittleEndian.Uint64(buf[8:16]))
	if lon == 0 && lat == 0 {
		return orb.Point{}, false
	}
	return orb.Point{lon, lat}, true
}

func (c *sparseFileCache) Len() int { return c.count }

func (c *sparseFileCache) Close() error {
	name := c.f.Name()
	if err := c.f.Close(); err != nil {
		return err
	}
	return os.Remove(name)
}

// BuildLineString resolves a way's node refs into coordinates through
// cache, failing fast on the first missing location — the same contract
// the original's shapely-backed linestring factory enforced when a
// location handler hadn't cached one of a way's nodes.
func BuildLineString(cache NodeCache, refs []NodeRef) (orb.LineString, error) {
	ls := make(orb.LineString, 0, len(refs))
	for _, ref := range refs {
		pt, ok := cache.Get(ref)
		if !ok {
			return nil, fmt.Errorf("%w: node %d", ErrInvalidLocation, ref)
		}
		ls = append(ls, pt)
	}
	return ls, nil
}
