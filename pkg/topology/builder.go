package topology

import (
	"context"
	"fmt"
	"time"

	"github.com/exatel-oss/osmtopo/pkg/osmsource"
	"github.com/exatel-oss/osmtopo/pkg/stats"
	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

// DefaultChunkSize is the default batch size for flushing nodes and edges
// to the topology store (spec.md §5: "1000-5000").
const DefaultChunkSize = 2000

// Builder drives the Topology Builder (C2): a two-pass scan over a PBF
// source that detects intersection nodes, then emits split edges and
// vertex records to a Store.
type Builder struct {
	reader    *osmsource.Reader
	store     Store
	maxMeters float64
	chunkSize int
	stats     *stats.Counters
	log       *zap.Logger
}

// NewBuilder returns a Builder. maxMeters of 0 disables further
// subdivision by the Way Splitter (C1) — sub-ways are only cut at
// intersections.
func NewBuilder(reader *osmsource.Reader, store Store, maxMeters float64, log *zap.Logger) *Builder {
	return &Builder{
		reader:    reader,
		store:     store,
		maxMeters: maxMeters,
		chunkSize: DefaultChunkSize,
		stats:     stats.New(),
		log:       log,
	}
}

// Stats returns the counters accumulated by the last Run.
func (b *Builder) Stats() *stats.Counters {
	return b.stats
}

// Run executes both passes and drives the store to completion: schema
// bootstrap, batched insert, length population, and index creation.
func (b *Builder) Run(ctx context.Context) error {
	start := time.Now()
	if err := b.store.Bootstrap(); err != nil {
		return fmt.Errorf("topology: bootstrap store: %w", err)
	}

	nodeSet := make(map[osmsource.NodeRef]bool)
	intersections := make(map[osmsource.NodeRef]bool)

	if err := b.pass1(ctx, nodeSet, intersections); err != nil {
		return err
	}
	b.log.Info("topology pass 1 complete",
		zap.Int("referenced_nodes", len(nodeSet)),
		zap.Int("intersections", len(intersections)),
		zap.Duration("elapsed", time.Since(start)))

	coords := make(map[osmsource.NodeRef]orb.Point, len(nodeSet))
	var nodeBatch []Node
	var edgeBatch []Edge
	pass2Start := time.Now()

	flushNodes := func() error {
		if len(nodeBatch) == 0 {
			return nil
		}
		if err := b.store.InsertNodes(nodeBatch); err != nil {
			return fmt.Errorf("topology: insert nodes: %w", err)
		}
		nodeBatch = nodeBatch[:0]
		return nil
	}
	flushEdges := func() error {
		if len(edgeBatch) == 0 {
			return nil
		}
		if err := b.store.InsertEdges(edgeBatch); err != nil {
			return fmt.Errorf("topology: insert edges: %w", err)
		}
		edgeBatch = edgeBatch[:0]
		return nil
	}

	var flushErr error
	err := b.reader.Run(ctx, osmsource.Callbacks{
		Node: func(n osmsource.Node) {
			if flushErr != nil {
				return
			}
			if nodeSet[n.ID] {
				coords[n.ID] = orb.Point{n.Lon, n.Lat}
			}
		},
		Way: func(w osmsource.Way) {
			if flushErr != nil {
				return
			}
			edges, err := b.processWay(w, coords, intersections)
			if err != nil {
				flushErr = err
				return
			}
			edgeBatch = append(edgeBatch, edges...)
			if len(edgeBatch) >= b.chunkSize {
				if err := flushEdges(); err != nil {
					flushErr = err
				}
			}
		},
	})
	if err != nil {
		return err
	}
	if flushErr != nil {
		return flushErr
	}
	if err := flushEdges(); err != nil {
		return err
	}

	for id := range intersections {
		pt, ok := coords[id]
		if !ok {
			continue
		}
		nodeBatch = append(nodeBatch, Node{ID: id, Lon: pt[0], Lat: pt[1]})
		if len(nodeBatch) >= b.chunkSize {
			if err := flushNodes(); err != nil {
				return err
			}
		}
	}
	if err := flushNodes(); err != nil {
		return err
	}

	b.log.Info("topology pass 2 complete", zap.Duration("elapsed", time.Since(pass2Start)))

	if err := b.store.PopulateLengths(); err != nil {
		return fmt.Errorf("topology: populate lengths: %w", err)
	}
	if err := b.store.CreateIndexes(); err != nil {
		return fmt.Errorf("topology: create indexes: %w", err)
	}

	b.log.Info("topology builder complete",
		zap.Duration("total_elapsed", time.Since(start)),
		zap.Any("stats", b.stats.Snapshot()))
	return nil
}

// pass1 scans way_callback only, collecting referenced node ids and
// marking intersections (shared nodes and every way's endpoints).
func (b *Builder) pass1(ctx context.Context, nodeSet, intersections map[osmsource.NodeRef]bool) error {
	return b.reader.Run(ctx, osmsource.Callbacks{
		Way: func(w osmsource.Way) {
			if !applyPass1Way(w, nodeSet, intersections) {
				b.stats.Inc("ways_ignored")
			}
		},
	})
}

// applyPass1Way applies the Topology Builder's pass-1 rule to a single
// way: every NodeRef joins nodeSet, becoming an intersection if it was
// already a member; the way's first and last NodeRefs are always marked
// as intersections. Returns false if the way was filtered (unknown
// highway classification or fewer than one node).
func applyPass1Way(w osmsource.Way, nodeSet, intersections map[osmsource.NodeRef]bool) bool {
	if _, ok := ClassifyHighway(w.Tags.Get("highway")); !ok {
		return false
	}
	if len(w.NodeRefs) == 0 {
		return false
	}
	for _, ref := range w.NodeRefs {
		if nodeSet[ref] {
			intersections[ref] = true
		} else {
			nodeSet[ref] = true
		}
	}
	intersections[w.NodeRefs[0]] = true
	intersections[w.NodeRefs[len(w.NodeRefs)-1]] = true
	return true
}

// processWay builds the TopologyEdges for one accepted way: break on
// intersections, run the Way Splitter per sub-way if maxMeters is set,
// and materialize the linestring geometry from coords.
func (b *Builder) processWay(w osmsource.Way, coords map[osmsource.NodeRef]orb.Point, intersections map[osmsource.NodeRef]bool) ([]Edge, error) {
	code, ok := ClassifyHighway(w.Tags.Get("highway"))
	if !ok {
		return nil, nil
	}
	if len(w.NodeRefs) < 2 {
		return nil, nil
	}

	segments := breakAtIntersections(w.NodeRefs, intersections)

	var subways [][]osmsource.NodeRef
	if b.maxMeters > 0 {
		for _, seg := range segments {
			if split := Split(seg, coords, intersections, b.maxMeters); split != nil {
				subways = append(subways, split...)
			} else {
				subways = append(subways, seg)
			}
		}
	} else {
		subways = segments
	}

	name := w.Tags.Get("name")
	edges := make([]Edge, 0, len(subways))
	for seq, sub := range subways {
		if len(sub) < 2 {
			continue
		}
		ls, err := osmsource.BuildLineString(mapCache(coords), sub)
		if err != nil {
			b.stats.Inc("way_with_invalid_location")
			return nil, nil
		}
		edges = append(edges, Edge{
			ID:       w.ID*10000 + int64(seq),
			OSMWayID: w.ID,
			Type:     code,
			Source:   sub[0],
			Target:   sub[len(sub)-1],
			Lon1:     ls[0][0],
			Lat1:     ls[0][1],
			Lon2:     ls[len(ls)-1][0],
			Lat2:     ls[len(ls)-1][1],
			Name:     name,
			Geometry: ls,
		})
	}
	return edges, nil
}

// breakAtIntersections splits refs every time an intersection node is
// encountered, with adjacent sub-ways sharing the split node.
func breakAtIntersections(refs []osmsource.NodeRef, intersections map[osmsource.NodeRef]bool) [][]osmsource.NodeRef {
	if len(refs) == 0 {
		return nil
	}
	var out [][]osmsource.NodeRef
	current := []osmsource.NodeRef{refs[0]}
	for i := 1; i < len(refs); i++ {
		current = append(current, refs[i])
		if intersections[refs[i]] && i != len(refs)-1 {
			out = append(out, current)
			current = []osmsource.NodeRef{refs[i]}
		}
	}
	if len(current) >= 2 {
		out = append(out, current)
	}
	return out
}

// mapCache adapts a plain coordinate map to the osmsource.NodeCache
// interface so BuildLineString can be reused without copying coordinates.
type mapCache map[osmsource.NodeRef]orb.Point

func (m mapCache) Set(id osmsource.NodeRef, lon, lat float64) { m[id] = orb.Point{lon, lat} }
func (m mapCache) Get(id osmsource.NodeRef) (orb.Point, bool) { p, ok := m[id]; return p, ok }
func (m mapCache) Len() int                                   { return len(m) }
func (m mapCache) Close() error                               { return nil }

var _ osmsource.NodeCache = mapCache(nil)
