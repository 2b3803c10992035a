// Package spatial provides the R-tree abstraction specified as C3: a
// bulk-loadable spatial index supporting point insert, point-intersection,
// and bbox-intersection queries, backed by github.com/tidwall/rtree — a
// dependency the teacher module already declared but never wired.
package spatial

import (
	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"
)

// Index wraps a tidwall/rtree.RTree keyed by uint64 id, matching the two
// call patterns downstream components need: point inserts (street-less
// place index, keyed by Place ordinal) and bbox inserts (administrative
// area index, keyed by Area index).
type Index struct {
	tr rtree.RTree
}

// New returns an empty spatial index.
func New() *Index {
	return &Index{}
}

// Insert adds a single point keyed by id.
func (ix *Index) Insert(id uint64, point orb.Point) {
	p := [2]float64{point[0], point[1]}
	ix.tr.Insert(p, p, id)
}

// InsertBBox adds a bounding box keyed by id.
func (ix *Index) InsertBBox(id uint64, b orb.Bound) {
	min := [2]float64{b.Min[0], b.Min[1]}
	max := [2]float64{b.Max[0], b.Max[1]}
	ix.tr.Insert(min, max, id)
}

// IntersectPoint returns the ids of every entry whose box contains point.
// Used by the Area Resolver (C7) to find administrative-area candidates
// for a given Place coordinate.
func (ix *Index) IntersectPoint(point orb.Point) []uint64 {
	p := [2]float64{point[0], point[1]}
	var out []uint64
	ix.tr.Search(p, p, func(_, _ [2]float64, data interface{}) bool {
		out = append(out, data.(uint64))
		return true
	})
	return out
}

// IntersectBBox returns the ids of every entry whose box intersects b.
// Used by the Street Matcher (C6) to find street-less place candidates
// within a highway's expanded bounding box.
func (ix *Index) IntersectBBox(b orb.Bound) []uint64 {
	min := [2]float64{b.Min[0], b.Min[1]}
	max := [2]float64{b.Max[0], b.Max[1]}
	var out []uint64
	ix.tr.Search(min, max, func(_, _ [2]float64, data interface{}) bool {
		out = append(out, data.(uint64))
		return true
	})
	return out
}

// Len returns the number of entries currently indexed.
func (ix *Index) Len() int {
	return ix.tr.Len()
}
