package address

import (
	"context"
	"fmt"

	"github.com/exatel-oss/osmtopo/pkg/geo"
	"github.com/exatel-oss/osmtopo/pkg/osmsource"
)

// GeometryMatcher is the second pass (C5): addressed relations emitted by
// the Extractor as RelationStubs carry no geometry yet, because their
// representative member way hadn't been read. This pass scans every way
// once more and materializes a Place for each relation whose chosen way
// shows up.
type GeometryMatcher struct {
	state *State
	cache osmsource.NodeCache
}

// NewGeometryMatcher returns a GeometryMatcher over state, resolving way
// geometry through cache. cache should be the same populated cache the
// Extractor used, so every way's nodes are already resolvable.
func NewGeometryMatcher(state *State, cache osmsource.NodeCache) *GeometryMatcher {
	return &GeometryMatcher{state: state, cache: cache}
}

// Run performs the pass over r.
func (m *GeometryMatcher) Run(ctx context.Context, r *osmsource.Reader) error {
	wayRefToRelation := make(map[int64]RelationStub, len(m.state.Relations))
	for _, rel := range m.state.Relations {
		wayRefToRelation[rel.WayRef] = rel
	}

	err := r.Run(ctx, osmsource.Callbacks{
		Way: func(w osmsource.Way) { m.handleWay(w, wayRefToRelation) },
	})
	if err != nil {
		return fmt.Errorf("address: geometry matcher pass: %w", err)
	}
	return nil
}

func (m *GeometryMatcher) handleWay(w osmsource.Way, wayRefToRelation map[int64]RelationStub) {
	rel, ok := wayRefToRelation[w.ID]
	if !ok {
		return
	}

	ls, err := osmsource.BuildLineString(m.cache, w.NodeRefs)
	if err != nil {
		m.state.Stats.Inc("relations_ways_with_invalid_location")
		return
	}

	m.state.IndexAddress(Place{
		PID:            rel.RID,
		Name:           rel.Name,
		Amenity:        rel.Amenity,
		Addr:           rel.Addr,
		Point:          geo.CentroidOfLineString(ls),
		StreetDistance: sentinelStreetDistance,
	})
	m.state.Stats.Inc("relations_converted_to_places")
}
