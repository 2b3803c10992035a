package address

import (
	"github.com/exatel-oss/osmtopo/pkg/spatial"
	"github.com/exatel-oss/osmtopo/pkg/stats"
)

// State is the central pipeline-state structure every stage borrows:
// Places, RelationStubs awaiting geometry, Areas, the postal-code lookup
// tables, and the street-less spatial index. Passes run sequentially and
// single-threaded (spec.md §5/§9), so every stage simply holds a *State
// and mutates it directly — no locking, no channels.
type State struct {
	Places    []Place
	Relations []RelationStub
	Areas     []Area

	PostalSimcs  map[string]string
	PostalPlaces []PostalPlace

	// StreetIndex keys Places by their ordinal position in Places. It is
	// only valid until Places is sorted; Resolve (C7) discards it first.
	StreetIndex *spatial.Index

	Stats *stats.Counters
}

// NewState returns an empty pipeline state ready for the Address Extractor.
func NewState() *State {
	return &State{
		PostalSimcs: make(map[string]string),
		StreetIndex: spatial.New(),
		Stats:       stats.New(),
	}
}

// IndexAddress appends place to Places and, if it has no street yet, adds
// its point to the street-less index keyed by its ordinal — the common
// final step of every Place-producing handler (spec.md §4.4's "common
// indexing step").
func (s *State) IndexAddress(place Place) {
	idx := uint64(len(s.Places))
	s.Places = append(s.Places, place)
	if place.Addr.Street == "" {
		s.StreetIndex.Insert(idx, place.Point)
		s.Stats.Inc("no_street_idx")
	}
}
