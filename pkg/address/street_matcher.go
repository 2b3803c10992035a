package address

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/exatel-oss/osmtopo/pkg/geo"
	"github.com/exatel-oss/osmtopo/pkg/osmsource"
	"github.com/exatel-oss/osmtopo/pkg/topology"
)

// MaxDistance is the farthest a street-less Place may be from a candidate
// way for the Street Matcher (C6) to adopt it — about 200m at mid
// latitudes (spec.md §4.8).
const MaxDistance = 0.002

// StreetMatcher is the third pass (C6): for every highway way, find
// street-less Places within MaxDistance of its geometry and adopt the
// closest-matching one, never downgrading a named street to an unnamed one.
type StreetMatcher struct {
	state *State
	cache osmsource.NodeCache
}

// NewStreetMatcher returns a StreetMatcher over state, using cache to
// resolve way geometry.
func NewStreetMatcher(state *State, cache osmsource.NodeCache) *StreetMatcher {
	return &StreetMatcher{state: state, cache: cache}
}

// Run performs the pass over r.
func (m *StreetMatcher) Run(ctx context.Context, r *osmsource.Reader) error {
	err := r.Run(ctx, osmsource.Callbacks{Way: m.handleWay})
	if err != nil {
		return fmt.Errorf("address: street matcher pass: %w", err)
	}
	return nil
}

func (m *StreetMatcher) handleWay(w osmsource.Way) {
	highway := w.Tags.Get("highway")
	if highway == "" {
		return
	}
	m.state.Stats.Inc("streets")
	name := w.Tags.Get("name")

	if !topology.IsStreetMatchCandidate(highway) {
		m.state.Stats.Inc("ignore_street_type")
		return
	}
	if name == "" {
		// Village names might have empty name and it's ok.
		m.state.Stats.Inc("unknown_street")
	}

	ls, err := osmsource.BuildLineString(m.cache, w.NodeRefs)
	if err != nil {
		m.state.Stats.Inc("way_with_invalid_location")
		return
	}

	b := ls.Bound()
	expanded := orb.Bound{
		Min: orb.Point{b.Min[0] - MaxDistance, b.Min[1] - MaxDistance},
		Max: orb.Point{b.Max[0] + MaxDistance, b.Max[1] + MaxDistance},
	}

	for _, idx := range m.state.StreetIndex.IntersectBBox(expanded) {
		place := &m.state.Places[idx]

		distance := geo.DistanceToLineString(place.Point, ls)
		if distance > MaxDistance {
			m.state.Stats.Inc("street_too_far")
			continue
		}
		m.state.Stats.Inc("street_close_enough")

		if distance >= place.StreetDistance {
			m.state.Stats.Inc("place_street_no_override")
			continue
		}

		if place.Addr.Street != "" {
			m.state.Stats.Inc("place_street_override")
			if name == "" {
				// Don't replace a named street with an unnamed one.
				m.state.Stats.Inc("place_street_keep_named")
				continue
			}
		} else {
			m.state.Stats.Inc("place_street_new")
		}
		place.Addr.Street = name
		place.StreetDistance = distance
		place.StreetID = w.ID
	}
}
