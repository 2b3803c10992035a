package address

import (
	"fmt"
	"sort"

	"github.com/exatel-oss/osmtopo/pkg/geo"
	"github.com/exatel-oss/osmtopo/pkg/spatial"
)

// Resolver is the Area Resolver (C7) / finish(): it discards the
// street-less index, sorts Places, builds an Area R-tree, and fills in
// missing city and postcode fields by ascending-admin-level containment.
type Resolver struct {
	state *State
}

// NewResolver returns a Resolver over state.
func NewResolver(state *State) *Resolver {
	return &Resolver{state: state}
}

// Resolve runs the full C7 pass. Ordinals into Places kept by the
// street-less index are invalidated by the sort below, so the index is
// dropped first (spec.md §9's "ordinal validity" note).
func (r *Resolver) Resolve() {
	r.state.StreetIndex = nil

	sort.Slice(r.state.Places, func(i, j int) bool {
		a, b := r.state.Places[i], r.state.Places[j]
		if a.Addr.City != b.Addr.City {
			return a.Addr.City < b.Addr.City
		}
		if a.Addr.Street != b.Addr.Street {
			return a.Addr.Street < b.Addr.Street
		}
		return a.Addr.HouseNumber < b.Addr.HouseNumber
	})

	areaIndex := spatial.New()
	for i, a := range r.state.Areas {
		areaIndex.InsertBBox(uint64(i), geo.Bound(a.Geometry))
	}

	r.fillUnmatched(areaIndex, fieldCity)
	r.fillUnmatched(areaIndex, fieldPostcode)
}

type missingField int

const (
	fieldCity missingField = iota
	fieldPostcode
)

// fillUnmatched scans every Place missing field and walks its containing
// Areas in ascending admin_level order, each match overwriting the last,
// and stops after a level-8 match: the value comes from the highest
// containing level up to 8, and a level-9 Area only wins when no level-8
// Area contains the Place (spec.md §4.9).
func (r *Resolver) fillUnmatched(areaIndex *spatial.Index, field missingField) {
	for i := range r.state.Places {
		place := &r.state.Places[i]

		var missing bool
		if field == fieldCity {
			missing = place.Addr.City == ""
		} else {
			missing = place.Addr.Postcode == ""
		}
		if !missing {
			continue
		}

		candidateIDs := areaIndex.IntersectPoint(place.Point)
		if len(candidateIDs) == 0 {
			r.state.Stats.Inc("place_without_region")
			continue
		}

		candidates := make([]*Area, len(candidateIDs))
		for k, id := range candidateIDs {
			candidates[k] = &r.state.Areas[id]
		}
		sort.Slice(candidates, func(a, b int) bool {
			return candidates[a].Level < candidates[b].Level
		})

		for _, area := range candidates {
			if !geo.Contains(area.Geometry, place.Point) {
				r.state.Stats.Inc("bounding_box_but_no_match")
				continue
			}

			switch field {
			case fieldCity:
				place.Addr.City = area.Name
				place.CityFromArea = true
			case fieldPostcode:
				if area.Postcode != "" {
					place.Addr.Postcode = area.Postcode
					place.PostcodeFromArea = true
				}
			}

			distance := geo.ChordDegrees(place.Point, area.Centroid)
			r.state.Stats.MaxFloat("max_area_distance", distance)
			r.state.Stats.Inc(fmt.Sprintf("matched_area_lvl%d", area.Level))

			if area.Level == 8 {
				// Cities. Override anything matched at level 9.
				break
			}
		}
	}
}
