package address

import (
	"strings"

	"github.com/paulmach/orb"

	"github.com/exatel-oss/osmtopo/pkg/geo"
)

// ResolvePostcode implements the postcode-resolution rule used when
// building an Area (spec.md §4.7): prefer the teryt:simc mapping, then
// fall back to scanning PostalPlaces for a name match or a containment
// match against the area polygon.
func ResolvePostcode(simc, name string, poly orb.MultiPolygon, state *State) string {
	if simc != "" {
		if pc, ok := state.PostalSimcs[simc]; ok && pc != "" {
			return pc
		}
	}

	var fallback string
	for _, p := range state.PostalPlaces {
		nameMatch := name != "" && name == p.Name
		substrMatch := strings.Contains(p.IsIn, name) && geo.Contains(poly, p.Point)
		if nameMatch || substrMatch {
			return p.Postcode
		}
		if geo.Contains(poly, p.Point) {
			fallback = p.Postcode
		}
	}
	return fallback
}
