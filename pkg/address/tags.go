package address

import (
	"github.com/exatel-oss/osmtopo/pkg/osmsource"
	"github.com/exatel-oss/osmtopo/pkg/stats"
)

// TagsToAddress converts an OSM tag bag into an Address, falling back to
// addr:place for a missing city or street, and tallying every edge case
// into st — the same bookkeeping as the original tags_to_address (spec.md
// §4.5). No record is ever dropped by this mapping.
func TagsToAddress(tags osmsource.Tags, st *stats.Counters) Address {
	place := tags.Get("addr:place")
	street := tags.Get("addr:street")
	city := tags.Get("addr:city")

	if city == "" {
		st.Inc("addr_no_city")
		if place != "" {
			st.Inc("addr_no_city_with_place")
		}
		if street != "" {
			st.Inc("addr_no_city_with_street")
		}
	}

	if street == "" {
		st.Inc("addr_no_street")
		if place != "" {
			st.Inc("addr_no_street_with_place")
		}
	} else if place != "" {
		// https://wiki.openstreetmap.org/wiki/Key:addr:place discourages
		// combining addr:place with addr:street.
		st.Inc("addr_with_place_and_street")
	}

	if city == "" {
		city = place
	}
	if street == "" {
		street = place
	}

	return Address{
		HouseNumber: tags.Get("addr:housenumber"),
		City:        city,
		Street:      street,
		Postcode:    tags.Get("addr:postcode"),
		CitySimc:    tags.Get("addr:city:simc"),
	}
}
