package address

import (
	"testing"

	"github.com/exatel-oss/osmtopo/pkg/osmsource"
	"github.com/exatel-oss/osmtopo/pkg/stats"
)

func TestTagsToAddressFullySpecified(t *testing.T) {
	st := stats.New()
	tags := osmsource.Tags{
		"addr:housenumber": "12",
		"addr:city":        "Warszawa",
		"addr:street":      "ul. Testowa",
		"addr:postcode":    "00-001",
		"addr:city:simc":   "0918123",
	}
	addr := TagsToAddress(tags, st)
	if addr.City != "Warszawa" || addr.Street != "ul. Testowa" || addr.HouseNumber != "12" {
		t.Fatalf("addr = %+v", addr)
	}
	if st.Get("addr_no_city") != 0 || st.Get("addr_no_street") != 0 {
		t.Fatalf("unexpected edge-case stats: %+v", st.Snapshot())
	}
}

func TestTagsToAddressFallsBackToPlace(t *testing.T) {
	st := stats.New()
	tags := osmsource.Tags{
		"addr:housenumber": "3",
		"addr:place":       "Wola Mała",
	}
	addr := TagsToAddress(tags, st)
	if addr.City != "Wola Mała" || addr.Street != "Wola Mała" {
		t.Fatalf("addr = %+v, want fallback to place", addr)
	}
	if st.Get("addr_no_city") != 1 || st.Get("addr_no_city_with_place") != 1 {
		t.Fatalf("stats = %+v", st.Snapshot())
	}
	if st.Get("addr_no_street") != 1 || st.Get("addr_no_street_with_place") != 1 {
		t.Fatalf("stats = %+v", st.Snapshot())
	}
}

func TestTagsToAddressPlaceAndStreetBothPresent(t *testing.T) {
	st := stats.New()
	tags := osmsource.Tags{
		"addr:housenumber": "1",
		"addr:street":      "ul. Polna",
		"addr:place":       "Osada",
	}
	TagsToAddress(tags, st)
	if st.Get("addr_with_place_and_street") != 1 {
		t.Fatalf("addr_with_place_and_street = %d, want 1", st.Get("addr_with_place_and_street"))
	}
}
