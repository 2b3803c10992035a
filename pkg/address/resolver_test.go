package address

import (
	"testing"

	"github.com/paulmach/orb"
)

func squareArea(aid, name string, level int, postcode string, min, max orb.Point) Area {
	ring := orb.Ring{
		{min[0], min[1]}, {min[0], max[1]}, {max[0], max[1]}, {max[0], min[1]}, {min[0], min[1]},
	}
	mp := orb.MultiPolygon{orb.Polygon{ring}}
	return Area{
		AID: aid, Name: name, Level: level, Postcode: postcode,
		Geometry: mp, Centroid: orb.Point{(min[0] + max[0]) / 2, (min[1] + max[1]) / 2},
	}
}

func TestResolverFillsCityAtLevel8(t *testing.T) {
	state := NewState()
	state.Areas = []Area{
		squareArea("a1", "Mazowieckie", 6, "", orb.Point{18, 51}, orb.Point{21, 53}),
		squareArea("a2", "Warszawa", 8, "00-001", orb.Point{18.9, 51.9}, orb.Point{19.2, 52.2}),
		squareArea("a3", "Ochota", 9, "02-001", orb.Point{18.95, 51.95}, orb.Point{19.05, 52.05}),
	}
	state.IndexAddress(Place{PID: "n1", Point: orb.Point{19.0, 52.0}, StreetDistance: sentinelStreetDistance})

	NewResolver(state).Resolve()

	p := state.Places[0]
	if p.Addr.City != "Warszawa" {
		t.Fatalf("city = %q, want Warszawa (level 8 pre-empts level 9)", p.Addr.City)
	}
	if !p.CityFromArea {
		t.Fatalf("expected CityFromArea = true")
	}
	if p.Addr.Postcode != "00-001" {
		t.Fatalf("postcode = %q, want 00-001 (from the same level-8 area)", p.Addr.Postcode)
	}
}

func TestResolverNoMatchIncrementsPlaceWithoutRegion(t *testing.T) {
	state := NewState()
	state.IndexAddress(Place{PID: "n1", Point: orb.Point{0, 0}, StreetDistance: sentinelStreetDistance})

	NewResolver(state).Resolve()

	if state.Places[0].Addr.City != "" {
		t.Fatalf("expected city to stay empty with no areas")
	}
	if state.Stats.Get("place_without_region") != 2 { // once for cities pass, once for postcodes pass
		t.Fatalf("place_without_region = %d, want 2", state.Stats.Get("place_without_region"))
	}
}

func TestResolverDiscardsStreetIndexBeforeSort(t *testing.T) {
	state := NewState()
	state.IndexAddress(Place{PID: "n1", Point: orb.Point{19.0, 52.0}, StreetDistance: sentinelStreetDistance})
	NewResolver(state).Resolve()
	if state.StreetIndex != nil {
		t.Fatalf("expected street index to be discarded")
	}
}

func TestResolverSortsByCityStreetHousenumber(t *testing.T) {
	state := NewState()
	state.IndexAddress(Place{PID: "b", Addr: Address{City: "B", Street: "s", HouseNumber: "1"}, StreetDistance: sentinelStreetDistance})
	state.IndexAddress(Place{PID: "a", Addr: Address{City: "A", Street: "s", HouseNumber: "1"}, StreetDistance: sentinelStreetDistance})

	NewResolver(state).Resolve()

	if state.Places[0].PID != "a" || state.Places[1].PID != "b" {
		t.Fatalf("Places not sorted: %+v", state.Places)
	}
}
