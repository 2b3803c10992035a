package address

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestResolvePostcodeFromSimc(t *testing.T) {
	state := NewState()
	state.PostalSimcs["0918123"] = "00-001"
	got := ResolvePostcode("0918123", "Warszawa", nil, state)
	if got != "00-001" {
		t.Fatalf("got %q, want 00-001", got)
	}
}

func TestResolvePostcodeFromNameMatch(t *testing.T) {
	state := NewState()
	state.PostalPlaces = []PostalPlace{
		{Name: "Warszawa", IsIn: "", Postcode: "00-001", Point: orb.Point{19.0, 52.0}},
	}
	got := ResolvePostcode("", "Warszawa", squareMultiPolygon(), state)
	if got != "00-001" {
		t.Fatalf("got %q, want 00-001", got)
	}
}

func TestResolvePostcodeFromContainment(t *testing.T) {
	state := NewState()
	state.PostalPlaces = []PostalPlace{
		{Name: "Other", IsIn: "", Postcode: "00-002", Point: orb.Point{19.05, 52.05}},
	}
	got := ResolvePostcode("", "Dzielnica", squareMultiPolygon(), state)
	if got != "00-002" {
		t.Fatalf("got %q, want 00-002 (fallback containment match)", got)
	}
}

func TestResolvePostcodeNoMatch(t *testing.T) {
	state := NewState()
	got := ResolvePostcode("", "Nieznane", squareMultiPolygon(), state)
	if got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}
