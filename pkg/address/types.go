// Package address implements the Address Resolver: the Address Extractor
// (C4), Geometry Matcher (C5), Street Matcher (C6), and Area Resolver (C7)
// stages that turn a PBF extract into addressed Places, following the
// original AddressExtractor/GeometryMatcher/StreetMatcher handler classes
// almost call-for-call.
package address

import "github.com/paulmach/orb"

// Address is the normalized per-place address record (spec.md §3).
type Address struct {
	HouseNumber string
	City        string
	Street      string
	Postcode    string
	CitySimc    string
}

// Place is an addressed entity from a node, way, or relation (spec.md §3).
// StreetDistance starts at sentinelStreetDistance and only ever decreases,
// mirroring the original's "street_distance: float = 360" default and the
// Street Matcher's strictly-improving adoption rule.
type Place struct {
	PID              string
	Name             string
	Amenity          string
	Addr             Address
	Point            orb.Point
	StreetDistance   float64
	StreetID         int64
	CityFromArea     bool
	PostcodeFromArea bool
}

// sentinelStreetDistance is the "wide-open" initial street distance (360
// degrees) no real street match can reach, guaranteeing the first
// candidate the Street Matcher finds is always adopted.
const sentinelStreetDistance = 360

// RelationStub is a relation carrying an address but no geometry yet — its
// representative member way (WayRef) is resolved by the Geometry Matcher
// (C5) in a later pass, exactly as the original's Relation dataclass/
// GeometryMatcher pairing works.
type RelationStub struct {
	RID     string
	Name    string
	Amenity string
	Addr    Address
	WayRef  int64
}

// Area is an administrative boundary or other multipolygon area (spec.md
// §3): quality is 0/1/3/4 (+3 for any teryt identifier present, +1 for a
// population tag), admin_level is restricted to [5,9] by the extractor.
type Area struct {
	AID      string
	Name     string
	Quality  int
	Level    int
	Geometry orb.MultiPolygon
	Centroid orb.Point
	Postcode string
}

// PostalPlace is a named place carrying a postal_code tag, used to resolve
// an Area's postcode when no teryt:simc mapping is available (spec.md §4.7).
type PostalPlace struct {
	Name     string
	IsIn     string
	Postcode string
	Point    orb.Point
}
