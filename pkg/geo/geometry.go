package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// MetersPerDegree is the chord-distance calibration constant for mid-
// latitudes (documented in the original as linearized around 52.04°N,
// 19.49°E): the average of the latitudinal, longitudinal, and diagonal
// meter-per-0.0001-degree figures observed there.
const MetersPerDegree = 90634.692934

// ChordDegrees returns the Euclidean chord-length distance between two
// points in decimal degrees, ignoring projection. It is the fast local
// approximation the Way Splitter uses when walking a polyline — accurate
// enough at mid-latitudes, calibrated near 52°N (see MetersPerDegree and
// its use in pkg/topology's Split).
// orb/planar has no equivalent of this (it works in meters via Distance,
// not raw degrees), so it stays hand-rolled.
func ChordDegrees(a, b orb.Point) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	return math.Sqrt(dx*dx + dy*dy)
}

// DistanceToLineString returns the minimum planar distance in degrees from
// pt to any segment of ls, via orb/planar.DistanceFrom — the same pure-
// degree planar distance the original's shapely geo.distance used, with no
// cosLat correction.
func DistanceToLineString(pt orb.Point, ls orb.LineString) float64 {
	if len(ls) == 0 {
		return math.Inf(1)
	}
	if len(ls) == 1 {
		return ChordDegrees(pt, ls[0])
	}
	return planar.DistanceFrom(ls, pt)
}

// CentroidOfLineString returns the length-weighted centroid of ls via
// orb/planar.CentroidArea, mirroring shapely's LineString.centroid, which
// the original's Way/relation handlers relied on for addressed ways and
// relations that carry only a linestring, not a closed polygon.
func CentroidOfLineString(ls orb.LineString) orb.Point {
	if len(ls) == 0 {
		return orb.Point{}
	}
	if len(ls) == 1 {
		return ls[0]
	}
	centroid, _ := planar.CentroidArea(ls)
	return centroid
}

// Bound returns the bounding box of a MultiPolygon.
func Bound(mp orb.MultiPolygon) orb.Bound {
	b := orb.Bound{Min: orb.Point{math.Inf(1), math.Inf(1)}, Max: orb.Point{math.Inf(-1), math.Inf(-1)}}
	for _, poly := range mp {
		for _, ring := range poly {
			for _, pt := range ring {
				if pt[0] < b.Min[0] {
					b.Min[0] = pt[0]
				}
				if pt[1] < b.Min[1] {
					b.Min[1] = pt[1]
				}
				if pt[0] > b.Max[0] {
					b.Max[0] = pt[0]
				}
				if pt[1] > b.Max[1] {
					b.Max[1] = pt[1]
				}
			}
		}
	}
	return b
}

// Centroid returns the area-weighted centroid of a MultiPolygon, via
// orb/planar.CentroidArea's shoelace-weighted implementation (outer rings
// only — administrative boundaries and addressed buildings in this
// pipeline never need hole-aware centroids, only hole-aware containment,
// see Contains).
func Centroid(mp orb.MultiPolygon) orb.Point {
	centroid, _ := planar.CentroidArea(mp)
	return centroid
}

// Contains reports whether pt lies inside mp: inside at least one polygon's
// outer ring and not inside any of that polygon's holes. Delegates to
// orb/planar.MultiPolygonContains, which is already hole-aware.
func Contains(mp orb.MultiPolygon, pt orb.Point) bool {
	return planar.MultiPolygonContains(mp, pt)
}
