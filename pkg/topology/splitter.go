package topology

import (
	"github.com/exatel-oss/osmtopo/pkg/geo"
	"github.com/exatel-oss/osmtopo/pkg/osmsource"
	"github.com/paulmach/orb"
)

// Split implements the Way Splitter (C1): walks order, an ordered list of
// NodeRefs, and breaks it into sub-ways each no longer than maxMeters
// (chord-distance approximation), inserting synthetic nodes into coords
// and intersections where a break falls mid-segment.
//
// coords and intersections are mutated in place: new synthetic node
// coordinates are written into coords, and every node that becomes a
// sub-way boundary (existing or synthetic) is added to intersections.
// Callers guarantee every NodeRef in order already has a coordinate in
// coords — there is no failure mode here, only empty output for
// degenerate input.
func Split(order []osmsource.NodeRef, coords map[osmsource.NodeRef]orb.Point, intersections map[osmsource.NodeRef]bool, maxMeters float64) [][]osmsource.NodeRef {
	if len(order) < 2 {
		return nil
	}

	maxDegrees := maxMeters / geo.MetersPerDegree

	var subways [][]osmsource.NodeRef
	current := []osmsource.NodeRef{order[0]}
	length := 0.0

	for i := 1; i < len(order); i++ {
		prev, cur := order[i-1], order[i]
		pPrev, pCur := coords[prev], coords[cur]
		d := geo.ChordDegrees(pPrev, pCur)

		switch {
		case length+d <= maxDegrees:
			current = append(current, cur)
			length += d

		case len(current) >= 2 && d <= maxDegrees:
			subways = append(subways, current)
			current = []osmsource.NodeRef{prev, cur}
			length = d
			intersections[prev] = true

		default:
			times := int((length + d) / maxDegrees)
			if times < 1 {
				times = 1
			}

			var dx, dy float64
			if d > 0 {
				dx = (pCur[0] - pPrev[0]) / d
				dy = (pCur[1] - pPrev[1]) / d
			}

			anchor := pPrev
			traveled := 0.0
			toGo := maxDegrees - length

			for k := 0; k < times; k++ {
				step := toGo
				if k > 0 {
					step = maxDegrees
				}
				anchor = orb.Point{anchor[0] + dx*step, anchor[1] + dy*step}
				traveled += step

				artID := freeArtificialID(cur, coords)
				coords[artID] = anchor
				intersections[artID] = true

				current = append(current, artID)
				subways = append(subways, current)
				current = []osmsource.NodeRef{artID}
			}

			length = d - traveled
			current = append(current, cur)
		}
	}

	if len(current) >= 2 {
		subways = append(subways, current)
	}
	return subways
}

// freeArtificialID derives a synthetic NodeRef from originalID * 10000,
// probing by +10 until an unused id is found — collisions are possible
// when the same original node triggers more than one synthetic insertion
// across adjacent segments.
func freeArtificialID(originalID osmsource.NodeRef, coords map[osmsource.NodeRef]orb.Point) osmsource.NodeRef {
	base := int64(originalID) * 10000
	for k := int64(0); ; k += 10 {
		id := osmsource.NodeRef(base + k)
		if _, used := coords[id]; !used {
			return id
		}
	}
}
