package topology

import (
	"testing"

	"github.com/exatel-oss/osmtopo/pkg/osmsource"
	"github.com/paulmach/orb"
)

func TestSplitTrivial(t *testing.T) {
	coords := map[osmsource.NodeRef]orb.Point{
		1: {0, 0},
		2: {0, 0.001},
	}
	intersections := map[osmsource.NodeRef]bool{}

	subways := Split([]osmsource.NodeRef{1, 2}, coords, intersections, 200)
	if len(subways) != 1 {
		t.Fatalf("len(subways) = %d, want 1", len(subways))
	}
	if len(subways[0]) != 2 {
		t.Fatalf("len(subways[0]) = %d, want 2", len(subways[0]))
	}
}

func TestSplitWithSyntheticNode(t *testing.T) {
	coords := map[osmsource.NodeRef]orb.Point{
		1: {0, 0},
		2: {0, 0.01},
	}
	intersections := map[osmsource.NodeRef]bool{}

	subways := Split([]osmsource.NodeRef{1, 2}, coords, intersections, 500)
	if len(subways) < 2 {
		t.Fatalf("len(subways) = %d, want >= 2", len(subways))
	}
	if len(coords) <= 2 {
		t.Fatalf("expected a synthetic node added to coords, len = %d", len(coords))
	}

	foundArtificial := false
	for id, pt := range coords {
		if id == 1 || id == 2 {
			continue
		}
		foundArtificial = true
		if !intersections[id] {
			t.Errorf("synthetic node %d not marked as intersection", id)
		}
		if pt[1] < 0.005 || pt[1] > 0.006 {
			t.Errorf("synthetic node at %v, want lat ~0.00552", pt)
		}
	}
	if !foundArtificial {
		t.Fatalf("expected a synthetic node in coords")
	}
}

func TestSplitSinglePointReturnsNoSubway(t *testing.T) {
	coords := map[osmsource.NodeRef]orb.Point{1: {0, 0}}
	subways := Split([]osmsource.NodeRef{1}, coords, map[osmsource.NodeRef]bool{}, 200)
	if subways != nil {
		t.Fatalf("subways = %v, want nil", subways)
	}
}

func TestSplitIdenticalPointsNoSyntheticNodes(t *testing.T) {
	coords := map[osmsource.NodeRef]orb.Point{
		1: {5, 5},
		2: {5, 5},
	}
	before := len(coords)
	subways := Split([]osmsource.NodeRef{1, 2}, coords, map[osmsource.NodeRef]bool{}, 200)
	if len(subways) != 1 {
		t.Fatalf("len(subways) = %d, want 1", len(subways))
	}
	if len(coords) != before {
		t.Fatalf("expected no synthetic nodes, coords grew from %d to %d", before, len(coords))
	}
}

func TestSplitEverySegmentWithinBound(t *testing.T) {
	coords := map[osmsource.NodeRef]orb.Point{
		1: {0, 0},
		2: {0, 0.05},
	}
	intersections := map[osmsource.NodeRef]bool{}
	maxMeters := 300.0
	maxDegrees := maxMeters / 90634.692934

	subways := Split([]osmsource.NodeRef{1, 2}, coords, intersections, maxMeters)
	for _, sw := range subways {
		for i := 1; i < len(sw); i++ {
			a, b := coords[sw[i-1]], coords[sw[i]]
			dx, dy := a[0]-b[0], a[1]-b[1]
			d := dx*dx + dy*dy
			if d > maxDegrees*maxDegrees*1.0001 {
				t.Errorf("segment %v-%v exceeds max_degrees", sw[i-1], sw[i])
			}
		}
	}
}
