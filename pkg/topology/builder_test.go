package topology

import (
	"testing"

	"github.com/exatel-oss/osmtopo/pkg/osmsource"
	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

func TestApplyPass1WayMarksIntersections(t *testing.T) {
	nodeSet := map[osmsource.NodeRef]bool{}
	intersections := map[osmsource.NodeRef]bool{}

	w1 := osmsource.Way{ID: 1, NodeRefs: []osmsource.NodeRef{10, 20, 30}, Tags: osmsource.Tags{"highway": "residential"}}
	if !applyPass1Way(w1, nodeSet, intersections) {
		t.Fatalf("expected way to be accepted")
	}
	// First pass: no shared nodes yet beyond endpoints.
	if !intersections[10] || !intersections[30] {
		t.Fatalf("expected endpoints marked as intersections: %v", intersections)
	}
	if intersections[20] {
		t.Fatalf("middle node should not be an intersection yet")
	}

	w2 := osmsource.Way{ID: 2, NodeRefs: []osmsource.NodeRef{20, 40}, Tags: osmsource.Tags{"highway": "residential"}}
	applyPass1Way(w2, nodeSet, intersections)
	if !intersections[20] {
		t.Fatalf("node 20 shared between two ways should become an intersection")
	}
}

func TestApplyPass1WayRejectsUnknownHighway(t *testing.T) {
	nodeSet := map[osmsource.NodeRef]bool{}
	intersections := map[osmsource.NodeRef]bool{}
	w := osmsource.Way{ID: 1, NodeRefs: []osmsource.NodeRef{1, 2}, Tags: osmsource.Tags{"highway": "footway"}}
	if applyPass1Way(w, nodeSet, intersections) {
		t.Fatalf("footway should be rejected")
	}
	if len(nodeSet) != 0 {
		t.Fatalf("rejected way should not populate nodeSet")
	}
}

func TestBreakAtIntersections(t *testing.T) {
	refs := []osmsource.NodeRef{1, 2, 3, 4}
	intersections := map[osmsource.NodeRef]bool{2: true}

	segments := breakAtIntersections(refs, intersections)
	if len(segments) != 2 {
		t.Fatalf("len(segments) = %d, want 2", len(segments))
	}
	assertRefSlice(t, segments[0], []osmsource.NodeRef{1, 2})
	assertRefSlice(t, segments[1], []osmsource.NodeRef{2, 3, 4})
}

func TestBreakAtIntersectionsNoBreaks(t *testing.T) {
	refs := []osmsource.NodeRef{1, 2, 3}
	segments := breakAtIntersections(refs, map[osmsource.NodeRef]bool{})
	if len(segments) != 1 {
		t.Fatalf("len(segments) = %d, want 1", len(segments))
	}
	assertRefSlice(t, segments[0], refs)
}

func TestProcessWayEmitsEdgeWithGeometry(t *testing.T) {
	b := NewBuilder(nil, nil, 0, zap.NewNop())
	coords := map[osmsource.NodeRef]orb.Point{
		1: {19.0, 52.0},
		2: {19.0, 52.001},
		3: {19.0, 52.002},
	}
	intersections := map[osmsource.NodeRef]bool{1: true, 3: true}
	w := osmsource.Way{ID: 7, NodeRefs: []osmsource.NodeRef{1, 2, 3}, Tags: osmsource.Tags{"highway": "residential", "name": "ul. Testowa"}}

	edges, err := b.processWay(w, coords, intersections)
	if err != nil {
		t.Fatalf("processWay: %v", err)
	}
	if len(edges) != 1 {
		t.Fatalf("len(edges) = %d, want 1", len(edges))
	}
	e := edges[0]
	if e.OSMWayID != 7 || e.Name != "ul. Testowa" {
		t.Fatalf("edge = %+v", e)
	}
	if e.Source != 1 || e.Target != 3 {
		t.Fatalf("edge source/target = %v/%v", e.Source, e.Target)
	}
	if len(e.Geometry) != 3 {
		t.Fatalf("len(e.Geometry) = %d, want 3", len(e.Geometry))
	}
}

func TestProcessWayIntersectionSplit(t *testing.T) {
	b := NewBuilder(nil, nil, 0, zap.NewNop())
	coords := map[osmsource.NodeRef]orb.Point{
		1: {0, 0},
		2: {0, 0.0001},
		3: {0, 0.0002},
		4: {0, 0.0003},
	}
	intersections := map[osmsource.NodeRef]bool{1: true, 2: true, 4: true}
	w := osmsource.Way{ID: 1, NodeRefs: []osmsource.NodeRef{1, 2, 3, 4}, Tags: osmsource.Tags{"highway": "residential"}}

	edges, err := b.processWay(w, coords, intersections)
	if err != nil {
		t.Fatalf("processWay: %v", err)
	}
	if len(edges) != 2 {
		t.Fatalf("len(edges) = %d, want 2 ([1,2] and [2,3,4])", len(edges))
	}
	if edges[0].Source != 1 || edges[0].Target != 2 {
		t.Errorf("edges[0] source/target = %v/%v", edges[0].Source, edges[0].Target)
	}
	if edges[1].Source != 2 || edges[1].Target != 4 {
		t.Errorf("edges[1] source/target = %v/%v", edges[1].Source, edges[1].Target)
	}
}

func TestProcessWaySkipsInvalidLocation(t *testing.T) {
	b := NewBuilder(nil, nil, 0, zap.NewNop())
	coords := map[osmsource.NodeRef]orb.Point{
		1: {0, 0},
		// node 2 missing
	}
	intersections := map[osmsource.NodeRef]bool{1: true, 2: true}
	w := osmsource.Way{ID: 1, NodeRefs: []osmsource.NodeRef{1, 2}, Tags: osmsource.Tags{"highway": "residential"}}

	edges, err := b.processWay(w, coords, intersections)
	if err != nil {
		t.Fatalf("processWay returned error: %v", err)
	}
	if edges != nil {
		t.Fatalf("expected no edges for way with missing location, got %v", edges)
	}
	if b.stats.Get("way_with_invalid_location") != 1 {
		t.Fatalf("way_with_invalid_location = %d, want 1", b.stats.Get("way_with_invalid_location"))
	}
}

func assertRefSlice(t *testing.T, got, want []osmsource.NodeRef) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
