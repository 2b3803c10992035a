package osmsource

import (
	"testing"

	"github.com/paulmach/osm"
)

func TestConvertNode(t *testing.T) {
	n := &osm.Node{
		ID:   42,
		Lon:  19.5,
		Lat:  52.1,
		Tags: osm.Tags{{Key: "addr:housenumber", Value: "12"}},
	}
	got := convertNode(n)
	if got.ID != 42 || got.Lon != 19.5 || got.Lat != 52.1 {
		t.Fatalf("convertNode = %+v", got)
	}
	if got.Tags.Get("addr:housenumber") != "12" {
		t.Fatalf("Tags.Get = %q, want 12", got.Tags.Get("addr:housenumber"))
	}
}

func TestConvertWay(t *testing.T) {
	w := &osm.Way{
		ID: 7,
		Nodes: osm.WayNodes{
			{ID: 1}, {ID: 2}, {ID: 3},
		},
		Tags: osm.Tags{{Key: "highway", Value: "residential"}},
	}
	got := convertWay(w)
	if got.ID != 7 {
		t.Fatalf("ID = %d, want 7", got.ID)
	}
	want := []NodeRef{1, 2, 3}
	if len(got.NodeRefs) != len(want) {
		t.Fatalf("NodeRefs = %v, want %v", got.NodeRefs, want)
	}
	for i := range want {
		if got.NodeRefs[i] != want[i] {
			t.Fatalf("NodeRefs[%d] = %d, want %d", i, got.NodeRefs[i], want[i])
		}
	}
	if got.Tags.Get("highway") != "residential" {
		t.Fatalf("Tags.Get(highway) = %q", got.Tags.Get("highway"))
	}
}

func TestConvertRelation(t *testing.T) {
	rel := &osm.Relation{
		ID: 99,
		Members: osm.Members{
			{Type: osm.TypeWay, Ref: 7, Role: "outer"},
			{Type: osm.TypeWay, Ref: 8, Role: "inner"},
		},
		Tags: osm.Tags{{Key: "type", Value: "multipolygon"}, {Key: "boundary", Value: "administrative"}},
	}
	got := convertRelation(rel)
	if got.ID != 99 {
		t.Fatalf("ID = %d, want 99", got.ID)
	}
	if len(got.Members) != 2 {
		t.Fatalf("Members = %v", got.Members)
	}
	if got.Members[0].Type != "way" || got.Members[0].Role != "outer" {
		t.Fatalf("Members[0] = %+v", got.Members[0])
	}
	if got.Tags.Get("boundary") != "administrative" {
		t.Fatalf("Tags.Get(boundary) = %q", got.Tags.Get("boundary"))
	}
}

func TestTagsHas(t *testing.T) {
	tags := Tags{"boundary": "administrative"}
	if !tags.Has("boundary") {
		t.Fatalf("expected Has(boundary) = true")
	}
	if tags.Has("missing") {
		t.Fatalf("expected Has(missing) = false")
	}
}
