package spatial

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestInsertAndIntersectPoint(t *testing.T) {
	ix := New()
	ix.Insert(1, orb.Point{19.0, 52.0})
	ix.Insert(2, orb.Point{20.0, 53.0})

	got := ix.IntersectPoint(orb.Point{19.0, 52.0})
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("IntersectPoint = %v, want [1]", got)
	}
}

func TestInsertBBoxAndIntersectBBox(t *testing.T) {
	ix := New()
	ix.InsertBBox(10, orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{5, 5}})
	ix.InsertBBox(11, orb.Bound{Min: orb.Point{100, 100}, Max: orb.Point{105, 105}})

	got := ix.IntersectBBox(orb.Bound{Min: orb.Point{1, 1}, Max: orb.Point{2, 2}})
	if len(got) != 1 || got[0] != 10 {
		t.Errorf("IntersectBBox = %v, want [10]", got)
	}
}

func TestLen(t *testing.T) {
	ix := New()
	if ix.Len() != 0 {
		t.Errorf("Len() = %d, want 0", ix.Len())
	}
	ix.Insert(1, orb.Point{0, 0})
	ix.Insert(2, orb.Point{1, 1})
	if ix.Len() != 2 {
		t.Errorf("Len() = %d, want 2", ix.Len())
	}
}
