package topology

import "testing"

func TestClassifyHighwayKnown(t *testing.T) {
	cases := map[string]int{
		"motorway":      100,
		"trunk_link":    201,
		"residential":   700,
		"living_street": 701,
		"road":          1100,
	}
	for tag, want := range cases {
		code, ok := ClassifyHighway(tag)
		if !ok || code != want {
			t.Errorf("ClassifyHighway(%q) = (%d, %v), want (%d, true)", tag, code, ok, want)
		}
	}
}

func TestClassifyHighwayUnknown(t *testing.T) {
	if _, ok := ClassifyHighway("footway"); ok {
		t.Errorf("footway should not be a recognized topology classification")
	}
	if _, ok := ClassifyHighway(""); ok {
		t.Errorf("empty tag should not be recognized")
	}
}

func TestIsStreetMatchCandidate(t *testing.T) {
	if IsStreetMatchCandidate("footway") {
		t.Errorf("footway should be excluded from street matching")
	}
	if !IsStreetMatchCandidate("residential") {
		t.Errorf("residential should be a street match candidate")
	}
	if IsStreetMatchCandidate("") {
		t.Errorf("empty highway tag should not be a candidate")
	}
}
