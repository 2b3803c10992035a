package topology

// highwayCodes maps a way's highway tag value to the integer classification
// code the topology store persists. Any tag value absent from this table
// causes the way to be filtered out of the topology entirely.
var highwayCodes = map[string]int{
	"motorway":          100,
	"motorway_link":     101,
	"motorway_junction": 102,
	"trunk":             200,
	"trunk_link":        201,
	"primary":           300,
	"primary_link":      301,
	"secondary":         400,
	"secondary_link":    401,
	"tertiary":          500,
	"tertiary_link":     501,
	"unclassified":      600,
	"residential":       700,
	"living_street":     701,
	"service":           900,
	"road":              1100,
}

// ClassifyHighway returns the topology code for a highway tag value, and
// whether it is recognized at all.
func ClassifyHighway(highway string) (code int, ok bool) {
	code, ok = highwayCodes[highway]
	return code, ok
}

// excludedStreetTypes lists highway values the Street Matcher (C6) never
// treats as a named street candidate. Of these, only "service" is also in
// highwayCodes and so becomes a topology edge.
var excludedStreetTypes = map[string]bool{
	"footway":      true,
	"track":        true,
	"sidewalk":     true,
	"pedestrian":   true,
	"cycleway":     true,
	"service":      true,
	"construction": true,
	"path":         true,
}

// IsStreetMatchCandidate reports whether a highway tag value is eligible
// for street-name matching against street-less places.
func IsStreetMatchCandidate(highway string) bool {
	return highway != "" && !excludedStreetTypes[highway]
}
