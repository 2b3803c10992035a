// Package osmsource is the adapter between a raw OSM PBF extract and the
// domain event types pkg/topology and pkg/address consume. Byte-level PBF
// parsing is deliberately out of scope for the core (spec.md §1) — this
// package is the one concrete "external collaborator" implementation that
// makes the CLI entrypoints runnable, built on github.com/paulmach/osm's
// osmpbf scanner the same way the teacher module's pkg/osm did.
package osmsource

import "fmt"

// NodeRef is a 64-bit OSM node identifier, used both for real node IDs and
// for the synthetic IDs the Way Splitter (C1) manufactures.
type NodeRef int64

// Tags is a normalized OSM tag bag: UTF-8 string keys and values throughout.
// spec.md §9 flags that the legacy parser returned byte-string tag keys on
// one side of the pipeline and plain strings on the other; every event this
// package emits uses this single representation, resolving that
// inconsistency at the adapter boundary instead of further downstream.
type Tags map[string]string

// Get returns the tag value for key, or "" if absent.
func (t Tags) Get(key string) string {
	return t[key]
}

// Has reports whether key is present, regardless of value (including "").
func (t Tags) Has(key string) bool {
	_, ok := t[key]
	return ok
}

// Node is a single OSM node: identifier, coordinate, and tags.
type Node struct {
	ID   NodeRef
	Lon  float64
	Lat  float64
	Tags Tags
}

// Way is an ordered sequence of node references and tags. Geometry is not
// attached here — callers resolve coordinates through their own NodeCache,
// exactly as the original Python's TopologyMigrator owned its own
// way_nodes map rather than relying on the parser for geometry.
type Way struct {
	ID       int64
	NodeRefs []NodeRef
	Tags     Tags
}

// RelationMember is one member of a Relation: its type ("node"/"way"/
// "relation"), its target ID, and its role string.
type RelationMember struct {
	Type string
	Ref  int64
	Role string
}

// Relation groups other OSM entities with roles — administrative
// boundaries and multi-way buildings in this pipeline.
type Relation struct {
	ID      int64
	Members []RelationMember
	Tags    Tags
}

// Callbacks holds the optional per-object-kind hooks a Reader.Run pass
// invokes. Only object kinds with a non-nil callback are scanned — mirrors
// the teacher's scanner.SkipNodes/SkipWays/SkipRelations toggles — and
// matches spec.md §4.2's "way_callback only" / "node + way callbacks"
// terminology for the Topology Builder's two passes.
type Callbacks struct {
	Node     func(Node)
	Way      func(Way)
	Relation func(Relation)
}

// ErrInvalidLocation is returned when building a geometry from a NodeRef
// list and at least one referenced node has no cached coordinate — the Go
// equivalent of pyosmium's osmium._osmium.InvalidLocationError.
var ErrInvalidLocation = fmt.Errorf("osmsource: node location not cached")
