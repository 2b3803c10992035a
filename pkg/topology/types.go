// Package topology implements the Topology Builder (C2): a two-pass
// streaming pipeline that detects intersection nodes in highway ways and
// emits split edges and vertex records to a topology store.
package topology

import (
	"github.com/exatel-oss/osmtopo/pkg/osmsource"
	"github.com/paulmach/orb"
)

// Node is a single topology vertex: an intersection, a dead end, or a
// synthetic point the Way Splitter introduced.
type Node struct {
	ID  osmsource.NodeRef
	Lon float64
	Lat float64
}

// Point returns the node's coordinate as an orb.Point.
func (n Node) Point() orb.Point {
	return orb.Point{n.Lon, n.Lat}
}

// Edge is one emitted topology edge: a sub-way of an original highway way,
// split on intersections and optionally further subdivided by the Way
// Splitter (C1).
type Edge struct {
	ID           int64 // osm_way_id * 10000 + seq
	OSMWayID     int64
	Type         int // highway classification code, see waymapping.go
	Source       osmsource.NodeRef
	Target       osmsource.NodeRef
	Lon1, Lat1   float64
	Lon2, Lat2   float64
	Name         string
	Geometry     orb.LineString
	LengthMeters float64 // populated by the store after insert
}

// Store is the narrow persistence contract the Topology Builder drives.
// It is deliberately small: schema bootstrap, batched insert, length
// population, and index creation, matching spec.md §6's topology store
// contract. pkg/topostore provides the concrete Postgres/PostGIS
// implementation.
type Store interface {
	// Bootstrap drops and recreates the r_nodes/r_ways schema.
	Bootstrap() error
	// InsertNodes persists a batch of topology nodes.
	InsertNodes(nodes []Node) error
	// InsertEdges persists a batch of topology edges.
	InsertEdges(edges []Edge) error
	// PopulateLengths asks the store to compute each edge's geographic
	// length in meters from its linestring geometry.
	PopulateLengths() error
	// CreateIndexes builds the GIST/B-tree indexes over both tables.
	CreateIndexes() error
	// Close releases any held resources.
	Close() error
}
