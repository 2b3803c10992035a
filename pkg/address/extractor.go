package address

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"github.com/exatel-oss/osmtopo/pkg/geo"
	"github.com/exatel-oss/osmtopo/pkg/osmsource"
)

// Extractor is the Address Extractor (C4): it consumes Node, Way, and Area
// events and populates a State with Places, RelationStubs, and Areas,
// mirroring the original AddressExtractor handler almost call-for-call.
type Extractor struct {
	state *State
	cache osmsource.NodeCache
}

// NewExtractor returns an Extractor writing into state, caching every
// node's coordinate in cache as it is seen — the Go analogue of osmium's
// automatic location-caching handler, since ways are only addressed a
// small fraction of the time and there is no way to know in advance which
// node coordinates a later way will need.
func NewExtractor(state *State, cache osmsource.NodeCache) *Extractor {
	return &Extractor{state: state, cache: cache}
}

// Run performs the main node/way/relation pass first, so the postal-code
// tables are filled before any Area resolves its postcode, then assembles
// administrative and addressed-relation areas (they require their own
// bounded multi-pass ring assembly).
func (e *Extractor) Run(ctx context.Context, r *osmsource.Reader) error {
	err := r.Run(ctx, osmsource.Callbacks{
		Node:     e.handleNode,
		Way:      e.handleWay,
		Relation: e.handleRelation,
	})
	if err != nil {
		return err
	}

	adminAreas, err := osmsource.AssembleAdminAreas(ctx, r)
	if err != nil {
		return fmt.Errorf("address: assemble admin areas: %w", err)
	}
	for _, ra := range adminAreas {
		e.handleAdminArea(ra)
	}

	addressedAreas, err := osmsource.AssembleAddressedAreas(ctx, r)
	if err != nil {
		return fmt.Errorf("address: assemble addressed areas: %w", err)
	}
	for _, ra := range addressedAreas {
		e.handleAddressedArea(ra)
	}
	return nil
}

func (e *Extractor) handleNode(n osmsource.Node) {
	e.cache.Set(n.ID, n.Lon, n.Lat)
	e.state.Stats.Inc("nodes")

	tags := n.Tags
	if pc := tags.Get("postal_code"); pc != "" {
		if simc := tags.Get("simc"); simc != "" {
			e.state.PostalSimcs[simc] = pc
		}
		e.state.PostalPlaces = append(e.state.PostalPlaces, PostalPlace{
			Name:     tags.Get("name"),
			IsIn:     tags.Get("is_in"),
			Postcode: pc,
			Point:    orb.Point{n.Lon, n.Lat},
		})
	}

	if !tags.Has("addr:housenumber") {
		e.state.Stats.Inc("node_no_housenumber")
		return
	}

	addr := TagsToAddress(tags, e.state.Stats)
	e.state.IndexAddress(Place{
		PID:            fmt.Sprintf("n%d", n.ID),
		Name:           tags.Get("name"),
		Amenity:        tags.Get("amenity"),
		Addr:           addr,
		Point:          orb.Point{n.Lon, n.Lat},
		StreetDistance: sentinelStreetDistance,
	})
}

func (e *Extractor) handleWay(w osmsource.Way) {
	e.state.Stats.Inc("ways")

	tags := w.Tags
	if !tags.Has("addr:housenumber") {
		e.state.Stats.Inc("way_no_housenumber")
		return
	}

	addr := TagsToAddress(tags, e.state.Stats)
	ls, err := osmsource.BuildLineString(e.cache, w.NodeRefs)
	if err != nil {
		e.state.Stats.Inc("way_with_invalid_location")
		return
	}

	e.state.IndexAddress(Place{
		PID:            fmt.Sprintf("w%d", w.ID),
		Name:           tags.Get("name"),
		Amenity:        tags.Get("amenity"),
		Addr:           addr,
		Point:          geo.CentroidOfLineString(ls),
		StreetDistance: sentinelStreetDistance,
	})
}

func (e *Extractor) handleRelation(rel osmsource.Relation) {
	e.state.Stats.Inc("relations")

	tags := rel.Tags
	if tags.Get("type") == "multipolygon" {
		// Multipolygons are handled as Areas, not here.
		e.state.Stats.Inc("relation_wrong_type")
		return
	}
	if !tags.Has("addr:housenumber") {
		e.state.Stats.Inc("relation_no_housenumber")
		return
	}

	var wayMembers []osmsource.RelationMember
	for _, m := range rel.Members {
		if m.Type == "way" {
			wayMembers = append(wayMembers, m)
		}
	}
	if len(wayMembers) == 0 {
		e.state.Stats.Inc("relation_without_way_members")
		return
	}

	sortMembersByRole(wayMembers)
	addr := TagsToAddress(tags, e.state.Stats)
	e.state.Relations = append(e.state.Relations, RelationStub{
		RID:     fmt.Sprintf("r%d", rel.ID),
		Name:    tags.Get("name"),
		Amenity: tags.Get("amenity"),
		Addr:    addr,
		WayRef:  wayMembers[0].Ref,
	})
}

// sortMembersByRole orders members so roles beginning with "o" (outline/
// outer) sort before "i" (inner), before "p" (part), before anything else;
// members with an empty role sort last of all (spec.md §4.6 step 1).
func sortMembersByRole(members []osmsource.RelationMember) {
	rank := func(role string) int {
		if role == "" {
			return 256
		}
		switch role[0] {
		case 'o':
			return 0
		case 'i':
			return 1
		case 'p':
			return 2
		default:
			return int(role[0])
		}
	}
	// Simple insertion sort: member lists per relation are tiny (a handful
	// of members), so this avoids pulling in sort.Slice's closures here.
	for i := 1; i < len(members); i++ {
		for j := i; j > 0 && rank(members[j].Role) < rank(members[j-1].Role); j-- {
			members[j], members[j-1] = members[j-1], members[j]
		}
	}
}

func (e *Extractor) handleAdminArea(ra osmsource.ResolvedArea) {
	e.state.Stats.Inc("areas")
	tags := ra.Tags

	if tags.Get("boundary") != "administrative" {
		e.state.Stats.Inc("areas_not_administrative")
		return
	}

	level, err := strconv.Atoi(tags.Get("admin_level"))
	if err != nil {
		level = 99
	}
	if level <= 4 || level >= 10 {
		e.state.Stats.Inc("areas_bad_level")
		return
	}
	if tags.Has("religion") {
		e.state.Stats.Inc("areas_religion")
		return
	}

	name := tags.Get("name")
	simc := tags.Get("teryt:simc")
	terc := tags.Get("teryt:terc")
	tercType := tags.Get("terc:typ")
	hasPopulation := tags.Has("population")

	if strings.HasPrefix(name, "gmina ") {
		e.state.Stats.Inc("areas_gmina")
	}
	if strings.HasPrefix(name, "powiat ") {
		e.state.Stats.Inc("areas_powiat")
	}

	quality := 0
	if terc != "" || tercType != "" || simc != "" {
		quality += 3
	}
	if hasPopulation {
		quality++
	}

	centroid := geo.Centroid(ra.Geometry)
	postcode := ResolvePostcode(simc, name, ra.Geometry, e.state)

	e.state.Areas = append(e.state.Areas, Area{
		AID:      fmt.Sprintf("a%d", ra.ID),
		Name:     name,
		Quality:  quality,
		Level:    level,
		Geometry: ra.Geometry,
		Centroid: centroid,
		Postcode: postcode,
	})
}

func (e *Extractor) handleAddressedArea(ra osmsource.ResolvedArea) {
	e.state.Stats.Inc("areas_as_relation")
	tags := ra.Tags
	addr := TagsToAddress(tags, e.state.Stats)

	e.state.IndexAddress(Place{
		PID:            fmt.Sprintf("r%d", ra.ID),
		Name:           tags.Get("name"),
		Amenity:        tags.Get("amenity"),
		Addr:           addr,
		Point:          geo.Centroid(ra.Geometry),
		StreetDistance: sentinelStreetDistance,
	})
}
