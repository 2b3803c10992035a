package osmsource

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"
)

// ResolvedArea is a fully assembled administrative-boundary polygon, ready
// for the Area Resolver (C7) to consume as the spec's "Area" event. Byte-
// level multipolygon ring assembly is an external-parser concern per
// spec.md §1/§6; this is that external piece made concrete, since no
// library in reach does OSM multipolygon assembly over orb types.
type ResolvedArea struct {
	ID       int64 // relation ID
	OrigID   int64 // same as ID; kept distinct to mirror the Area DTO's orig_id field
	Tags     Tags
	Geometry orb.MultiPolygon
}

type pendingRelation struct {
	id    int64
	tags  Tags
	outer []int64 // member way IDs with any role other than "inner"
	inner []int64 // member way IDs with role "inner"
}

// AssembleAdminAreas runs three bounded passes over the PBF file at path —
// relations, then only their member ways, then only those ways' nodes —
// to assemble administrative multipolygon relations into closed rings.
// This mirrors the teacher's own two-pass "collect referenced IDs, then
// resolve only those" technique, just applied to relation members instead
// of car-routable ways. It wants only multipolygon relations carrying a
// boundary tag, matching the Address Extractor's administrative-area
// branch (spec.md §4.4.2).
func AssembleAdminAreas(ctx context.Context, r *Reader) ([]ResolvedArea, error) {
	return assembleMultipolygons(ctx, r, func(rel Relation) bool {
		return rel.Tags.Get("type") == "multipolygon" && rel.Tags.Has("boundary")
	})
}

// AssembleAddressedAreas resolves multipolygon relations that carry
// addr:housenumber directly — buildings or campuses described as a
// relation rather than a single way (spec.md §4.4's "area from a
// relation" branch). No boundary tag is required here; an addressed
// relation is addressable regardless of its administrative status.
func AssembleAddressedAreas(ctx context.Context, r *Reader) ([]ResolvedArea, error) {
	return assembleMultipolygons(ctx, r, func(rel Relation) bool {
		return rel.Tags.Get("type") == "multipolygon" && rel.Tags.Has("addr:housenumber")
	})
}

// assembleMultipolygons is the shared three-pass ring-assembly engine
// behind AssembleAdminAreas and AssembleAddressedAreas: relations matching
// want, then only their member ways, then only those ways' nodes.
func assembleMultipolygons(ctx context.Context, r *Reader, want func(Relation) bool) ([]ResolvedArea, error) {
	relations := make(map[int64]*pendingRelation)
	wantedWays := make(map[int64]struct{})

	err := r.Run(ctx, Callbacks{
		Relation: func(rel Relation) {
			if !want(rel) {
				return
			}
			pr := &pendingRelation{id: rel.ID, tags: rel.Tags}
			for _, m := range rel.Members {
				if m.Type != "way" {
					continue
				}
				switch m.Role {
				case "inner":
					pr.inner = append(pr.inner, m.Ref)
				default:
					pr.outer = append(pr.outer, m.Ref)
				}
				wantedWays[m.Ref] = struct{}{}
			}
			relations[rel.ID] = pr
		},
	})
	if err != nil {
		return nil, fmt.Errorf("osmsource: relation pass: %w", err)
	}
	if len(wantedWays) == 0 {
		return nil, nil
	}

	wayRefs := make(map[int64][]NodeRef, len(wantedWays))
	neededNodes := make(map[NodeRef]struct{})

	err = r.Run(ctx, Callbacks{
		Way: func(w Way) {
			if _, ok := wantedWays[w.ID]; !ok {
				return
			}
			wayRefs[w.ID] = w.NodeRefs
			for _, ref := range w.NodeRefs {
				neededNodes[ref] = struct{}{}
			}
		},
	})
	if err != nil {
		return nil, fmt.Errorf("osmsource: member way pass: %w", err)
	}

	cache := NewFlexMemCache()
	defer cache.Close()

	err = r.Run(ctx, Callbacks{
		Node: func(n Node) {
			if _, ok := neededNodes[NodeRef(n.ID)]; ok {
				cache.Set(n.ID, n.Lon, n.Lat)
			}
		},
	})
	if err != nil {
		return nil, fmt.Errorf("osmsource: member node pass: %w", err)
	}

	out := make([]ResolvedArea, 0, len(relations))
	for _, pr := range relations {
		outerRings, ok1 := chainRings(pr.outer, wayRefs, cache)
		innerRings, ok2 := chainRings(pr.inner, wayRefs, cache)
		if !ok1 || len(outerRings) == 0 {
			continue
		}
		_ = ok2 // a missing inner ring just means the hole is dropped, not fatal

		mp := make(orb.MultiPolygon, 0, len(outerRings))
		for _, outer := range outerRings {
			poly := orb.Polygon{outer}
			poly = append(poly, innerRings...)
			mp = append(mp, poly)
		}

		out = append(out, ResolvedArea{
			ID:       pr.id,
			OrigID:   pr.id,
			Tags:     pr.tags,
			Geometry: mp,
		})
	}
	return out, nil
}

// chainRings greedily links way node-ref chains that share an endpoint
// into closed rings. Ways that never close (a missing member, a one-sided
// boundary cut by the extract edge) are dropped rather than emitted as an
// open ring, and the second result is then false — the caller skips the
// whole relation when its outer rings are incomplete, and only drops the
// affected holes when its inner rings are.
func chainRings(wayIDs []int64, wayRefs map[int64][]NodeRef, cache NodeCache) ([]orb.Ring, bool) {
	var chains [][]NodeRef
	complete := true
	for _, id := range wayIDs {
		refs, ok := wayRefs[id]
		if !ok || len(refs) < 2 {
			complete = false
			continue
		}
		chains = append(chains, append([]NodeRef(nil), refs...))
	}

	merged := mergeChains(chains)

	var rings []orb.Ring
	for _, chain := range merged {
		if len(chain) < 4 || chain[0] != chain[len(chain)-1] {
			complete = false
			continue
		}
		ring := make(orb.Ring, 0, len(chain))
		ok := true
		for _, ref := range chain {
			pt, found := cache.Get(ref)
			if !found {
				ok = false
				break
			}
			ring = append(ring, pt)
		}
		if !ok {
			complete = false
			continue
		}
		rings = append(rings, ring)
	}
	return rings, complete
}

// mergeChains repeatedly joins chains sharing an endpoint until no further
// merge is possible.
func mergeChains(chains [][]NodeRef) [][]NodeRef {
	changed := true
	for changed {
		changed = false
		for i := 0; i < len(chains); i++ {
			for j := i + 1; j < len(chains); j++ {
				if joined, ok := joinChains(chains[i], chains[j]); ok {
					chains[i] = joined
					chains = append(chains[:j], chains[j+1:]...)
					changed = true
					break
				}
			}
			if changed {
				break
			}
		}
	}
	return chains
}

func joinChains(a, b []NodeRef) ([]NodeRef, bool) {
	if len(a) == 0 || len(b) == 0 {
		return nil, false
	}
	aStart, aEnd := a[0], a[len(a)-1]
	bStart, bEnd := b[0], b[len(b)-1]

	switch {
	case aEnd == bStart:
		return append(append([]NodeRef(nil), a...), b[1:]...), true
	case aStart == bEnd:
		return append(append([]NodeRef(nil), b...), a[1:]...), true
	case aEnd == bEnd:
		return append(append([]NodeRef(nil), a...), reversed(b[:len(b)-1])...), true
	case aStart == bStart:
		return append(reversed(a[1:]), b...), true
	}
	return nil, false
}

func reversed(refs []NodeRef) []NodeRef {
	out := make([]NodeRef, len(refs))
	for i, r := range refs {
		out[len(refs)-1-i] = r
	}
	return out
}
