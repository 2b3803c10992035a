package address

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/exatel-oss/osmtopo/pkg/osmsource"
)

// Pipeline runs the full Address Resolver: Extractor (C4), GeometryMatcher
// (C5), StreetMatcher (C6), then Resolver (C7), each a full pass over the
// same reader, exactly as spec.md §5 requires ("C4 then C5 then C6, each a
// full pass").
type Pipeline struct {
	reader *osmsource.Reader
	cache  osmsource.NodeCache
	state  *State
	log    *zap.Logger
}

// NewPipeline returns a Pipeline reading from reader, caching node
// coordinates in cache (flex-mem or sparse-file, per the caller's resource
// policy — spec.md §5).
func NewPipeline(reader *osmsource.Reader, cache osmsource.NodeCache, log *zap.Logger) *Pipeline {
	return &Pipeline{
		reader: reader,
		cache:  cache,
		state:  NewState(),
		log:    log,
	}
}

// State returns the pipeline's resolved state, valid after Run returns.
func (p *Pipeline) State() *State {
	return p.state
}

// Run executes all four passes in order.
func (p *Pipeline) Run(ctx context.Context) error {
	start := time.Now()

	if err := NewExtractor(p.state, p.cache).Run(ctx, p.reader); err != nil {
		return fmt.Errorf("address: extractor: %w", err)
	}
	p.log.Info("address extractor complete",
		zap.Int("places", len(p.state.Places)),
		zap.Int("relations_pending", len(p.state.Relations)),
		zap.Int("areas", len(p.state.Areas)),
		zap.Duration("elapsed", time.Since(start)))

	gmStart := time.Now()
	if err := NewGeometryMatcher(p.state, p.cache).Run(ctx, p.reader); err != nil {
		return fmt.Errorf("address: geometry matcher: %w", err)
	}
	p.log.Info("geometry matcher complete", zap.Duration("elapsed", time.Since(gmStart)))

	smStart := time.Now()
	if err := NewStreetMatcher(p.state, p.cache).Run(ctx, p.reader); err != nil {
		return fmt.Errorf("address: street matcher: %w", err)
	}
	p.log.Info("street matcher complete", zap.Duration("elapsed", time.Since(smStart)))

	NewResolver(p.state).Resolve()

	p.log.Info("address pipeline complete",
		zap.Duration("total_elapsed", time.Since(start)),
		zap.Any("stats", p.state.Stats.Snapshot()))
	return nil
}
