// Command addrimport drives the Address Resolver (C3-C7): it reads a
// PBF extract and writes a flat address CSV, the way the original
// save_to_csv step did.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/exatel-oss/osmtopo/pkg/address"
	"github.com/exatel-oss/osmtopo/pkg/applog"
	"github.com/exatel-oss/osmtopo/pkg/config"
	"github.com/exatel-oss/osmtopo/pkg/osmsource"
	"github.com/exatel-oss/osmtopo/pkg/statusapi"
)

func main() {
	pbf := flag.String("pbf", "", "Path to .osm.pbf file (required)")
	outputPath := flag.String("output-path", "addresses.csv", "Output CSV path")
	cacheMem := flag.Bool("cache-mem", true, "Keep node coordinates in memory (flex_mem); when false, spill to a sparse file on disk")
	cacheFile := flag.String("cache-file", "addrimport-nodes.cache", "Sparse coordinate cache file path, used when --cache-mem=false")
	diagnosticsAddr := flag.String("diagnostics-addr", "", "If set, serve GET /health and GET /stats on this address while importing")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	if *pbf == "" {
		fmt.Fprintln(os.Stderr, "Usage: addrimport --pbf <file.osm.pbf> [--output-path addresses.csv] [--cache-mem=false] [--diagnostics-addr :8080]")
		os.Exit(1)
	}

	level := *logLevel
	levelFlagSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "log-level" {
			levelFlagSet = true
		}
	})
	if !levelFlagSet {
		if cfg, err := config.Load(); err == nil && cfg.Log.Level != "" {
			level = cfg.Log.Level
		}
	}
	log, err := applog.New(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "addrimport: build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	runID := uuid.NewString()
	log = log.With(zap.String("run_id", runID), zap.String("component", "addrimport"))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var cache osmsource.NodeCache
	if *cacheMem {
		cache = osmsource.NewFlexMemCache()
	} else {
		cache, err = osmsource.NewSparseFileCache(*cacheFile)
		if err != nil {
			log.Fatal("open sparse node cache", zap.Error(err))
		}
	}
	defer cache.Close()

	reader := osmsource.NewReader(*pbf)
	pipeline := address.NewPipeline(reader, cache, log)

	if *diagnosticsAddr != "" {
		source := statusapi.NewSnapshotSource()
		server := statusapi.NewServer(source, log)
		go publishStatsPeriodically(ctx, pipeline, source)
		go func() {
			if err := server.Listen(*diagnosticsAddr); err != nil {
				log.Warn("diagnostics server stopped", zap.Error(err))
			}
		}()
	}

	if err := pipeline.Run(ctx); err != nil {
		log.Fatal("address pipeline failed", zap.Error(err))
	}

	out, err := os.Create(*outputPath)
	if err != nil {
		log.Fatal("create output file", zap.Error(err))
	}
	defer out.Close()

	if err := address.WriteCSV(out, pipeline.State()); err != nil {
		log.Fatal("write address csv", zap.Error(err))
	}

	log.Info("addresses written", zap.String("path", *outputPath), zap.Int("count", len(pipeline.State().Places)))
}

// publishStatsPeriodically copies the pipeline's running counters into
// source every tick until ctx is done.
func publishStatsPeriodically(ctx context.Context, pipeline *address.Pipeline, source *statusapi.SnapshotSource) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			source.Publish(pipeline.State().Stats.Snapshot())
		}
	}
}
