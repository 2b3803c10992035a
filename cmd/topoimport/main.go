// Command topoimport drives the Topology Builder (C1-C2): it reads a
// PBF extract and writes split edges and vertex records into a
// PostGIS-backed topology store.
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

	"github.com/exatel-oss/osmtopo/pkg/applog"
	"github.com/exatel-oss/osmtopo/pkg/config"
	"github.com/exatel-oss/osmtopo/pkg/osmsource"
	"github.com/exatel-oss/osmtopo/pkg/stats"
	"github.com/exatel-oss/osmtopo/pkg/statusapi"
	"github.com/exatel-oss/osmtopo/pkg/topology"
	"github.com/exatel-oss/osmtopo/pkg/topostore"
)

func main() {
	pbf := flag.String("pbf", "", "Path to .osm.pbf file (required)")
	maxMeters := flag.Float64("max-meters", 0, "Maximum edge length in meters before further subdivision; 0 disables the way splitter")
	cacheMem := flag.Bool("cache-mem", true, "Select the flex_mem (true) or sparse-file (false) node cache; the topology builder does not read from it and keeps its node coordinates in memory either way")
	cacheFile := flag.String("cache-file", "topoimport-nodes.cache", "Sparse coordinate cache file path, created when --cache-mem=false; the topology builder does not use it")
	diagnosticsAddr := flag.String("diagnostics-addr", "", "If set, serve GET /health and GET /stats on this address while importing")
	flag.Parse()

	if *pbf == "" {
		fmt.Fprintln(os.Stderr, "Usage: topoimport --pbf <file.osm.pbf> [--max-meters N] [--cache-mem=false] [--diagnostics-addr :8080]")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "topoimport: load config: %v\n", err)
		os.Exit(1)
	}
	if err := config.ValidateForTopoImport(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "topoimport: %v\n", err)
		os.Exit(1)
	}

	log, err := applog.New(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "topoimport: build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	runID := uuid.NewString()
	log = log.With(zap.String("run_id", runID), zap.String("component", "topoimport"))

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

	dialCtx, dialCancel := context.WithTimeout(ctx, config.DialTimeout)
	defer dialCancel()
	store, err := topostore.New(dialCtx, cfg.Database, log)
	if err != nil {
		log.Fatal("connect to topology store", zap.Error(err))
	}
	defer store.Close()

	reader := osmsource.NewReader(*pbf)
	builder := topology.NewBuilder(reader, store, *maxMeters, log)

	if *diagnosticsAddr != "" {
		source := statusapi.NewSnapshotSource()
		server := statusapi.NewServer(source, log)
		go publishStatsPeriodically(ctx, builder.Stats(), source)
		go func() {
			if err := server.Listen(*diagnosticsAddr); err != nil {
				log.Warn("diagnostics server stopped", zap.Error(err))
			}
		}()
	}

	if err := builder.Run(ctx); err != nil {
		log.Fatal("topology build failed", zap.Error(err))
	}
}

// publishStatsPeriodically copies counters into source every tick until ctx
// is done, giving the diagnostics endpoint a live-ish view without its
// goroutine ever touching the pipeline's own counters.
func publishStatsPeriodically(ctx context.Context, counters *stats.Counters, source *statusapi.SnapshotSource) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			source.Publish(counters.Snapshot())
		}
	}
}
