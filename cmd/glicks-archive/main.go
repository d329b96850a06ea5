// One-shot tool: mirror seasons from the configured source into the local
// Parquet archive so an "archive" source can serve them offline.
//
// Usage:
//
//	go run cmd/glicks-archive/main.go [-season 2025,2024] [-workers 4] [-force]
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"glicks/internal/config"
	"glicks/internal/domain"
	"glicks/internal/gather"
	"glicks/internal/source"
	"glicks/internal/store"
	"glicks/internal/util"
)

func main() {
	seasons := flag.String("season", "", "comma-separated seasons to mirror (default: all configured)")
	workers := flag.Int("workers", 4, "dates fetched concurrently")
	force := flag.Bool("force", false, "refetch dates that are already archived and graded")
	flag.Parse()

	cfgPath := "config/glicks.yaml"
	if p := os.Getenv("GLICKS_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if errors.Is(err, os.ErrNotExist) {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.Source.Kind == "archive" {
		log.Fatalf("source kind is archive; point the mirror at a remote source")
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	src, closeSource, err := source.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("opening source: %v", err)
	}
	defer closeSource()

	targets := cfg.AllSeasons()
	if *seasons != "" {
		targets = nil
		for _, s := range strings.Split(*seasons, ",") {
			if s = strings.TrimSpace(s); s != "" {
				targets = append(targets, s)
			}
		}
	}

	base := domain.NewViewContext(cfg.Seasons.Current, cfg.Seasons.Current, util.LoadLocation(cfg.Seasons.TimeZone))
	archive := store.NewParquetArchive(cfg.Storage.DataDir)
	m := gather.NewSeasonMirror(src, archive, base, targets, *workers, *force, logger)
	if err := m.Run(ctx); err != nil {
		log.Fatalf("%s: %v", m.Name(), err)
	}

	// Drop cached payloads of the mirrored seasons so readers sharing the
	// cache see the new archive.
	if cp, ok := src.(*source.CachedProvider); ok {
		for _, season := range targets {
			if err := cp.Invalidate(ctx, season, m.Written[season]...); err != nil {
				logger.Warn("cache invalidation failed", "season", season, "error", err)
			}
		}
	}
	logger.Info("mirror complete", "seasons", targets, "data_dir", cfg.Storage.DataDir)
}
