package source

import (
	"context"
	"fmt"
	"log/slog"

	"glicks/internal/config"
	"glicks/internal/rpc"
	"glicks/internal/store"
)

// Open builds the provider selected by cfg.Source.Kind, wrapped in a Redis
// cache when cfg.Cache.RedisURL is set. The returned func releases any
// connections the provider holds.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger) (Provider, func(), error) {
	var (
		p       Provider
		closers []func()
	)
	switch cfg.Source.Kind {
	case "static":
		p = NewStaticProvider(cfg.Source.Static.Dir, log)
	case "rest":
		if cfg.Source.REST.URL == "" {
			return nil, nil, fmt.Errorf("rest source requires a url")
		}
		p = NewRESTProvider(cfg.Source.REST, log)
	case "postgres":
		pool, err := Connect(ctx, cfg.Source.Postgres)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		closers = append(closers, pool.Close)
		p = NewPostgresProvider(pool, log)
	case "rpc":
		c, err := rpc.Dial(cfg.Source.RPC.Addr)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { c.Close() })
		p = c
	case "archive":
		p = NewArchiveProvider(store.NewParquetArchive(cfg.Storage.DataDir), log)
	default:
		return nil, nil, fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
	}

	if cfg.Cache.RedisURL != "" {
		client, err := NewRedisClient(cfg.Cache.RedisURL)
		if err != nil {
			for _, c := range closers {
				c()
			}
			return nil, nil, err
		}
		closers = append(closers, func() { client.Close() })
		p = NewCachedProvider(p, client, cfg.Cache.PicksTTL, cfg.Cache.ResultsTTL, log)
		log.Info("redis cache enabled", "picks_ttl", cfg.Cache.PicksTTL, "results_ttl", cfg.Cache.ResultsTTL)
	}

	log.Info("data source opened", "kind", cfg.Source.Kind)
	return p, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}, nil
}
