package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"glicks/internal/domain"
)

// Compile-time interface check.
var _ Provider = (*CachedProvider)(nil)

// CachedProvider stores successful payloads of another provider in Redis.
// Redis failures are logged and fall through to the wrapped provider.
type CachedProvider struct {
	next       Provider
	client     *redis.Client
	picksTTL   time.Duration
	resultsTTL time.Duration
	log        *slog.Logger
}

// NewRedisClient parses a redis:// URL into a client.
func NewRedisClient(rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

// NewCachedProvider wraps next. Live season picks expire after picksTTL;
// results and archived seasons after resultsTTL.
func NewCachedProvider(next Provider, client *redis.Client, picksTTL, resultsTTL time.Duration, log *slog.Logger) *CachedProvider {
	return &CachedProvider{next: next, client: client, picksTTL: picksTTL, resultsTTL: resultsTTL, log: log}
}

func cacheKey(season, kind string) string {
	return fmt.Sprintf("glicks:%s:%s", season, kind)
}

func (c *CachedProvider) ttl(vc domain.ViewContext) time.Duration {
	if vc.IsArchive() {
		return c.resultsTTL
	}
	return c.picksTTL
}

// cached returns the payload stored at key, or calls fetch and stores its
// result for ttl.
func cached[T any](ctx context.Context, c *CachedProvider, key string, ttl time.Duration, fetch func() (*T, error)) (*T, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var out T
		if err := json.Unmarshal(data, &out); err == nil {
			return &out, nil
		}
		c.log.Warn("discarding undecodable cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		c.log.Warn("cache read failed", "key", key, "error", err)
	}

	out, err := fetch()
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(out); err == nil {
		if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
			c.log.Warn("cache write failed", "key", key, "error", err)
		}
	}
	return out, nil
}

func (c *CachedProvider) TodayPicks(ctx context.Context, vc domain.ViewContext) (*domain.PicksPayload, error) {
	return cached(ctx, c, cacheKey(vc.Season, "picks:today"), c.ttl(vc), func() (*domain.PicksPayload, error) {
		return c.next.TodayPicks(ctx, vc)
	})
}

func (c *CachedProvider) PicksForDate(ctx context.Context, vc domain.ViewContext, date string) (*domain.PicksPayload, error) {
	if err := checkDate(date); err != nil {
		return nil, err
	}
	return cached(ctx, c, cacheKey(vc.Season, "picks:"+date), c.ttl(vc), func() (*domain.PicksPayload, error) {
		return c.next.PicksForDate(ctx, vc, date)
	})
}

func (c *CachedProvider) DateIndex(ctx context.Context, vc domain.ViewContext) (*domain.DateIndexPayload, error) {
	return cached(ctx, c, cacheKey(vc.Season, "index"), c.ttl(vc), func() (*domain.DateIndexPayload, error) {
		return c.next.DateIndex(ctx, vc)
	})
}

func (c *CachedProvider) Results(ctx context.Context, vc domain.ViewContext) (*domain.ResultsPayload, error) {
	return cached(ctx, c, cacheKey(vc.Season, "results"), c.resultsTTL, func() (*domain.ResultsPayload, error) {
		return c.next.Results(ctx, vc)
	})
}

// Invalidate drops the cached today feed, index, results and the given
// dates of season in one pipeline.
func (c *CachedProvider) Invalidate(ctx context.Context, season string, dates ...string) error {
	pipe := c.client.Pipeline()
	pipe.Del(ctx, cacheKey(season, "picks:today"), cacheKey(season, "index"), cacheKey(season, "results"))
	for _, d := range dates {
		pipe.Del(ctx, cacheKey(season, "picks:"+d))
	}
	_, err := pipe.Exec(ctx)
	return err
}
