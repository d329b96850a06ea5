package gather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"glicks/internal/domain"
	"glicks/internal/source"
	"glicks/internal/store"
)

// Compile-time interface check.
var _ Gatherer = (*SeasonMirror)(nil)

// MirrorStats counts what one mirror pass did.
type MirrorStats struct {
	Dates   int // dates written
	Skipped int // dates already archived and fully graded
	Picks   int // picks written
	Results bool
}

// SeasonMirror copies every indexed date of a set of seasons, plus each
// season's results, from a source provider into a PickArchive.
type SeasonMirror struct {
	src     source.Provider
	dst     store.PickArchive
	base    domain.ViewContext
	seasons []string
	workers int
	force   bool
	log     *slog.Logger

	// Written lists the dates written by the last Run, per season.
	Written map[string][]string
	// Stats holds the counts of the last Run, per season.
	Stats map[string]MirrorStats
}

// NewSeasonMirror creates a mirror of seasons. Up to workers dates are
// fetched concurrently. Unless force is set, dates whose archived picks are
// all graded are not fetched again.
func NewSeasonMirror(src source.Provider, dst store.PickArchive, base domain.ViewContext, seasons []string, workers int, force bool, log *slog.Logger) *SeasonMirror {
	if workers < 1 {
		workers = 1
	}
	return &SeasonMirror{src: src, dst: dst, base: base, seasons: seasons, workers: workers, force: force, log: log}
}

func (m *SeasonMirror) Name() string { return "season-mirror" }

// Run mirrors every season in order and stops at the first season that
// fails.
func (m *SeasonMirror) Run(ctx context.Context) error {
	m.Written = make(map[string][]string, len(m.seasons))
	m.Stats = make(map[string]MirrorStats, len(m.seasons))
	for _, season := range m.seasons {
		stats, written, err := m.mirrorSeason(ctx, m.base.WithSeason(season))
		if err != nil {
			return fmt.Errorf("mirroring %s: %w", season, err)
		}
		m.Written[season] = written
		m.Stats[season] = stats
		m.log.Info("season mirrored",
			"season", season,
			"dates", stats.Dates,
			"skipped", stats.Skipped,
			"picks", stats.Picks,
			"results", stats.Results,
		)
	}
	return nil
}

func (m *SeasonMirror) mirrorSeason(ctx context.Context, vc domain.ViewContext) (MirrorStats, []string, error) {
	var stats MirrorStats
	idx, err := m.src.DateIndex(ctx, vc)
	if errors.Is(err, source.ErrNotFound) {
		m.log.Warn("season has no index", "season", vc.Season)
		return stats, nil, nil
	}
	if err != nil {
		return stats, nil, err
	}

	var dates []string
	for _, d := range idx.Dates {
		if d.Count <= 0 || !domain.ValidDate(d.Date) {
			continue
		}
		if !m.force && m.complete(ctx, vc.Season, d.Date) {
			stats.Skipped++
			continue
		}
		dates = append(dates, d.Date)
	}

	written := make([]bool, len(dates))
	var picks atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)
	for i, date := range dates {
		g.Go(func() error {
			p, err := m.src.PicksForDate(gctx, vc, date)
			if errors.Is(err, source.ErrNotFound) {
				m.log.Warn("indexed date has no picks", "season", vc.Season, "date", date)
				return nil
			}
			if err != nil {
				return fmt.Errorf("picks %s: %w", date, err)
			}
			if err := m.dst.WritePicks(gctx, vc.Season, date, p.Picks); err != nil {
				return err
			}
			written[i] = len(p.Picks) > 0
			picks.Add(int64(len(p.Picks)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, nil, err
	}

	var out []string
	for i, ok := range written {
		if ok {
			out = append(out, dates[i])
		}
	}
	stats.Dates = len(out)
	stats.Picks = int(picks.Load())

	res, err := m.src.Results(ctx, vc)
	switch {
	case errors.Is(err, source.ErrNotFound):
	case err != nil:
		return stats, out, fmt.Errorf("results: %w", err)
	default:
		if err := m.dst.WriteResults(ctx, vc.Season, res); err != nil {
			return stats, out, err
		}
		stats.Results = true
	}
	return stats, out, nil
}

// complete reports whether date is archived with every pick graded.
func (m *SeasonMirror) complete(ctx context.Context, season, date string) bool {
	picks, err := m.dst.ReadPicks(ctx, season, date)
	if err != nil || len(picks) == 0 {
		return false
	}
	for _, p := range picks {
		if p.Result == "" {
			return false
		}
	}
	return true
}
