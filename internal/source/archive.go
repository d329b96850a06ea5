package source

import (
	"context"
	"fmt"
	"log/slog"

	"glicks/internal/domain"
	"glicks/internal/store"
)

// Compile-time interface check.
var _ Provider = (*ArchiveProvider)(nil)

// ArchiveProvider serves seasons mirrored into a local PickArchive.
type ArchiveProvider struct {
	archive store.PickArchive
	log     *slog.Logger
}

// NewArchiveProvider wraps archive.
func NewArchiveProvider(archive store.PickArchive, log *slog.Logger) *ArchiveProvider {
	return &ArchiveProvider{archive: archive, log: log}
}

func (p *ArchiveProvider) TodayPicks(ctx context.Context, vc domain.ViewContext) (*domain.PicksPayload, error) {
	return latestPicks(ctx, p, vc)
}

func (p *ArchiveProvider) PicksForDate(ctx context.Context, vc domain.ViewContext, date string) (*domain.PicksPayload, error) {
	if err := checkDate(date); err != nil {
		return nil, err
	}
	picks, err := p.archive.ReadPicks(ctx, vc.Season, date)
	if err != nil {
		return nil, fmt.Errorf("archive picks: %w", err)
	}
	return sanitize(p.log, &domain.PicksPayload{Date: date, Picks: picks}, vc.Season, date), nil
}

func (p *ArchiveProvider) DateIndex(ctx context.Context, vc domain.ViewContext) (*domain.DateIndexPayload, error) {
	dates, err := p.archive.ListDates(ctx, vc.Season)
	if err != nil {
		return nil, fmt.Errorf("archive index: %w", err)
	}
	return &domain.DateIndexPayload{Dates: dates}, nil
}

func (p *ArchiveProvider) Results(ctx context.Context, vc domain.ViewContext) (*domain.ResultsPayload, error) {
	res, err := p.archive.ReadResults(ctx, vc.Season)
	if err != nil {
		return nil, fmt.Errorf("archive results: %w", err)
	}
	res.DeriveCumulative()
	return res, nil
}
