// Package source provides the read-only data sources picks, date indexes
// and season results are loaded from.
package source

import (
	"context"
	"fmt"
	"log/slog"

	"glicks/internal/domain"
)

// Provider loads dashboard payloads for a viewed season.
type Provider interface {
	// TodayPicks returns the latest pick list of the season. An offseason
	// feed is an empty payload, not an error.
	TodayPicks(ctx context.Context, vc domain.ViewContext) (*domain.PicksPayload, error)

	// PicksForDate returns the archived pick list of one YYYY-MM-DD date.
	PicksForDate(ctx context.Context, vc domain.ViewContext, date string) (*domain.PicksPayload, error)

	// DateIndex returns every date of the season that has picks.
	DateIndex(ctx context.Context, vc domain.ViewContext) (*domain.DateIndexPayload, error)

	// Results returns the season's graded performance.
	Results(ctx context.Context, vc domain.ViewContext) (*domain.ResultsPayload, error)
}

var (
	// ErrNotFound marks a season or date the source has no data for.
	ErrNotFound = domain.ErrNotFound
	// ErrInvalidDate marks a malformed date argument.
	ErrInvalidDate = domain.ErrInvalidDate
)

func checkDate(date string) error {
	if !domain.ValidDate(date) {
		return fmt.Errorf("%q: %w", date, ErrInvalidDate)
	}
	return nil
}

// sanitize drops malformed picks and logs how many were removed.
func sanitize(log *slog.Logger, p *domain.PicksPayload, season, what string) *domain.PicksPayload {
	if n := p.Sanitize(); n > 0 {
		log.Warn("dropped malformed picks", "season", season, "feed", what, "dropped", n)
	}
	return p
}
