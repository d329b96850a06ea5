// Package store defines storage interfaces for archiving pick feeds and
// persisting viewer sessions.
package store

import (
	"context"
	"time"

	"glicks/internal/domain"
)

// ErrNotFound is returned when a season, date or session has no stored data.
var ErrNotFound = domain.ErrNotFound

// PickArchive persists and retrieves archived pick lists and season results.
type PickArchive interface {
	// WritePicks merges picks into the archive for season and date.
	WritePicks(ctx context.Context, season, date string, picks []domain.Pick) error

	// ReadPicks returns the archived picks for season and date.
	ReadPicks(ctx context.Context, season, date string) ([]domain.Pick, error)

	// ListDates returns every archived date of season with its pick count,
	// sorted ascending.
	ListDates(ctx context.Context, season string) ([]domain.DateCount, error)

	// ListSeasons returns every season with archived picks.
	ListSeasons(ctx context.Context) ([]string, error)

	// WriteResults replaces the archived results of season.
	WriteResults(ctx context.Context, season string, results *domain.ResultsPayload) error

	// ReadResults returns the archived results of season.
	ReadResults(ctx context.Context, season string) (*domain.ResultsPayload, error)
}

// SavedSession is the persisted filter state of one viewer.
type SavedSession struct {
	Viewer    string
	Season    string
	Sort      string
	Books     map[string]bool
	Markets   map[string]bool
	UpdatedAt time.Time
}

// SessionStore persists viewer sessions across restarts.
type SessionStore interface {
	// SaveSession inserts or replaces the session of s.Viewer.
	SaveSession(ctx context.Context, s *SavedSession) error

	// LoadSession returns the saved session of viewer, or ErrNotFound.
	LoadSession(ctx context.Context, viewer string) (*SavedSession, error)

	// DeleteSession removes the saved session of viewer.
	DeleteSession(ctx context.Context, viewer string) error
}
