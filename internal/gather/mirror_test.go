package gather

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"glicks/internal/domain"
	"glicks/internal/store"
	"glicks/internal/util"
)

type fakeSource struct {
	mu      sync.Mutex
	fetched []string
	days    map[string][]domain.Pick
	fail    string
}

func (f *fakeSource) TodayPicks(context.Context, domain.ViewContext) (*domain.PicksPayload, error) {
	return nil, errors.New("unused")
}

func (f *fakeSource) PicksForDate(_ context.Context, _ domain.ViewContext, date string) (*domain.PicksPayload, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, date)
	f.mu.Unlock()
	if date == f.fail {
		return nil, errors.New("503")
	}
	picks, ok := f.days[date]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.PicksPayload{Date: date, Picks: picks}, nil
}

func (f *fakeSource) DateIndex(_ context.Context, vc domain.ViewContext) (*domain.DateIndexPayload, error) {
	if vc.Season != "2025" {
		return nil, domain.ErrNotFound
	}
	return &domain.DateIndexPayload{Dates: []domain.DateCount{
		{Date: "2025-04-01", Count: 1},
		{Date: "2025-04-02", Count: 2},
		{Date: "2025-04-03", Count: 0},
		{Date: "2025-04-04", Count: 1},
	}}, nil
}

func (f *fakeSource) Results(_ context.Context, vc domain.ViewContext) (*domain.ResultsPayload, error) {
	return &domain.ResultsPayload{Summary: &domain.Summary{Wins: 3}}, nil
}

func pick(player string, result domain.Result) domain.Pick {
	return domain.Pick{Player: player, Market: "Hits", Direction: domain.Over, Line: 0.5, Stars: 1, Result: result}
}

func TestSeasonMirror(t *testing.T) {
	src := &fakeSource{days: map[string][]domain.Pick{
		"2025-04-01": {pick("A", domain.Win)},
		"2025-04-02": {pick("B", domain.Loss), pick("C", "")},
	}}
	dst := store.NewParquetArchive(t.TempDir())
	base := domain.NewViewContext("2026", "2026", time.UTC)
	log := util.NewLoggerTo(io.Discard, "info", "text")
	ctx := context.Background()

	m := NewSeasonMirror(src, dst, base, []string{"2025", "2024"}, 2, false, log)
	if m.Name() != "season-mirror" {
		t.Errorf("Name = %s", m.Name())
	}
	if err := m.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	st := m.Stats["2025"]
	if st.Dates != 2 || st.Picks != 3 || !st.Results {
		t.Errorf("stats = %+v", st)
	}
	if len(m.Written["2025"]) != 2 || m.Written["2025"][0] != "2025-04-01" {
		t.Errorf("written = %v", m.Written["2025"])
	}
	if len(src.fetched) != 3 {
		t.Errorf("fetched %v, want 3 dates (zero-count date skipped)", src.fetched)
	}

	dates, err := dst.ListDates(ctx, "2025")
	if err != nil || len(dates) != 2 {
		t.Errorf("archived dates = %+v, %v", dates, err)
	}
	if res, err := dst.ReadResults(ctx, "2025"); err != nil || res.Summary.Wins != 3 {
		t.Errorf("archived results = %+v, %v", res, err)
	}

	// A second pass skips the fully graded date only.
	src.fetched = nil
	if err := m.Run(ctx); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if m.Stats["2025"].Skipped != 1 || len(src.fetched) != 2 {
		t.Errorf("second pass skipped %d, fetched %v", m.Stats["2025"].Skipped, src.fetched)
	}
}

func TestSeasonMirrorFailure(t *testing.T) {
	src := &fakeSource{days: map[string][]domain.Pick{}, fail: "2025-04-02"}
	dst := store.NewParquetArchive(t.TempDir())
	m := NewSeasonMirror(src, dst, domain.NewViewContext("2026", "2026", time.UTC), []string{"2025"}, 1, true,
		util.NewLoggerTo(io.Discard, "info", "text"))
	if err := m.Run(context.Background()); err == nil {
		t.Error("Run should fail when a date fetch fails")
	}
}
