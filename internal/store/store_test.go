package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"glicks/internal/domain"
)

func price(v int) *int          { return &v }
func value(v float64) *float64 { return &v }

func TestParquetArchivePath(t *testing.T) {
	pa := NewParquetArchive("/data")

	pp := pa.picksPath("2025", "2025-04-02")
	want := filepath.Join("/data", "picks", "2025", "2025-04-02.parquet")
	if pp != want {
		t.Errorf("picksPath mismatch:\n  got  %s\n  want %s", pp, want)
	}

	rp := pa.resultsPath("2025")
	if !strings.HasSuffix(rp, filepath.Join("results", "2025.json")) {
		t.Errorf("resultsPath = %s", rp)
	}
}

func TestParquetArchiveWriteReadPicks(t *testing.T) {
	dir := t.TempDir()
	pa := NewParquetArchive(dir)
	ctx := context.Background()

	picks := []domain.Pick{
		{
			Player: "Skubal, Tarik", PlayerID: "669373", Market: "Strikeouts",
			Direction: domain.Over, Line: 6.5, Stars: 3, BestBook: "draftkings",
			BestPrice: price(-115), GamePK: "778899", GameTime: "1:05 PM ET",
		},
		{
			Player: "Judge, Aaron", Market: "Hits", Category: "batter",
			Direction: domain.Under, Line: 1.5, Stars: 2,
			Result: domain.Loss, Actual: value(2), PnL: value(-100),
		},
	}
	if err := pa.WritePicks(ctx, "2025", "2025-04-02", picks); err != nil {
		t.Fatalf("WritePicks: %v", err)
	}

	got, err := pa.ReadPicks(ctx, "2025", "2025-04-02")
	if err != nil {
		t.Fatalf("ReadPicks: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ReadPicks returned %d picks, want 2", len(got))
	}
	if got[0].Date != "2025-04-02" {
		t.Errorf("Date = %q, want 2025-04-02", got[0].Date)
	}
	if got[0].BestPrice == nil || *got[0].BestPrice != -115 {
		t.Errorf("BestPrice = %v, want -115", got[0].BestPrice)
	}
	if got[0].Actual != nil || got[0].PnL != nil {
		t.Errorf("ungraded pick should have nil actual/pnl, got %v/%v", got[0].Actual, got[0].PnL)
	}
	if got[1].BestPrice != nil {
		t.Errorf("BestPrice = %v, want nil", *got[1].BestPrice)
	}
	if got[1].PnL == nil || *got[1].PnL != -100 || got[1].Result != domain.Loss {
		t.Errorf("graded pick = %+v", got[1])
	}
}

func TestParquetArchiveMergePicks(t *testing.T) {
	dir := t.TempDir()
	pa := NewParquetArchive(dir)
	ctx := context.Background()

	first := []domain.Pick{{Player: "Cole, Gerrit", Market: "Strikeouts", Direction: domain.Over, Line: 7.5, Stars: 2}}
	if err := pa.WritePicks(ctx, "2025", "2025-05-01", first); err != nil {
		t.Fatalf("WritePicks (first): %v", err)
	}

	// Same pick graded, plus a new one: should merge, not duplicate.
	second := []domain.Pick{
		{Player: "Cole, Gerrit", Market: "Strikeouts", Direction: domain.Over, Line: 7.5, Stars: 2, Result: domain.Win, PnL: value(91)},
		{Player: "Soto, Juan", Market: "Hits", Direction: domain.Over, Line: 0.5, Stars: 1},
	}
	if err := pa.WritePicks(ctx, "2025", "2025-05-01", second); err != nil {
		t.Fatalf("WritePicks (second): %v", err)
	}

	got, err := pa.ReadPicks(ctx, "2025", "2025-05-01")
	if err != nil {
		t.Fatalf("ReadPicks: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ReadPicks returned %d picks after merge, want 2", len(got))
	}
	if got[0].Result != domain.Win {
		t.Errorf("merged pick result = %q, want win", got[0].Result)
	}
}

func TestParquetArchiveListDates(t *testing.T) {
	dir := t.TempDir()
	pa := NewParquetArchive(dir)
	ctx := context.Background()

	write := func(date string, n int) {
		picks := make([]domain.Pick, n)
		for i := range picks {
			picks[i] = domain.Pick{Player: string(rune('A' + i)), Market: "Hits", Direction: domain.Over, Line: 0.5, Stars: 1}
		}
		if err := pa.WritePicks(ctx, "2025", date, picks); err != nil {
			t.Fatalf("WritePicks(%s): %v", date, err)
		}
	}
	write("2025-04-03", 3)
	write("2025-03-27", 2)

	// Stray files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "picks", "2025", "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	dates, err := pa.ListDates(ctx, "2025")
	if err != nil {
		t.Fatalf("ListDates: %v", err)
	}
	if len(dates) != 2 {
		t.Fatalf("ListDates returned %d dates, want 2", len(dates))
	}
	if dates[0].Date != "2025-03-27" || dates[0].Count != 2 || dates[1].Count != 3 {
		t.Errorf("dates = %+v", dates)
	}

	seasons, err := pa.ListSeasons(ctx)
	if err != nil || len(seasons) != 1 || seasons[0] != "2025" {
		t.Errorf("ListSeasons = %v, %v", seasons, err)
	}

	if _, err := pa.ListDates(ctx, "1999"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ListDates(missing) err = %v, want ErrNotFound", err)
	}
	if _, err := pa.ReadPicks(ctx, "2025", "2025-01-01"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ReadPicks(missing) err = %v, want ErrNotFound", err)
	}
}

func TestParquetArchiveResults(t *testing.T) {
	dir := t.TempDir()
	pa := NewParquetArchive(dir)
	ctx := context.Background()

	if _, err := pa.ReadResults(ctx, "2024"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ReadResults(missing) err = %v, want ErrNotFound", err)
	}

	in := &domain.ResultsPayload{
		GeneratedAt: "2024-10-01T00:00:00Z",
		Summary:     &domain.Summary{Wins: 10, Losses: 8, Pushes: 1, TotalPnL: 312.4},
		ByMarket:    []domain.MarketStat{{Market: "Hits", Bets: 5}},
	}
	if err := pa.WriteResults(ctx, "2024", in); err != nil {
		t.Fatalf("WriteResults: %v", err)
	}
	got, err := pa.ReadResults(ctx, "2024")
	if err != nil {
		t.Fatalf("ReadResults: %v", err)
	}
	if got.Summary == nil || got.Summary.Wins != 10 || got.Summary.TotalPnL != 312.4 || len(got.ByMarket) != 1 {
		t.Errorf("ReadResults = %+v", got)
	}
}

func TestSQLiteStoreOpen(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer s.Close()

	// Reopening runs the migrations again without error.
	s2, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	s2.Close()
}

func TestSQLiteStoreSessions(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	if _, err := s.LoadSession(ctx, "tui"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadSession(missing) err = %v, want ErrNotFound", err)
	}

	in := &SavedSession{
		Viewer:  "tui",
		Season:  "2025",
		Sort:    "player",
		Books:   map[string]bool{"draftkings": false, "fanduel": true},
		Markets: map[string]bool{"Hits": false},
	}
	if err := s.SaveSession(ctx, in); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	got, err := s.LoadSession(ctx, "tui")
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if got.Season != "2025" || got.Sort != "player" {
		t.Errorf("session = %+v", got)
	}
	if len(got.Books) != 2 || got.Books["draftkings"] || !got.Books["fanduel"] {
		t.Errorf("books = %v", got.Books)
	}
	if v, ok := got.Markets["Hits"]; !ok || v {
		t.Errorf("markets = %v", got.Markets)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set")
	}

	// Saving again replaces the selections.
	in.Books = map[string]bool{"betmgm": true}
	in.Markets = nil
	if err := s.SaveSession(ctx, in); err != nil {
		t.Fatalf("SaveSession (second): %v", err)
	}
	got, err = s.LoadSession(ctx, "tui")
	if err != nil {
		t.Fatalf("LoadSession (second): %v", err)
	}
	if len(got.Books) != 1 || !got.Books["betmgm"] || len(got.Markets) != 0 {
		t.Errorf("after replace: books %v markets %v", got.Books, got.Markets)
	}

	if err := s.DeleteSession(ctx, "tui"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if _, err := s.LoadSession(ctx, "tui"); !errors.Is(err, ErrNotFound) {
		t.Errorf("after delete err = %v, want ErrNotFound", err)
	}

	if err := s.SaveSession(ctx, &SavedSession{}); err == nil {
		t.Error("SaveSession without viewer should fail")
	}
}
