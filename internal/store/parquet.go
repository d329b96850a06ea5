package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/parquet-go/parquet-go"

	"glicks/internal/domain"
)

// Compile-time interface check.
var _ PickArchive = (*ParquetArchive)(nil)

// ParquetArchive implements PickArchive using one Parquet file per season
// and date, plus one JSON results document per season.
type ParquetArchive struct {
	DataDir string
}

// NewParquetArchive creates a ParquetArchive rooted at the given data directory.
func NewParquetArchive(dataDir string) *ParquetArchive {
	return &ParquetArchive{DataDir: dataDir}
}

// ---------------------------------------------------------------------------
// Parquet record types (on-disk schema)
// ---------------------------------------------------------------------------

// PickRecord is the Parquet schema for an archived pick.
type PickRecord struct {
	Date       string   `parquet:"date"`
	Player     string   `parquet:"player"`
	PlayerID   string   `parquet:"player_id"`
	PlayerTeam string   `parquet:"player_team"`
	Team       string   `parquet:"team"`
	Opponent   string   `parquet:"opponent"`
	HomeTeam   string   `parquet:"home_team"`
	AwayTeam   string   `parquet:"away_team"`
	Market     string   `parquet:"market"`
	Category   string   `parquet:"category"`
	Direction  string   `parquet:"direction"`
	Line       float64  `parquet:"line"`
	Stars      int32    `parquet:"stars"`
	BestBook   string   `parquet:"best_book"`
	BestPrice  *int32   `parquet:"best_price,optional"`
	GamePK     string   `parquet:"game_pk"`
	GameTime   string   `parquet:"game_time"`
	Result     string   `parquet:"result"`
	Actual     *float64 `parquet:"actual,optional"`
	PnL        *float64 `parquet:"pnl,optional"`
}

func toRecord(date string, p domain.Pick) PickRecord {
	r := PickRecord{
		Date:       date,
		Player:     p.Player,
		PlayerID:   string(p.PlayerID),
		PlayerTeam: p.PlayerTeam,
		Team:       p.Team,
		Opponent:   p.Opponent,
		HomeTeam:   p.HomeTeam,
		AwayTeam:   p.AwayTeam,
		Market:     p.Market,
		Category:   p.Category,
		Direction:  string(p.Direction),
		Line:       p.Line,
		Stars:      int32(p.Stars),
		BestBook:   p.BestBook,
		GamePK:     string(p.GamePK),
		GameTime:   p.GameTime,
		Result:     string(p.Result),
		Actual:     p.Actual,
		PnL:        p.PnL,
	}
	if p.BestPrice != nil {
		v := int32(*p.BestPrice)
		r.BestPrice = &v
	}
	return r
}

func fromRecord(r PickRecord) domain.Pick {
	p := domain.Pick{
		Date:       r.Date,
		Player:     r.Player,
		PlayerID:   domain.ID(r.PlayerID),
		PlayerTeam: r.PlayerTeam,
		Team:       r.Team,
		Opponent:   r.Opponent,
		HomeTeam:   r.HomeTeam,
		AwayTeam:   r.AwayTeam,
		Market:     r.Market,
		Category:   r.Category,
		Direction:  domain.Direction(r.Direction),
		Line:       r.Line,
		Stars:      int(r.Stars),
		BestBook:   r.BestBook,
		GamePK:     domain.ID(r.GamePK),
		GameTime:   r.GameTime,
		Result:     domain.Result(r.Result),
		Actual:     r.Actual,
		PnL:        r.PnL,
	}
	if r.BestPrice != nil {
		v := int(*r.BestPrice)
		p.BestPrice = &v
	}
	return p
}

// ---------------------------------------------------------------------------
// PickArchive implementation
// ---------------------------------------------------------------------------

// WritePicks merges picks into <DataDir>/picks/<season>/<date>.parquet.
// A pick replaces an archived one with the same player, market, direction
// and line.
func (s *ParquetArchive) WritePicks(_ context.Context, season, date string, picks []domain.Pick) error {
	if len(picks) == 0 {
		return nil
	}
	records := make([]PickRecord, 0, len(picks))
	for _, p := range picks {
		records = append(records, toRecord(date, p))
	}

	path := s.picksPath(season, date)
	existing, _ := readParquetFile[PickRecord](path)
	merged := mergePickRecords(existing, records)

	if err := writeParquetFile(path, merged); err != nil {
		return fmt.Errorf("writing picks for %s/%s: %w", season, date, err)
	}
	return nil
}

// ReadPicks reads the archived picks for season and date.
func (s *ParquetArchive) ReadPicks(_ context.Context, season, date string) ([]domain.Pick, error) {
	path := s.picksPath(season, date)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("picks %s/%s: %w", season, date, ErrNotFound)
	}
	records, err := readParquetFile[PickRecord](path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	picks := make([]domain.Pick, 0, len(records))
	for _, r := range records {
		picks = append(picks, fromRecord(r))
	}
	return picks, nil
}

// ListDates lists archived dates of season with their row counts.
func (s *ParquetArchive) ListDates(_ context.Context, season string) ([]domain.DateCount, error) {
	dir := filepath.Join(s.DataDir, "picks", season)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("season %s: %w", season, ErrNotFound)
		}
		return nil, err
	}

	var dates []domain.DateCount
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".parquet") {
			continue
		}
		date := strings.TrimSuffix(e.Name(), ".parquet")
		n, err := countParquetRows(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("counting %s/%s: %w", season, date, err)
		}
		dates = append(dates, domain.DateCount{Date: date, Count: domain.Count(n)})
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Date < dates[j].Date })
	return dates, nil
}

// ListSeasons lists the season directories under <DataDir>/picks.
func (s *ParquetArchive) ListSeasons(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.DataDir, "picks"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var seasons []string
	for _, e := range entries {
		if e.IsDir() {
			seasons = append(seasons, e.Name())
		}
	}
	sort.Strings(seasons)
	return seasons, nil
}

// WriteResults stores the results payload at <DataDir>/results/<season>.json.
func (s *ParquetArchive) WriteResults(_ context.Context, season string, results *domain.ResultsPayload) error {
	if results == nil {
		return nil
	}
	path := s.resultsPath(season)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshalling results for %s: %w", season, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// ReadResults loads the archived results payload of season.
func (s *ParquetArchive) ReadResults(_ context.Context, season string) (*domain.ResultsPayload, error) {
	data, err := os.ReadFile(s.resultsPath(season))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("results %s: %w", season, ErrNotFound)
		}
		return nil, err
	}
	var out domain.ResultsPayload
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding results for %s: %w", season, err)
	}
	return &out, nil
}

// ---------------------------------------------------------------------------
// Path helpers
// ---------------------------------------------------------------------------

// picksPath returns the filesystem path for a day's pick file.
// Layout: <dataDir>/picks/<season>/<YYYY-MM-DD>.parquet
func (s *ParquetArchive) picksPath(season, date string) string {
	return filepath.Join(s.DataDir, "picks", season, date+".parquet")
}

// resultsPath returns the filesystem path for a season's results.
// Layout: <dataDir>/results/<season>.json
func (s *ParquetArchive) resultsPath(season string) string {
	return filepath.Join(s.DataDir, "results", season+".json")
}

// ---------------------------------------------------------------------------
// Parquet file helpers
// ---------------------------------------------------------------------------

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func countParquetRows(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return 0, err
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return 0, err
	}
	return pf.NumRows(), nil
}

// mergePickRecords deduplicates pick records by (player, market, direction,
// line), preferring new records over existing ones. Results keep the
// existing order with new picks appended.
func mergePickRecords(existing, incoming []PickRecord) []PickRecord {
	type key struct {
		player, market, direction string
		line                      float64
	}
	keyOf := func(r PickRecord) key { return key{r.Player, r.Market, r.Direction, r.Line} }

	index := make(map[key]int, len(existing)+len(incoming))
	merged := make([]PickRecord, 0, len(existing)+len(incoming))
	for _, r := range existing {
		if i, ok := index[keyOf(r)]; ok {
			merged[i] = r
			continue
		}
		index[keyOf(r)] = len(merged)
		merged = append(merged, r)
	}
	for _, r := range incoming {
		if i, ok := index[keyOf(r)]; ok {
			merged[i] = r
			continue
		}
		index[keyOf(r)] = len(merged)
		merged = append(merged, r)
	}
	return merged
}
