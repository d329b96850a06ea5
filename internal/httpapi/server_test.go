package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"glicks/internal/dashboard"
	"glicks/internal/domain"
	"glicks/internal/source"
	"glicks/internal/util"
)

const archiveDay = `{"date":"2025-04-02","generated_at":"2025-04-02T14:00:00Z","picks":[
	{"player":"Skubal, Tarik","market":"Strikeouts","direction":"OVER","line":6.5,"stars":3,"best_book":"draftkings","best_price":-115,"home_team":"DET","away_team":"CWS","game_pk":1,"game_time":"1:05 PM ET"},
	{"player":"Judge, Aaron","market":"Hits","direction":"UNDER","line":1.5,"stars":2,"best_book":"fanduel","home_team":"NYY","away_team":"BOS","game_pk":2,"game_time":"7:05 PM ET"}
]}`

func newTestServer(t *testing.T, p source.Provider) *httptest.Server {
	t.Helper()
	log := util.NewLoggerTo(io.Discard, "info", "text")
	base := domain.NewViewContext("2026", "2026", time.UTC)
	s := NewDashboardServer(p, base, Options{
		Seasons:     []string{"2026", "2025"},
		SourceKind:  "static",
		CORSOrigins: []string{"*"},
	}, log)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func staticProvider() source.Provider {
	return source.NewStaticProviderFS(fstest.MapFS{
		"data/picks_today.json":           {Data: []byte(`{"date":"","picks":[]}`)},
		"data/2025/picks/2025-04-02.json": {Data: []byte(archiveDay)},
		"data/2025/picks_index.json":      {Data: []byte(`{"dates":[{"date":"2025-03-27","count":8},{"date":"2025-04-02","count":2}]}`)},
		"data/2025/results.json":          {Data: []byte(`{"generated_at":"2025-10-01T00:00:00Z","summary":{"wins":10,"losses":8,"pushes":1,"total_pnl":312.4,"roi":0.05}}`)},
	}, util.NewLoggerTo(io.Discard, "info", "text"))
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestHealthAndSeasons(t *testing.T) {
	srv := newTestServer(t, staticProvider())

	var health HealthResponse
	if code := getJSON(t, srv.URL+"/health", &health); code != http.StatusOK || health.Status != "ok" {
		t.Errorf("health = %d %+v", code, health)
	}

	var seasons SeasonsResponse
	getJSON(t, srv.URL+"/api/v1/seasons", &seasons)
	if seasons.Current != "2026" || len(seasons.Seasons) != 2 || !seasons.Seasons[1].Archive {
		t.Errorf("seasons = %+v", seasons)
	}
}

func TestPicksForDateWithFilters(t *testing.T) {
	srv := newTestServer(t, staticProvider())

	var resp PicksResponse
	code := getJSON(t, srv.URL+"/api/v1/seasons/2025/picks/2025-04-02?book_off=DraftKings&sort=player", &resp)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if resp.Books["draftkings"] || !resp.Books["fanduel"] {
		t.Errorf("books = %v", resp.Books)
	}
	if resp.Sort != dashboard.SortPlayer {
		t.Errorf("sort = %s", resp.Sort)
	}
	if resp.View.Total != 2 || resp.View.Shown != 1 {
		t.Errorf("total/shown = %d/%d, want 2/1", resp.View.Total, resp.View.Shown)
	}

	// Every book off leaves nothing shown.
	getJSON(t, srv.URL+"/api/v1/seasons/2025/picks/2025-04-02?book_off=draftkings,fanduel", &resp)
	if resp.View.Shown != 0 || resp.View.Empty == nil {
		t.Errorf("all books off: shown %d, empty %v", resp.View.Shown, resp.View.Empty)
	}
}

func TestPicksErrors(t *testing.T) {
	srv := newTestServer(t, staticProvider())

	var body map[string]string
	if code := getJSON(t, srv.URL+"/api/v1/seasons/2025/picks/2025-04-09", &body); code != http.StatusNotFound || body["error"] == "" {
		t.Errorf("missing date = %d %v", code, body)
	}
	if code := getJSON(t, srv.URL+"/api/v1/seasons/2025/picks/yesterday", nil); code != http.StatusBadRequest {
		t.Errorf("bad date = %d, want 400", code)
	}
	if code := getJSON(t, srv.URL+"/api/v1/seasons/1999/results", nil); code != http.StatusNotFound {
		t.Errorf("unknown season = %d, want 404", code)
	}
	if code := getJSON(t, srv.URL+"/api/v1/picks/today?season=1999", nil); code != http.StatusNotFound {
		t.Errorf("unknown season query = %d, want 404", code)
	}

	failing := newTestServer(t, failingProvider{})
	if code := getJSON(t, failing.URL+"/api/v1/picks/today", &body); code != http.StatusBadGateway {
		t.Errorf("upstream failure = %d, want 502", code)
	}
}

func TestTodayOffseason(t *testing.T) {
	srv := newTestServer(t, staticProvider())
	var resp PicksResponse
	getJSON(t, srv.URL+"/api/v1/picks/today", &resp)
	if resp.Season != "2026" || resp.View.Total != 0 {
		t.Errorf("today = %+v", resp)
	}
}

func TestCalendar(t *testing.T) {
	srv := newTestServer(t, staticProvider())

	var resp CalendarResponse
	getJSON(t, srv.URL+"/api/v1/seasons/2025/calendar", &resp)
	if !resp.Available || resp.SelectedDate != "2025-04-02" || resp.Month.Label != "April 2025" {
		t.Errorf("calendar = %+v", resp)
	}

	getJSON(t, srv.URL+"/api/v1/seasons/2025/calendar?year=2025&month=3", &resp)
	if resp.Month.Label != "March 2025" || resp.Month.CanPrev || !resp.Month.CanNext {
		t.Errorf("march = %s prev %v next %v", resp.Month.Label, resp.Month.CanPrev, resp.Month.CanNext)
	}

	// Shifting past the last indexed month is ignored.
	getJSON(t, srv.URL+"/api/v1/seasons/2025/calendar?shift=1", &resp)
	if resp.Month.Label != "April 2025" {
		t.Errorf("shift past end = %s", resp.Month.Label)
	}

	getJSON(t, srv.URL+"/api/v1/seasons/2025/calendar?selected=2025-03-27", &resp)
	if resp.SelectedDate != "2025-03-27" || resp.Month.Label != "March 2025" {
		t.Errorf("selected = %s in %s", resp.SelectedDate, resp.Month.Label)
	}

	getJSON(t, srv.URL+"/api/v1/seasons/2026/calendar", &resp)
	if resp.Available || len(resp.Month.Days) != 0 {
		t.Errorf("season without index = %+v", resp)
	}
}

func TestResults(t *testing.T) {
	srv := newTestServer(t, staticProvider())

	var resp ResultsResponse
	if code := getJSON(t, srv.URL+"/api/v1/seasons/2025/results", &resp); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if !resp.View.Available || resp.View.Record != "10-8-1" || resp.View.PnLClass != "positive" {
		t.Errorf("results = %+v", resp.View)
	}
}

func TestCORSHeaders(t *testing.T) {
	srv := newTestServer(t, staticProvider())
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/seasons", nil)
	req.Header.Set("Origin", "https://example.com")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

type failingProvider struct{}

func (failingProvider) TodayPicks(context.Context, domain.ViewContext) (*domain.PicksPayload, error) {
	return nil, errors.New("connection reset")
}

func (failingProvider) PicksForDate(context.Context, domain.ViewContext, string) (*domain.PicksPayload, error) {
	return nil, errors.New("connection reset")
}

func (failingProvider) DateIndex(context.Context, domain.ViewContext) (*domain.DateIndexPayload, error) {
	return nil, errors.New("connection reset")
}

func (failingProvider) Results(context.Context, domain.ViewContext) (*domain.ResultsPayload, error) {
	return nil, errors.New("connection reset")
}
