package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"glicks/internal/dashboard"
	"glicks/internal/domain"
	"glicks/internal/source"
)

// DashboardServer serves the dashboard HTTP API. Every request derives its
// view from a fresh Session, so the server holds no per-viewer state.
type DashboardServer struct {
	provider    source.Provider
	base        domain.ViewContext
	seasons     []string
	sourceKind  string
	group       dashboard.GroupOptions
	corsOrigins []string
	log         *slog.Logger
}

// Options configures a DashboardServer.
type Options struct {
	// Seasons lists the selectable seasons, live season first.
	Seasons     []string
	SourceKind  string
	Group       dashboard.GroupOptions
	CORSOrigins []string
}

// NewDashboardServer creates a new dashboard HTTP server. base carries the
// live season and the display time zone.
func NewDashboardServer(provider source.Provider, base domain.ViewContext, opts Options, log *slog.Logger) *DashboardServer {
	seasons := opts.Seasons
	if len(seasons) == 0 {
		seasons = []string{base.DataBaseline}
	}
	return &DashboardServer{
		provider:    provider,
		base:        base,
		seasons:     seasons,
		sourceKind:  opts.SourceKind,
		group:       opts.Group,
		corsOrigins: opts.CORSOrigins,
		log:         log,
	}
}

// RegisterRoutes registers all API routes on r.
func (s *DashboardServer) RegisterRoutes(r chi.Router) {
	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/seasons", s.handleSeasons)
		r.Get("/picks/today", s.handleToday)
		r.Route("/seasons/{season}", func(r chi.Router) {
			r.Use(s.requireSeason)
			r.Get("/picks/today", s.handleToday)
			r.Get("/picks/{date}", s.handlePicksForDate)
			r.Get("/calendar", s.handleCalendar)
			r.Get("/results", s.handleResults)
		})
	})
}

// Handler returns the router with request IDs, logging, recovery, a request
// timeout and CORS applied.
func (s *DashboardServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	s.RegisterRoutes(r)
	return r
}

func (s *DashboardServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", chimiddleware.GetReqID(r.Context()),
		)
	})
}

// requireSeason rejects seasons outside the configured list.
func (s *DashboardServer) requireSeason(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		season := chi.URLParam(r, "season")
		if !s.knownSeason(season) {
			writeError(w, http.StatusNotFound, "unknown season "+season)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *DashboardServer) knownSeason(season string) bool {
	for _, known := range s.seasons {
		if season == known {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// writeSourceError maps a provider error to a status code.
func (s *DashboardServer) writeSourceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, source.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, source.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Warn("source request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

// viewContext resolves the viewed season from the path, then the season
// query param, then the live season.
func (s *DashboardServer) viewContext(r *http.Request) domain.ViewContext {
	season := chi.URLParam(r, "season")
	if season == "" {
		season = r.URL.Query().Get("season")
	}
	if season == "" {
		return s.base
	}
	return s.base.WithSeason(season)
}

// queryList collects a repeatable, comma-separated query parameter.
func queryList(r *http.Request, name string) []string {
	var out []string
	for _, v := range r.URL.Query()[name] {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// newSession returns a session carrying the filter state of the request:
// book_off and market_off name the disabled keys, sort the order.
func (s *DashboardServer) newSession(r *http.Request, vc domain.ViewContext) *dashboard.Session {
	books := dashboard.Selection{}
	for _, b := range queryList(r, "book_off") {
		books[dashboard.NormalizeKey(b)] = false
	}
	markets := dashboard.Selection{}
	for _, m := range queryList(r, "market_off") {
		markets[m] = false
	}
	sess := dashboard.NewSession(vc, s.group)
	sess.RestoreSelections(books, markets, dashboard.ParseSortKey(r.URL.Query().Get("sort")))
	return sess
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

func (s *DashboardServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, HealthResponse{Status: "ok", Source: s.sourceKind})
}

func (s *DashboardServer) handleSeasons(w http.ResponseWriter, r *http.Request) {
	resp := SeasonsResponse{Current: s.base.DataBaseline, Seasons: make([]SeasonJSON, 0, len(s.seasons))}
	for _, season := range s.seasons {
		resp.Seasons = append(resp.Seasons, SeasonJSON{Season: season, Archive: season != s.base.DataBaseline})
	}
	writeJSON(w, resp)
}

func (s *DashboardServer) handleToday(w http.ResponseWriter, r *http.Request) {
	vc := s.viewContext(r)
	if !s.knownSeason(vc.Season) {
		writeError(w, http.StatusNotFound, "unknown season "+vc.Season)
		return
	}
	payload, err := s.provider.TodayPicks(r.Context(), vc)
	if err != nil {
		s.writeSourceError(w, r, err)
		return
	}
	s.writePicks(w, r, vc, "", payload)
}

func (s *DashboardServer) handlePicksForDate(w http.ResponseWriter, r *http.Request) {
	vc := s.viewContext(r)
	date := chi.URLParam(r, "date")
	payload, err := s.provider.PicksForDate(r.Context(), vc, date)
	if err != nil {
		s.writeSourceError(w, r, err)
		return
	}
	s.writePicks(w, r, vc, date, payload)
}

func (s *DashboardServer) writePicks(w http.ResponseWriter, r *http.Request, vc domain.ViewContext, date string, payload *domain.PicksPayload) {
	sess := s.newSession(r, vc)
	sess.ApplyPicks(sess.BeginLoad(dashboard.LoadPicks), date, payload, nil)
	books, markets, sortKey := sess.Selections()
	writeJSON(w, PicksResponse{
		Season:  vc.Season,
		Date:    payload.Date,
		Sort:    sortKey,
		Books:   books,
		Markets: markets,
		View:    sess.View(),
	})
}

// handleCalendar positions the calendar cursor from year and month (1-12),
// then applies shift months and the selected date. Out-of-range moves are
// ignored.
func (s *DashboardServer) handleCalendar(w http.ResponseWriter, r *http.Request) {
	vc := s.viewContext(r)
	payload, err := s.provider.DateIndex(r.Context(), vc)
	if err != nil && !errors.Is(err, source.ErrNotFound) {
		s.writeSourceError(w, r, err)
		return
	}
	sess := s.newSession(r, vc)
	sess.ApplyIndex(sess.BeginLoad(dashboard.LoadIndex), payload, nil)

	resp := CalendarResponse{Season: vc.Season}
	if ix := sess.Index(); ix != nil {
		q := r.URL.Query()
		year, yerr := strconv.Atoi(q.Get("year"))
		month, merr := strconv.Atoi(q.Get("month"))
		if yerr == nil && merr == nil && month >= 1 && month <= 12 {
			sess.ShiftMonth(dashboard.MonthIndex(year, month-1) - ix.ViewMonthIndex())
		}
		if shift, err := strconv.Atoi(q.Get("shift")); err == nil && shift != 0 {
			sess.ShiftMonth(shift)
		}
		if sel := q.Get("selected"); sel != "" {
			sess.SelectDate(sel)
		}
		resp.Available = true
		resp.SelectedDate = ix.SelectedDate
		resp.LatestDate = ix.LatestDate()
		resp.MaxCount = ix.MaxCount
	}
	resp.Month = sess.Calendar()
	writeJSON(w, resp)
}

func (s *DashboardServer) handleResults(w http.ResponseWriter, r *http.Request) {
	vc := s.viewContext(r)
	payload, err := s.provider.Results(r.Context(), vc)
	if err != nil {
		s.writeSourceError(w, r, err)
		return
	}
	writeJSON(w, ResultsResponse{Season: vc.Season, View: dashboard.DeriveResultsViewModel(payload, vc)})
}
