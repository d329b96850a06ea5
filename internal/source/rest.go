package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"glicks/internal/config"
	"glicks/internal/domain"
	"glicks/internal/util"
)

// Compile-time interface check.
var _ Provider = (*RESTProvider)(nil)

// recentLimit is one more than the recent table shows, so the view can
// tell a truncated list from a complete one.
const recentLimit = 51

// APIError represents a non-2xx response from the REST endpoint.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("rest api error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable returns true if the error should trigger a retry.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// RESTProvider reads picks and results from a PostgREST endpoint
// (/rest/v1/...) authenticated with an anonymous key.
type RESTProvider struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	limiter      *util.RateLimiter
	maxRetries   int
	retryBackoff time.Duration
	log          *slog.Logger
}

// NewRESTProvider creates a provider from the REST source configuration.
func NewRESTProvider(cfg config.RESTSource, log *slog.Logger) *RESTProvider {
	return &RESTProvider{
		baseURL:      strings.TrimRight(cfg.URL, "/"),
		apiKey:       cfg.AnonKey,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		limiter:      util.NewRateLimiter(cfg.RateLimitPerMin, cfg.Burst),
		maxRetries:   cfg.MaxRetries,
		retryBackoff: 250 * time.Millisecond,
		log:          log,
	}
}

// doRequest performs one HTTP request against /rest/v1/<path>.
func (c *RESTProvider) doRequest(ctx context.Context, method, path string, query url.Values, body []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	fullURL := c.baseURL + "/rest/v1/" + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		c.log.Debug("rest request failed", "path", path, "status", resp.StatusCode, "request_id", reqID)
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       data,
		}
	}
	return data, nil
}

// doWithRetry retries transport failures and retryable status codes with
// exponential backoff. A 404 becomes ErrNotFound.
func (c *RESTProvider) doWithRetry(ctx context.Context, method, path string, query url.Values, body []byte) ([]byte, error) {
	var out []byte
	err := util.Retry(ctx, c.maxRetries+1, c.retryBackoff, func() error {
		data, err := c.doRequest(ctx, method, path, query, body)
		if err == nil {
			out = data
			return nil
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.IsRetryable() {
			if apiErr.StatusCode == http.StatusNotFound {
				return util.Permanent(fmt.Errorf("%s: %w", path, ErrNotFound))
			}
			return util.Permanent(err)
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return util.Permanent(err)
		}
		return err
	})
	return out, err
}

// get performs a GET request with retries and decodes the JSON response.
func (c *RESTProvider) get(ctx context.Context, path string, query url.Values, result any) error {
	body, err := c.doWithRetry(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal %s: %w", path, err)
	}
	return nil
}

// rpc calls a Postgres function exposed under /rest/v1/rpc/<name>.
func (c *RESTProvider) rpc(ctx context.Context, name string, args any, result any) error {
	payload, err := json.Marshal(args)
	if err != nil {
		return err
	}
	body, err := c.doWithRetry(ctx, http.MethodPost, "rpc/"+name, nil, payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal rpc %s: %w", name, err)
	}
	return nil
}

func seasonFilter(vc domain.ViewContext) (int, error) {
	n := vc.SeasonInt()
	if n == 0 {
		return 0, fmt.Errorf("season %q: %w", vc.Season, ErrNotFound)
	}
	return n, nil
}

func (c *RESTProvider) DateIndex(ctx context.Context, vc domain.ViewContext) (*domain.DateIndexPayload, error) {
	season, err := seasonFilter(vc)
	if err != nil {
		return nil, err
	}
	var dates []domain.DateCount
	if err := c.rpc(ctx, "picks_index", map[string]int{"p_season": season}, &dates); err != nil {
		return nil, fmt.Errorf("picks index %d: %w", season, err)
	}
	return &domain.DateIndexPayload{Dates: dates}, nil
}

func (c *RESTProvider) PicksForDate(ctx context.Context, vc domain.ViewContext, date string) (*domain.PicksPayload, error) {
	if err := checkDate(date); err != nil {
		return nil, err
	}
	season, err := seasonFilter(vc)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("select", "*")
	q.Set("season", "eq."+strconv.Itoa(season))
	q.Set("date", "eq."+date)
	q.Set("order", "stars.desc")

	var picks []domain.Pick
	if err := c.get(ctx, "picks", q, &picks); err != nil {
		return nil, fmt.Errorf("picks %d/%s: %w", season, date, err)
	}
	if len(picks) == 0 {
		return nil, fmt.Errorf("picks %d/%s: %w", season, date, ErrNotFound)
	}
	return sanitize(c.log, &domain.PicksPayload{Date: date, Picks: picks}, vc.Season, date), nil
}

// TodayPicks returns the picks of the latest indexed date.
func (c *RESTProvider) TodayPicks(ctx context.Context, vc domain.ViewContext) (*domain.PicksPayload, error) {
	return latestPicks(ctx, c, vc)
}

// latestPicks resolves today's feed as the last date of the index. A season
// with no dates yields an empty payload.
func latestPicks(ctx context.Context, p Provider, vc domain.ViewContext) (*domain.PicksPayload, error) {
	idx, err := p.DateIndex(ctx, vc)
	if err != nil {
		return nil, err
	}
	latest := ""
	for _, d := range idx.Dates {
		if d.Count > 0 && d.Date > latest {
			latest = d.Date
		}
	}
	if latest == "" {
		return &domain.PicksPayload{}, nil
	}
	return p.PicksForDate(ctx, vc, latest)
}

type summaryRow struct {
	Summary   *domain.Summary `json:"summary"`
	UpdatedAt string          `json:"updated_at"`
}

// Results fetches the season's results tables concurrently. The summary is
// required; any other failed table is reported in Warnings.
func (c *RESTProvider) Results(ctx context.Context, vc domain.ViewContext) (*domain.ResultsPayload, error) {
	season, err := seasonFilter(vc)
	if err != nil {
		return nil, err
	}
	eq := "eq." + strconv.Itoa(season)
	bySeason := func(extra ...string) url.Values {
		q := url.Values{"select": {"*"}, "season": {eq}}
		for i := 0; i+1 < len(extra); i += 2 {
			q.Set(extra[i], extra[i+1])
		}
		return q
	}

	var (
		out        domain.ResultsPayload
		summaries  []summaryRow
		summaryErr error
	)
	queries := []query{
		{"season_summaries", func(ctx context.Context) error {
			summaryErr = c.get(ctx, "season_summaries", bySeason("select", "summary,updated_at", "limit", "1"), &summaries)
			return summaryErr
		}},
		{"market_stats", func(ctx context.Context) error {
			return c.get(ctx, "market_stats", bySeason(), &out.ByMarket)
		}},
		{"direction_stats", func(ctx context.Context) error {
			return c.get(ctx, "direction_stats", bySeason(), &out.DirectionStats)
		}},
		{"bankroll_curve", func(ctx context.Context) error {
			return c.get(ctx, "bankroll_curve", bySeason("order", "date"), &out.BankrollCurve)
		}},
		{"picks", func(ctx context.Context) error {
			q := bySeason(
				"select", "date,player,market,direction,line,actual,result,pnl,stars",
				"result", "not.is.null",
				"order", "date.desc",
				"limit", strconv.Itoa(recentLimit),
			)
			return c.get(ctx, "picks", q, &out.Recent)
		}},
	}
	failed := gatherParts(ctx, c.log, vc.Season, queries)
	if summaryErr != nil {
		return nil, fmt.Errorf("results %d: %w", season, summaryErr)
	}
	if len(summaries) == 0 || summaries[0].Summary == nil {
		return nil, fmt.Errorf("results %d: %w", season, ErrNotFound)
	}
	out.Summary = summaries[0].Summary
	out.GeneratedAt = summaries[0].UpdatedAt
	for _, name := range failed {
		if name != "season_summaries" {
			out.Warnings = append(out.Warnings, name)
		}
	}
	out.DeriveCumulative()
	return &out, nil
}
