// Package glicks is a Go client for the glicks-server HTTP API.
package glicks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"glicks/internal/httpapi"
)

// Response types served by glicks-server.
type (
	HealthResponse   = httpapi.HealthResponse
	SeasonsResponse  = httpapi.SeasonsResponse
	PicksResponse    = httpapi.PicksResponse
	CalendarResponse = httpapi.CalendarResponse
	ResultsResponse  = httpapi.ResultsResponse
)

// Error is a non-2xx response from the server.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("glicks: HTTP %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	e, ok := err.(*Error)
	return ok && e.StatusCode == http.StatusNotFound
}

// PicksQuery carries the filter state of a picks request. BooksOff and
// MarketsOff name the disabled sportsbooks and markets.
type PicksQuery struct {
	BooksOff   []string
	MarketsOff []string
	Sort       string
}

func (q PicksQuery) values() url.Values {
	v := url.Values{}
	if len(q.BooksOff) > 0 {
		v.Set("book_off", strings.Join(q.BooksOff, ","))
	}
	if len(q.MarketsOff) > 0 {
		v.Set("market_off", strings.Join(q.MarketsOff, ","))
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	return v
}

// CalendarQuery positions the calendar cursor. Month is 1-12 and is only
// sent together with Year; Shift moves the cursor afterwards and Selected
// highlights a date.
type CalendarQuery struct {
	Year     int
	Month    int
	Shift    int
	Selected string
}

func (q CalendarQuery) values() url.Values {
	v := url.Values{}
	if q.Year > 0 && q.Month > 0 {
		v.Set("year", strconv.Itoa(q.Year))
		v.Set("month", strconv.Itoa(q.Month))
	}
	if q.Shift != 0 {
		v.Set("shift", strconv.Itoa(q.Shift))
	}
	if q.Selected != "" {
		v.Set("selected", q.Selected)
	}
	return v
}

// Client provides a Go SDK for interacting with the glicks-server API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new glicks API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Health reports the server status and its configured source kind.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	return &out, c.get(ctx, "/health", nil, &out)
}

// Seasons lists the seasons the server can serve.
func (c *Client) Seasons(ctx context.Context) (*SeasonsResponse, error) {
	var out SeasonsResponse
	return &out, c.get(ctx, "/api/v1/seasons", nil, &out)
}

// TodayPicks returns the live feed of season, or the current season when
// season is empty.
func (c *Client) TodayPicks(ctx context.Context, season string, q PicksQuery) (*PicksResponse, error) {
	path := "/api/v1/picks/today"
	if season != "" {
		path = "/api/v1/seasons/" + url.PathEscape(season) + "/picks/today"
	}
	var out PicksResponse
	return &out, c.get(ctx, path, q.values(), &out)
}

// PicksForDate returns the archived picks of one date.
func (c *Client) PicksForDate(ctx context.Context, season, date string, q PicksQuery) (*PicksResponse, error) {
	path := "/api/v1/seasons/" + url.PathEscape(season) + "/picks/" + url.PathEscape(date)
	var out PicksResponse
	return &out, c.get(ctx, path, q.values(), &out)
}

// Calendar returns the date-index month grid of season.
func (c *Client) Calendar(ctx context.Context, season string, q CalendarQuery) (*CalendarResponse, error) {
	path := "/api/v1/seasons/" + url.PathEscape(season) + "/calendar"
	var out CalendarResponse
	return &out, c.get(ctx, path, q.values(), &out)
}

// Results returns the results view of season.
func (c *Client) Results(ctx context.Context, season string) (*ResultsResponse, error) {
	path := "/api/v1/seasons/" + url.PathEscape(season) + "/results"
	var out ResultsResponse
	return &out, c.get(ctx, path, nil, &out)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(body))
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &Error{StatusCode: resp.StatusCode, Message: msg}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
