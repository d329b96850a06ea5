// Package httpapi serves the dashboard view models over HTTP as JSON, the
// same pages the TUI client renders.
package httpapi

import (
	"glicks/internal/dashboard"
)

// SeasonJSON describes one selectable season.
type SeasonJSON struct {
	Season  string `json:"season"`
	Archive bool   `json:"archive"`
}

// SeasonsResponse is the response for GET /api/v1/seasons.
type SeasonsResponse struct {
	Current string       `json:"current"`
	Seasons []SeasonJSON `json:"seasons"`
}

// PicksResponse is the response for the picks endpoints. Books and Markets
// echo the effective selections so a client can round-trip them.
type PicksResponse struct {
	Season  string                   `json:"season"`
	Date    string                   `json:"date,omitempty"`
	Sort    dashboard.SortKey        `json:"sort"`
	Books   map[string]bool          `json:"books"`
	Markets map[string]bool          `json:"markets"`
	View    dashboard.PicksViewModel `json:"view"`
}

// CalendarResponse is the response for GET /api/v1/seasons/{season}/calendar.
type CalendarResponse struct {
	Season       string                  `json:"season"`
	Available    bool                    `json:"available"`
	SelectedDate string                  `json:"selected_date,omitempty"`
	LatestDate   string                  `json:"latest_date,omitempty"`
	MaxCount     int                     `json:"max_count"`
	Month        dashboard.CalendarMonth `json:"month"`
}

// ResultsResponse is the response for GET /api/v1/seasons/{season}/results.
type ResultsResponse struct {
	Season string                     `json:"season"`
	View   dashboard.ResultsViewModel `json:"view"`
}

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	Source string `json:"source"`
}
