package domain

import (
	"path"
	"strconv"
	"time"
)

// ViewContext carries the viewer's season and display zone. DataBaseline is
// the live season, whose files sit directly under data/; every other
// season is an archive under data/{season}/.
type ViewContext struct {
	Season       string
	DataBaseline string
	Location     *time.Location
}

// NewViewContext returns a context viewing season, defaulting to the
// baseline when season is empty.
func NewViewContext(season, baseline string, loc *time.Location) ViewContext {
	if season == "" {
		season = baseline
	}
	return ViewContext{Season: season, DataBaseline: baseline, Location: loc}
}

// IsArchive reports whether the viewed season is not the live one.
func (vc ViewContext) IsArchive() bool {
	return vc.Season != vc.DataBaseline
}

// SeasonInt returns the season as a year, or 0 if it is not numeric.
func (vc ViewContext) SeasonInt() int {
	n, err := strconv.Atoi(vc.Season)
	if err != nil {
		return 0
	}
	return n
}

// Loc returns the display location, UTC when unset.
func (vc ViewContext) Loc() *time.Location {
	if vc.Location == nil {
		return time.UTC
	}
	return vc.Location
}

// DataPath returns the slash-separated path of a published data file for
// the viewed season.
func (vc ViewContext) DataPath(file string) string {
	if vc.Season == vc.DataBaseline {
		return path.Join("data", file)
	}
	return path.Join("data", vc.Season, file)
}

// WithSeason returns a copy of vc viewing season.
func (vc ViewContext) WithSeason(season string) ViewContext {
	vc.Season = season
	return vc
}
