package util

import (
	"log/slog"
	"time"
)

// DefaultTimeZone is the zone game times and update stamps are shown in.
const DefaultTimeZone = "America/New_York"

// LoadLocation resolves name (DefaultTimeZone when empty). If the zone
// database is unavailable it logs and falls back to UTC so rendering keeps
// working.
func LoadLocation(name string) *time.Location {
	if name == "" {
		name = DefaultTimeZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		slog.Warn("loading time zone, using UTC", "zone", name, "error", err)
		return time.UTC
	}
	return loc
}
