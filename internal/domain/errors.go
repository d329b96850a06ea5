package domain

import (
	"errors"
	"time"
)

// ErrNotFound marks a season, date or document that has no data.
var ErrNotFound = errors.New("not found")

// ErrInvalidDate marks a date argument that is not YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date")

// ValidDate reports whether s is a YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
