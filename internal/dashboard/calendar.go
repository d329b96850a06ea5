package dashboard

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"glicks/internal/domain"
)

// Density shading for available calendar days: the sparsest day gets
// alphaFloor, the busiest alphaFloor+alphaRange.
const (
	alphaFloor = 0.16
	alphaRange = 0.54
)

// CalendarIndex is the navigable month view over a season's date index.
// Month fields are zero-based (0 = January).
type CalendarIndex struct {
	Dates         []domain.DateCount
	CountByDate   map[string]int
	MaxCount      int
	MinMonthIndex int
	MaxMonthIndex int
	ViewYear      int
	ViewMonth     int
	SelectedDate  string
}

// MonthIndex maps a year and zero-based month to a single comparable int.
func MonthIndex(year, month0 int) int {
	return year*12 + month0
}

// ToDateKey formats a zero-padded YYYY-MM-DD key from a zero-based month.
func ToDateKey(year, month0, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month0+1, day)
}

func parseDateKey(key string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", key)
	return t, err == nil
}

// BuildIndex builds a CalendarIndex from a date index payload. It returns
// nil when the payload is nil, has no dates array, or has no parsable
// dates. Duplicate dates keep the last count seen; the cursor and the
// selection start on the most recent date.
func BuildIndex(payload *domain.DateIndexPayload) *CalendarIndex {
	if payload == nil || len(payload.Dates) == 0 {
		return nil
	}

	counts := make(map[string]int, len(payload.Dates))
	for _, e := range payload.Dates {
		if _, ok := parseDateKey(e.Date); !ok {
			continue
		}
		counts[e.Date] = int(e.Count)
	}
	if len(counts) == 0 {
		return nil
	}

	dates := make([]domain.DateCount, 0, len(counts))
	maxCount := 1
	for d, n := range counts {
		dates = append(dates, domain.DateCount{Date: d, Count: domain.Count(n)})
		if n > maxCount {
			maxCount = n
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Date < dates[j].Date })

	first, _ := parseDateKey(dates[0].Date)
	last, _ := parseDateKey(dates[len(dates)-1].Date)

	return &CalendarIndex{
		Dates:         dates,
		CountByDate:   counts,
		MaxCount:      maxCount,
		MinMonthIndex: MonthIndex(first.Year(), int(first.Month())-1),
		MaxMonthIndex: MonthIndex(last.Year(), int(last.Month())-1),
		ViewYear:      last.Year(),
		ViewMonth:     int(last.Month()) - 1,
		SelectedDate:  dates[len(dates)-1].Date,
	}
}

// ViewMonthIndex is MonthIndex of the cursor.
func (ix *CalendarIndex) ViewMonthIndex() int {
	return MonthIndex(ix.ViewYear, ix.ViewMonth)
}

// Count returns the number of picks on date, 0 if it is not indexed.
func (ix *CalendarIndex) Count(date string) int {
	if ix == nil {
		return 0
	}
	return ix.CountByDate[date]
}

// LatestDate returns the most recent indexed date.
func (ix *CalendarIndex) LatestDate() string {
	if ix == nil || len(ix.Dates) == 0 {
		return ""
	}
	return ix.Dates[len(ix.Dates)-1].Date
}

func (ix *CalendarIndex) candidate(delta int) (int, int, bool) {
	t := time.Date(ix.ViewYear, time.Month(ix.ViewMonth+1+delta), 1, 0, 0, 0, 0, time.UTC)
	year, month0 := t.Year(), int(t.Month())-1
	idx := MonthIndex(year, month0)
	return year, month0, idx >= ix.MinMonthIndex && idx <= ix.MaxMonthIndex
}

// CanShift reports whether ShiftMonth(delta) would move the cursor.
func (ix *CalendarIndex) CanShift(delta int) bool {
	if ix == nil || delta == 0 {
		return false
	}
	_, _, ok := ix.candidate(delta)
	return ok
}

// ShiftMonth moves the cursor by delta months. A move that would leave the
// indexed month range is ignored. It reports whether the cursor moved.
func (ix *CalendarIndex) ShiftMonth(delta int) bool {
	if ix == nil || delta == 0 {
		return false
	}
	year, month0, ok := ix.candidate(delta)
	if !ok {
		return false
	}
	ix.ViewYear, ix.ViewMonth = year, month0
	return true
}

// Select makes date the selected date and moves the cursor to its month.
// Dates without picks are rejected.
func (ix *CalendarIndex) Select(date string) bool {
	if ix == nil || ix.CountByDate[date] <= 0 {
		return false
	}
	t, ok := parseDateKey(date)
	if !ok {
		return false
	}
	ix.SelectedDate = date
	ix.ViewYear, ix.ViewMonth = t.Year(), int(t.Month())-1
	return true
}

// MonthLabel renders the cursor month, e.g. "April 2025".
func (ix *CalendarIndex) MonthLabel() string {
	if ix == nil {
		return ""
	}
	return FormatMonthLabel(ix.ViewYear, ix.ViewMonth)
}

// DayCell is one day of a rendered month.
type DayCell struct {
	Day         int     `json:"day"`
	DateKey     string  `json:"date"`
	Count       int     `json:"count"`
	IsAvailable bool    `json:"available"`
	Density     float64 `json:"density"`
	Alpha       float64 `json:"alpha"`
	Selected    bool    `json:"selected"`
}

// CalendarMonth is the grid for the cursor month. LeadingBlanks is the
// weekday of the first (0 = Sunday) for padding a seven column grid.
type CalendarMonth struct {
	Year          int       `json:"year"`
	Month         int       `json:"month"`
	Label         string    `json:"label"`
	LeadingBlanks int       `json:"leading_blanks"`
	Days          []DayCell `json:"days"`
	CanPrev       bool      `json:"can_prev"`
	CanNext       bool      `json:"can_next"`
}

// ComputeDays lays out the cursor month. Unavailable days have density and
// alpha 0. A nil index yields an empty month.
func (ix *CalendarIndex) ComputeDays(selected string) CalendarMonth {
	if ix == nil {
		return CalendarMonth{Days: []DayCell{}}
	}

	year, month0 := ix.ViewYear, ix.ViewMonth
	first := time.Date(year, time.Month(month0+1), 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := time.Date(year, time.Month(month0+2), 0, 0, 0, 0, 0, time.UTC).Day()

	maxCount := ix.MaxCount
	if maxCount < 1 {
		maxCount = 1
	}

	days := make([]DayCell, 0, daysInMonth)
	for day := 1; day <= daysInMonth; day++ {
		key := ToDateKey(year, month0, day)
		count := ix.CountByDate[key]
		cell := DayCell{Day: day, DateKey: key, Count: count, Selected: key == selected}
		if count > 0 {
			cell.IsAvailable = true
			cell.Density = float64(count) / float64(maxCount)
			cell.Alpha = densityAlpha(cell.Density)
		}
		days = append(days, cell)
	}

	return CalendarMonth{
		Year:          year,
		Month:         month0,
		Label:         ix.MonthLabel(),
		LeadingBlanks: int(first.Weekday()),
		Days:          days,
		CanPrev:       ix.CanShift(-1),
		CanNext:       ix.CanShift(1),
	}
}

func densityAlpha(density float64) float64 {
	return decimal.NewFromFloat(alphaFloor + density*alphaRange).Round(3).InexactFloat64()
}
