package dashboard

import (
	"sort"
	"strconv"
	"strings"

	"glicks/internal/domain"
)

// MaxRecentRows caps the recent results table.
const MaxRecentRows = 50

// EmptyState is the copy shown in place of a view with nothing to render.
type EmptyState struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// MarketRow is one rendered row of the per-market table.
type MarketRow struct {
	Market   string `json:"market"`
	Bets     int    `json:"bets"`
	Record   string `json:"record"`
	WinRate  string `json:"win_rate"`
	PnLText  string `json:"pnl_text"`
	PnLClass string `json:"pnl_class"`
	ROIText  string `json:"roi_text"`
	ROIClass string `json:"roi_class"`
}

// RecentRow is one rendered row of the recent results table.
type RecentRow struct {
	DateText   string `json:"date_text"`
	Player     string `json:"player"`
	PickText   string `json:"pick_text"`
	Result     string `json:"result"`
	ActualText string `json:"actual_text"`
	PnLText    string `json:"pnl_text"`
	PnLClass   string `json:"pnl_class"`
}

// DirectionRow is one rendered row of the OVER/UNDER table.
type DirectionRow struct {
	Direction string `json:"direction"`
	Bets      int    `json:"bets"`
	WinRate   string `json:"win_rate"`
	ROIText   string `json:"roi_text"`
	ROIClass  string `json:"roi_class"`
}

// Streaks summarizes runs of winning and losing days. CurrentType is "W",
// "L" or "" when no day had a non-zero result.
type Streaks struct {
	Current     int    `json:"current"`
	CurrentType string `json:"current_type"`
	BestWin     int    `json:"best_win"`
	BestLoss    int    `json:"best_loss"`
}

// Text renders the longest-streak line, e.g. "Longest Streak 4W / 3L". It
// is empty when no streak exists.
func (s *Streaks) Text() string {
	if s == nil || (s.BestWin == 0 && s.BestLoss == 0) {
		return ""
	}
	var parts []string
	if s.BestWin > 0 {
		parts = append(parts, strconv.Itoa(s.BestWin)+"W")
	}
	if s.BestLoss > 0 {
		parts = append(parts, strconv.Itoa(s.BestLoss)+"L")
	}
	return "Longest Streak " + strings.Join(parts, " / ")
}

// ComputeDailyStreaks walks day results in order. The current run counts
// back from the last day, skipping flat days. It returns nil for no days.
func ComputeDailyStreaks(dayPnL []float64) *Streaks {
	if len(dayPnL) == 0 {
		return nil
	}
	s := &Streaks{}
	for i := len(dayPnL) - 1; i >= 0; i-- {
		v := dayPnL[i]
		if v == 0 {
			continue
		}
		t := "L"
		if v > 0 {
			t = "W"
		}
		if s.CurrentType == "" {
			s.CurrentType, s.Current = t, 1
		} else if t == s.CurrentType {
			s.Current++
		} else {
			break
		}
	}

	win, loss := 0, 0
	for _, v := range dayPnL {
		switch {
		case v > 0:
			win++
			loss = 0
			s.BestWin = max(s.BestWin, win)
		case v < 0:
			loss++
			win = 0
			s.BestLoss = max(s.BestLoss, loss)
		}
	}
	return s
}

// BankrollSeries is the chart data for the bankroll curve.
type BankrollSeries struct {
	Labels   []string  `json:"labels"`
	Flat     []float64 `json:"flat"`
	Pct      []float64 `json:"pct"`
	Baseline float64   `json:"baseline"`
}

// StatText is a formatted value with its sign class.
type StatText struct {
	Text  string `json:"text"`
	Class string `json:"class"`
}

// ResultsViewModel is everything the results page renders. Callers must
// check Available before reading any other field, and Empty before the
// tables.
type ResultsViewModel struct {
	Available       bool   `json:"available"`
	GeneratedAtText string `json:"generated_at_text"`

	Empty      bool        `json:"empty"`
	EmptyState *EmptyState `json:"empty_state,omitempty"`

	Record      string `json:"record"`
	WinRateText string `json:"win_rate_text"`
	PnLText     string `json:"pnl_text"`
	PnLClass    string `json:"pnl_class"`
	ROIText     string `json:"roi_text"`
	ROIClass    string `json:"roi_class"`

	BetROI          *StatText `json:"bet_roi,omitempty"`
	FlatReturn      *StatText `json:"flat_return,omitempty"`
	PctReturn       *StatText `json:"pct_return,omitempty"`
	FlatDrawdown    *StatText `json:"flat_drawdown,omitempty"`
	PctDrawdown     *StatText `json:"pct_drawdown,omitempty"`
	InitialBankroll float64   `json:"initial_bankroll"`

	Markets         []MarketRow    `json:"markets"`
	Recent          []RecentRow    `json:"recent"`
	RecentTruncated bool           `json:"recent_truncated"`
	Directions      []DirectionRow `json:"directions,omitempty"`

	Streaks      *Streaks        `json:"streaks,omitempty"`
	StreakText   string          `json:"streak_text,omitempty"`
	Bankroll     *BankrollSeries `json:"bankroll,omitempty"`
	BankrollText string          `json:"bankroll_text,omitempty"`
	ChartSummary string          `json:"chart_summary"`
	Warnings     []string        `json:"warnings,omitempty"`
	WarningText  string          `json:"warning_text,omitempty"`
}

// ResultsUnavailable is the empty state for a failed results fetch.
var ResultsUnavailable = EmptyState{
	Title:   "Results unavailable",
	Message: "We could not load results data. Please try refreshing.",
}

// NoGradedBets returns the empty state for a season without graded bets.
func NoGradedBets(vc domain.ViewContext) EmptyState {
	if vc.IsArchive() {
		return EmptyState{
			Title:   "No data for " + vc.Season,
			Message: "Archive data is not available for the " + vc.Season + " season.",
		}
	}
	return EmptyState{
		Title: "Season Starting Soon",
		Message: "Results will appear here once the " + vc.Season +
			" season begins and picks are graded. Select a season above to explore the backtest archive.",
	}
}

// WarningText renders the partial failure banner, or "" with no warnings.
func WarningText(failed []string) string {
	if len(failed) == 0 {
		return ""
	}
	return "Warning: Some data failed to load (" + strings.Join(failed, ", ") + "). Try refreshing."
}

// Record renders "W-L" with a "-P" suffix only when there are pushes.
func Record(wins, losses, pushes int) string {
	r := strconv.Itoa(wins) + "-" + strconv.Itoa(losses)
	if pushes > 0 {
		r += "-" + strconv.Itoa(pushes)
	}
	return r
}

// DeriveResultsViewModel turns a results payload into display strings. It
// has no side effects. A nil payload or a payload without a summary yields
// an unavailable model.
func DeriveResultsViewModel(p *domain.ResultsPayload, vc domain.ViewContext) ResultsViewModel {
	if p == nil || p.Summary == nil {
		return ResultsViewModel{GeneratedAtText: "Last updated: unavailable"}
	}
	s := p.Summary

	vm := ResultsViewModel{
		Available:       true,
		GeneratedAtText: "Last updated: " + FormatTimestamp(p.GeneratedAt, vc.Loc()),
		Record:          Record(s.Wins, s.Losses, s.Pushes),
		WinRateText:     FormatPct(s.WinRate),
		PnLText:         FormatPnLValue(s.TotalPnL),
		PnLClass:        SignClass(s.TotalPnL),
		ROIText:         FormatSignedPct(s.ROI),
		ROIClass:        SignClass(s.ROI),
		InitialBankroll: s.InitialBankrollOrDefault(),
		Warnings:        p.Warnings,
		WarningText:     WarningText(p.Warnings),
		ChartSummary:    chartSummary(p.CumulativePnL),
	}
	if _, ok := ParseTimestamp(p.GeneratedAt); !ok {
		vm.GeneratedAtText = "Last updated: unavailable"
	}

	if s.TotalBets != nil && *s.TotalBets == 0 {
		es := NoGradedBets(vc)
		vm.Empty = true
		vm.EmptyState = &es
		vm.Markets = []MarketRow{}
		vm.Recent = []RecentRow{}
		return vm
	}

	if s.BetROI != nil {
		vm.BetROI = &StatText{Text: FormatSignedPct(*s.BetROI), Class: SignClass(*s.BetROI)}
	}
	if s.Flat != nil {
		vm.FlatReturn = &StatText{Text: FormatSignedPct(s.Flat.ReturnPct), Class: SignClass(s.Flat.ReturnPct)}
		vm.FlatDrawdown = &StatText{Text: FormatPct(s.Flat.MaxDrawdownPct), Class: "negative"}
	}
	if s.Pct != nil {
		vm.PctReturn = &StatText{Text: FormatSignedPct(s.Pct.ReturnPct), Class: SignClass(s.Pct.ReturnPct)}
		vm.PctDrawdown = &StatText{Text: FormatPct(s.Pct.MaxDrawdownPct), Class: "negative"}
	}

	vm.Markets = marketRows(p.ByMarket)
	vm.Recent, vm.RecentTruncated = recentRows(p.Recent)
	vm.Directions = directionRows(p.DirectionStats)

	if len(p.BankrollCurve) > 0 {
		days := make([]float64, len(p.BankrollCurve))
		for i, bp := range p.BankrollCurve {
			days[i] = bp.FlatDayPnL
		}
		vm.Streaks = ComputeDailyStreaks(days)
		vm.StreakText = vm.Streaks.Text()
		vm.Bankroll = bankrollSeries(p.BankrollCurve, vm.InitialBankroll)
	}
	if len(p.BankrollCurve) > 1 {
		last := p.BankrollCurve[len(p.BankrollCurve)-1]
		vm.BankrollText = "Starting from " + FormatMoney(vm.InitialBankroll) +
			", flat strategy ended at " + FormatMoney(last.Flat) +
			" and 2% strategy at " + FormatMoney(last.Pct) +
			" over " + strconv.Itoa(len(p.BankrollCurve)) + " trading days."
	}
	return vm
}

func marketRows(stats []domain.MarketStat) []MarketRow {
	sorted := append([]domain.MarketStat(nil), stats...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ROI > sorted[j].ROI })

	rows := make([]MarketRow, 0, len(sorted))
	for _, m := range sorted {
		rows = append(rows, MarketRow{
			Market:   m.Market,
			Bets:     m.Bets,
			Record:   Record(m.Wins, m.Losses, m.Pushes),
			WinRate:  FormatPct(m.WinRate),
			PnLText:  FormatPnLValue(m.PnL),
			PnLClass: PnLClass(m.PnL),
			ROIText:  FormatSignedPct(m.ROI),
			ROIClass: PnLClass(m.ROI),
		})
	}
	return rows
}

func recentRows(recent []domain.RecentPick) ([]RecentRow, bool) {
	truncated := len(recent) > MaxRecentRows
	if truncated {
		recent = recent[:MaxRecentRows]
	}
	rows := make([]RecentRow, 0, len(recent))
	for _, r := range recent {
		row := RecentRow{
			DateText: FormatDate(r.Date),
			Player:   r.Player,
			PickText: r.Direction + " " + FormatNumber(r.Line) + " " + r.Market,
			Result:   strings.ToUpper(string(r.Result)),
			PnLText:  FormatPnL(r.PnL),
		}
		if r.Actual != nil {
			row.ActualText = " (" + FormatNumber(*r.Actual) + ")"
		}
		if r.PnL != nil {
			row.PnLClass = PnLClass(*r.PnL)
		}
		rows = append(rows, row)
	}
	return rows, truncated
}

func directionRows(stats []domain.DirectionStat) []DirectionRow {
	if len(stats) == 0 {
		return nil
	}
	rows := make([]DirectionRow, 0, len(stats))
	for _, d := range stats {
		winRate := 0.0
		if d.WinRate != nil {
			winRate = *d.WinRate
		}
		roi := 0.0
		if d.ROI != nil {
			roi = *d.ROI
		}
		rows = append(rows, DirectionRow{
			Direction: d.Direction,
			Bets:      d.Bets,
			WinRate:   FormatPct(winRate),
			ROIText:   FormatSignedPct(roi),
			ROIClass:  PnLClass(roi),
		})
	}
	return rows
}

func bankrollSeries(curve []domain.BankrollPoint, initial float64) *BankrollSeries {
	bs := &BankrollSeries{
		Labels:   make([]string, len(curve)),
		Flat:     make([]float64, len(curve)),
		Pct:      make([]float64, len(curve)),
		Baseline: initial,
	}
	for i, bp := range curve {
		bs.Labels[i] = FormatDate(bp.Date)
		bs.Flat[i] = bp.Flat
		bs.Pct[i] = bp.Pct
	}
	return bs
}

func chartSummary(points []domain.CumulativePoint) string {
	if len(points) < 2 {
		return "Summary unavailable."
	}
	first, last := points[0], points[len(points)-1]
	return "From " + first.Date + " to " + last.Date + ", cumulative P&L moved from " +
		FormatPnLValue(first.Cumulative) + " to " + FormatPnLValue(last.Cumulative) + "."
}
