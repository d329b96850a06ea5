package domain

// Summary is the season-level aggregate of graded picks.
type Summary struct {
	Wins            int            `json:"wins"`
	Losses          int            `json:"losses"`
	Pushes          int            `json:"pushes"`
	WinRate         float64        `json:"win_rate"`
	TotalPnL        float64        `json:"total_pnl"`
	ROI             float64        `json:"roi"`
	TotalBets       *int           `json:"total_bets,omitempty"`
	BetROI          *float64       `json:"bet_roi,omitempty"`
	InitialBankroll *float64       `json:"initial_bankroll,omitempty"`
	Flat            *StrategyStats `json:"flat,omitempty"`
	Pct             *StrategyStats `json:"pct,omitempty"`
}

// StrategyStats summarizes one staking strategy over the season.
type StrategyStats struct {
	ReturnPct      float64 `json:"return_pct"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
}

// MarketStat is one row of the per-market breakdown.
type MarketStat struct {
	Market  string  `json:"market"`
	Bets    int     `json:"bets"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	Pushes  int     `json:"pushes"`
	WinRate float64 `json:"win_rate"`
	PnL     float64 `json:"pnl"`
	ROI     float64 `json:"roi"`
}

// DirectionStat is one row of the OVER/UNDER breakdown.
type DirectionStat struct {
	Direction string   `json:"direction"`
	Bets      int      `json:"bets"`
	WinRate   *float64 `json:"win_rate"`
	ROI       *float64 `json:"roi"`
}

// RecentPick is a graded pick as listed in the recent results table.
type RecentPick struct {
	Date      string   `json:"date"`
	Player    string   `json:"player"`
	Market    string   `json:"market"`
	Direction string   `json:"direction"`
	Line      float64  `json:"line"`
	Result    Result   `json:"result"`
	Actual    *float64 `json:"actual"`
	PnL       *float64 `json:"pnl"`
	Stars     int      `json:"stars,omitempty"`
}

// CumulativePoint is one point of the cumulative P&L series.
type CumulativePoint struct {
	Date       string  `json:"date"`
	Cumulative float64 `json:"cumulative"`
}

// BankrollPoint is one trading day of the bankroll curve.
type BankrollPoint struct {
	Date       string  `json:"date"`
	Flat       float64 `json:"flat"`
	Pct        float64 `json:"pct"`
	Kelly      float64 `json:"kelly,omitempty"`
	FlatDayPnL float64 `json:"flat_day_pnl"`
	PctDayPnL  float64 `json:"pct_day_pnl,omitempty"`
	Bets       int     `json:"n_bets,omitempty"`
}

// ResultsPayload is everything the results page renders for one season.
// Warnings names the parts of the payload that failed to load.
type ResultsPayload struct {
	GeneratedAt    string            `json:"generated_at"`
	Summary        *Summary          `json:"summary"`
	ByMarket       []MarketStat      `json:"by_market"`
	Recent         []RecentPick      `json:"recent"`
	CumulativePnL  []CumulativePoint `json:"cumulative_pnl"`
	DirectionStats []DirectionStat   `json:"direction_stats,omitempty"`
	BankrollCurve  []BankrollPoint   `json:"bankroll_curve,omitempty"`
	Warnings       []string          `json:"warnings,omitempty"`
}

// DefaultInitialBankroll is the starting bankroll assumed when the summary
// does not carry one.
const DefaultInitialBankroll = 5000

// InitialBankrollOrDefault returns the summary's starting bankroll, or
// DefaultInitialBankroll when it is missing or zero.
func (s *Summary) InitialBankrollOrDefault() float64 {
	if s == nil || s.InitialBankroll == nil || *s.InitialBankroll == 0 {
		return DefaultInitialBankroll
	}
	return *s.InitialBankroll
}

// DeriveCumulative fills CumulativePnL from the flat-stake bankroll curve
// when the source did not provide a series. Each point is the flat bankroll
// less the starting bankroll.
func (r *ResultsPayload) DeriveCumulative() {
	if r == nil || len(r.CumulativePnL) > 0 || len(r.BankrollCurve) == 0 {
		return
	}
	start := r.Summary.InitialBankrollOrDefault()
	r.CumulativePnL = make([]CumulativePoint, 0, len(r.BankrollCurve))
	for _, bp := range r.BankrollCurve {
		r.CumulativePnL = append(r.CumulativePnL, CumulativePoint{Date: bp.Date, Cumulative: bp.Flat - start})
	}
}
