// Package domain defines the payloads the dashboard consumes: picks, the
// per-season date index, and season results, plus the ViewContext every
// season-aware call receives.
package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Direction is the side of a player prop.
type Direction string

const (
	Over  Direction = "OVER"
	Under Direction = "UNDER"
)

// UnmarshalJSON upper-cases and trims the wire value.
func (d *Direction) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*d = Direction(strings.ToUpper(strings.TrimSpace(s)))
	return nil
}

// Valid reports whether d is OVER or UNDER.
func (d Direction) Valid() bool { return d == Over || d == Under }

// Result is the graded outcome of a pick. The zero value means ungraded.
type Result string

const (
	Win  Result = "win"
	Loss Result = "loss"
	Push Result = "push"
)

// UnmarshalJSON lower-cases the wire value; null decodes as ungraded.
func (r *Result) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*r = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = ParseResult(s)
	return nil
}

// ParseResult normalizes a result string read from any source.
func ParseResult(s string) Result {
	return Result(strings.ToLower(strings.TrimSpace(s)))
}

// Valid reports whether r is ungraded or one of win, loss, push.
func (r Result) Valid() bool {
	switch r {
	case "", Win, Loss, Push:
		return true
	}
	return false
}

// ID is an identifier the data source emits as either a JSON number or a
// string, such as game_pk or player_id. Null decodes as the empty ID.
type ID string

// UnmarshalJSON accepts strings, numbers and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*id = ID(n.String())
	}
	return nil
}

// Empty reports whether the ID is absent. A zero numeric id counts as
// absent, matching how the upstream feed marks unknown games.
func (id ID) Empty() bool { return id == "" || id == "0" }

// Count is a non-negative integer that tolerates strings, floats and null on
// the wire. Anything unparsable decodes as 0.
type Count int

// UnmarshalJSON implements a lenient numeric decode.
func (c *Count) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		*c = 0
		return nil
	}
	*c = Count(f)
	return nil
}

// Pick is one recommended bet on a player prop.
type Pick struct {
	Date       string    `json:"date,omitempty"`
	Player     string    `json:"player"`
	PlayerID   ID        `json:"player_id,omitempty"`
	PlayerTeam string    `json:"player_team,omitempty"`
	Team       string    `json:"team,omitempty"`
	Opponent   string    `json:"opponent,omitempty"`
	HomeTeam   string    `json:"home_team,omitempty"`
	AwayTeam   string    `json:"away_team,omitempty"`
	Market     string    `json:"market"`
	Category   string    `json:"category,omitempty"`
	Direction  Direction `json:"direction"`
	Line       float64   `json:"line"`
	Stars      int       `json:"stars"`
	BestBook   string    `json:"best_book,omitempty"`
	BestPrice  *int      `json:"best_price"`
	GamePK     ID        `json:"game_pk,omitempty"`
	GameTime   string    `json:"game_time,omitempty"`
	Result     Result    `json:"result,omitempty"`
	Actual     *float64  `json:"actual"`
	PnL        *float64  `json:"pnl"`
}

// Valid reports whether p satisfies the pick invariants: a known direction,
// stars in [1,3], a finite line and a known result.
func (p *Pick) Valid() bool {
	return p.Direction.Valid() &&
		p.Stars >= 1 && p.Stars <= 3 &&
		!math.IsNaN(p.Line) && !math.IsInf(p.Line, 0) &&
		p.Result.Valid()
}

// PicksPayload is one day's pick list.
type PicksPayload struct {
	Date        string `json:"date"`
	GeneratedAt string `json:"generated_at"`
	Picks       []Pick `json:"picks"`
}

// Sanitize drops picks that violate the pick invariants and returns how many
// were removed. A nil payload is left alone.
func (p *PicksPayload) Sanitize() int {
	if p == nil {
		return 0
	}
	kept := p.Picks[:0]
	for i := range p.Picks {
		if p.Picks[i].Valid() {
			kept = append(kept, p.Picks[i])
		}
	}
	dropped := len(p.Picks) - len(kept)
	p.Picks = kept
	return dropped
}

// DateCount is one entry of a season's date index.
type DateCount struct {
	Date  string `json:"date"`
	Count Count  `json:"count"`
}

// DateIndexPayload lists the dates that have archived picks. A missing
// dates array decodes as nil.
type DateIndexPayload struct {
	Dates []DateCount `json:"dates"`
}
