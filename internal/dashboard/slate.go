package dashboard

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"glicks/internal/domain"
)

// UngroupedSlate keys the slate of games without a start time.
const UngroupedSlate = "_ungrouped"

// UnknownMinutes sorts slates without a parsable start time last.
const UnknownMinutes = 9999

var slateTimeRe = regexp.MustCompile(`(?i)^(\d{1,2}):(\d{2})\s*(AM|PM)`)

// GameGroup holds the picks for one game.
type GameGroup struct {
	Key      string
	HomeTeam string
	AwayTeam string
	GameTime string
	Picks    []domain.Pick
}

// SlateGroup holds the games sharing a start time.
type SlateGroup struct {
	Key     string
	Label   string
	Minutes int
	Games   []GameGroup
}

// GroupOptions tunes GroupSlates.
type GroupOptions struct {
	// SplitDoubleheaders appends the start time to the home/away fallback
	// key so two same-day games between the same teams stay apart. Picks
	// that carry a game id are unaffected.
	SplitDoubleheaders bool
}

// GameKey returns the grouping key for p: its game id, or home_away when
// the id is absent.
func GameKey(p *domain.Pick, opts GroupOptions) string {
	if !p.GamePK.Empty() {
		return string(p.GamePK)
	}
	key := p.HomeTeam + "_" + p.AwayTeam
	if opts.SplitDoubleheaders && p.GameTime != "" {
		key += "@" + p.GameTime
	}
	return key
}

// ParseTimeMinutes converts a label such as "7:10 PM ET" to minutes after
// midnight. Missing or unparsable labels return UnknownMinutes.
func ParseTimeMinutes(label string) int {
	m := slateTimeRe.FindStringSubmatch(label)
	if m == nil {
		return UnknownMinutes
	}
	hours, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	switch strings.ToUpper(m[3]) {
	case "PM":
		if hours != 12 {
			hours += 12
		}
	case "AM":
		if hours == 12 {
			hours = 0
		}
	}
	return hours*60 + mins
}

// GroupSlates groups one day's filtered and sorted picks into slates of
// games. Slates are ordered by start time, games within a slate by pick
// count descending, and picks within a game by stars descending. Every sort
// is stable, so ties keep encounter order.
func GroupSlates(picks []domain.Pick, opts GroupOptions) []SlateGroup {
	games := make(map[string]*GameGroup)
	var gameOrder []string
	for i := range picks {
		p := &picks[i]
		key := GameKey(p, opts)
		g, ok := games[key]
		if !ok {
			g = &GameGroup{Key: key, HomeTeam: p.HomeTeam, AwayTeam: p.AwayTeam, GameTime: p.GameTime}
			games[key] = g
			gameOrder = append(gameOrder, key)
		}
		g.Picks = append(g.Picks, *p)
	}

	slates := make(map[string]*SlateGroup)
	var slateOrder []string
	for _, key := range gameOrder {
		g := games[key]
		sort.SliceStable(g.Picks, func(i, j int) bool { return g.Picks[i].Stars > g.Picks[j].Stars })

		skey := g.GameTime
		if skey == "" {
			skey = UngroupedSlate
		}
		s, ok := slates[skey]
		if !ok {
			s = &SlateGroup{Key: skey, Label: g.GameTime, Minutes: ParseTimeMinutes(g.GameTime)}
			slates[skey] = s
			slateOrder = append(slateOrder, skey)
		}
		s.Games = append(s.Games, *g)
	}

	out := make([]SlateGroup, 0, len(slateOrder))
	for _, key := range slateOrder {
		s := slates[key]
		sort.SliceStable(s.Games, func(i, j int) bool { return len(s.Games[i].Picks) > len(s.Games[j].Picks) })
		out = append(out, *s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Minutes < out[j].Minutes })
	return out
}

// ShowSlateHeaders reports whether time banners should be drawn: with two
// or more slates, or with a single slate that has a start time.
func ShowSlateHeaders(slates []SlateGroup) bool {
	return len(slates) > 1 || (len(slates) == 1 && slates[0].Key != UngroupedSlate)
}
