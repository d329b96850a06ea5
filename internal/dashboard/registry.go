package dashboard

import (
	"strconv"
	"strings"

	"glicks/internal/domain"
)

// DefaultBookColor is used for sportsbooks missing from the registry.
const DefaultBookColor = "#8d95a3"

// Book describes a sportsbook for display.
type Book struct {
	Key   string
	Name  string
	Color string
}

// books is keyed by normalized book key. williamhill_us is the Caesars feed.
var books = map[string]Book{
	"draftkings":     {"draftkings", "DraftKings", "#53d337"},
	"fanduel":        {"fanduel", "FanDuel", "#1493ff"},
	"betmgm":         {"betmgm", "BetMGM", "#c5a05e"},
	"caesars":        {"caesars", "Caesars", "#8c1d40"},
	"williamhill_us": {"williamhill_us", "Caesars", "#8c1d40"},
	"pointsbet":      {"pointsbet", "PointsBet", "#e4002b"},
	"betrivers":      {"betrivers", "BetRivers", "#1a3668"},
	"bovada":         {"bovada", "Bovada", "#cc0000"},
	"bet365":         {"bet365", "bet365", "#027b5b"},
	"fanatics":       {"fanatics", "Fanatics", "#004bed"},
	"betonlineag":    {"betonlineag", "BetOnline", "#ff6600"},
	"mybookieag":     {"mybookieag", "MyBookie", "#d4af37"},
}

// LookupBook returns the registry entry for a raw book key. Unknown books
// keep their key as the display name and get DefaultBookColor.
func LookupBook(raw string) Book {
	key := NormalizeKey(raw)
	if b, ok := books[key]; ok {
		return b
	}
	return Book{Key: key, Name: key, Color: DefaultBookColor}
}

// BookName returns the display name for a normalized book key.
func BookName(key string) string { return LookupBook(key).Name }

// BookColor returns the display color for a normalized book key.
func BookColor(key string) string { return LookupBook(key).Color }

var teamAliases = map[string]string{
	"ARI": "AZ",
	"OAK": "ATH",
	"WAS": "WSH",
	"SDP": "SD",
	"SFG": "SF",
	"KCR": "KC",
	"TBR": "TB",
	"CHW": "CWS",
}

var teamLogoIDs = map[string]int{
	"ATH": 133, "AZ": 109, "ATL": 144, "BAL": 110, "BOS": 111,
	"CHC": 112, "CIN": 113, "CLE": 114, "COL": 115, "CWS": 145,
	"DET": 116, "HOU": 117, "KC": 118, "LAA": 108, "LAD": 119,
	"MIA": 146, "MIL": 158, "MIN": 142, "NYM": 121, "NYY": 147,
	"PHI": 143, "PIT": 134, "SD": 135, "SEA": 136, "SF": 137,
	"STL": 138, "TB": 139, "TEX": 140, "TOR": 141, "WSH": 120,
}

// NormalizeTeamCode maps the abbreviations used by various feeds to one
// canonical code. Empty input yields "".
func NormalizeTeamCode(raw string) string {
	t := strings.ToUpper(strings.TrimSpace(raw))
	if canon, ok := teamAliases[t]; ok {
		return canon
	}
	return t
}

// TeamLogoURL returns the logo URL for a team, or "" for unknown teams.
func TeamLogoURL(team string) string {
	id, ok := teamLogoIDs[NormalizeTeamCode(team)]
	if !ok {
		return ""
	}
	return "https://www.mlbstatic.com/team-logos/" + strconv.Itoa(id) + ".svg"
}

// HeadshotURL returns the player photo URL, or "" without a player id.
func HeadshotURL(playerID domain.ID) string {
	if playerID.Empty() {
		return ""
	}
	return "https://img.mlbstatic.com/mlb-photos/image/upload/d_people:generic:headshot:67:current.png/w_213,q_auto:best/v1/people/" +
		string(playerID) + "/headshot/67/current"
}

// PlayerInitials returns "TS" for "Skubal, Tarik" and the upper-cased first
// letter for any other name shape.
func PlayerInitials(name string) string {
	parts := strings.Split(name, ", ")
	if len(parts) == 2 {
		return strings.ToUpper(firstRune(parts[1]) + firstRune(parts[0]))
	}
	return strings.ToUpper(firstRune(name))
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}

// PlayerTeamCode returns the player's team: the explicit team field if set,
// otherwise whichever of home/away is not the opponent. It returns "" when
// the team cannot be inferred.
func PlayerTeamCode(p *domain.Pick) string {
	explicit := p.PlayerTeam
	if explicit == "" {
		explicit = p.Team
	}
	if t := NormalizeTeamCode(explicit); t != "" {
		return t
	}

	opp := NormalizeTeamCode(p.Opponent)
	home := NormalizeTeamCode(p.HomeTeam)
	away := NormalizeTeamCode(p.AwayTeam)
	if opp == "" || home == "" || away == "" {
		return ""
	}
	switch opp {
	case home:
		return away
	case away:
		return home
	}
	return ""
}
