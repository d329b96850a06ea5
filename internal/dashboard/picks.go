package dashboard

import (
	"strconv"
	"strings"

	"glicks/internal/domain"
)

const headerSep = " • "

// Status lines for failed loads.
const (
	StatusFeedFailed  = "Could not load current picks feed."
	StatusDateFailed  = "Could not load picks for this date."
	StatusNoIndex     = "No date index available for this season."
	StatusIndexFailed = "Could not load date index for this season."
)

// Matchup is the team badge row of a pick card.
type Matchup struct {
	PlayerTeam   string `json:"player_team"`
	PlayerLogo   string `json:"player_logo,omitempty"`
	Opponent     string `json:"opponent"`
	OpponentLogo string `json:"opponent_logo,omitempty"`
}

// Outcome is the graded footer of a pick card.
type Outcome struct {
	Text       string `json:"text"`
	Class      string `json:"class"`
	ActualText string `json:"actual_text,omitempty"`
	PnLText    string `json:"pnl_text,omitempty"`
	PnLClass   string `json:"pnl_class,omitempty"`
}

// PickCard is one rendered pick.
type PickCard struct {
	Player         string   `json:"player"`
	Initials       string   `json:"initials"`
	HeadshotURL    string   `json:"headshot_url,omitempty"`
	Role           string   `json:"role"`
	Matchup        *Matchup `json:"matchup,omitempty"`
	Direction      string   `json:"direction"`
	DirectionClass string   `json:"direction_class"`
	LineText       string   `json:"line"`
	Market         string   `json:"market"`
	Stars          int      `json:"stars"`
	ShowBook       bool     `json:"show_book"`
	BookName       string   `json:"book_name,omitempty"`
	BookColor      string   `json:"book_color,omitempty"`
	PriceText      string   `json:"price,omitempty"`
	Outcome        *Outcome `json:"outcome,omitempty"`
}

// GameView is a rendered game within a slate.
type GameView struct {
	Key     string     `json:"key"`
	Matchup string     `json:"matchup"`
	Cards   []PickCard `json:"cards"`
}

// SlateView is a rendered slate. Label is empty for the ungrouped slate.
type SlateView struct {
	Key   string     `json:"key"`
	Label string     `json:"label"`
	Games []GameView `json:"games"`
}

// PicksState is the input of DerivePicksViewModel. ArchiveDate is set when
// an archived date is being viewed; Status carries a picks load failure
// and IndexStatus a date index failure.
type PicksState struct {
	Payload     *domain.PicksPayload
	Failed      bool
	Status      string
	IndexStatus string
	ArchiveDate string
	Books       Selection
	Markets     Selection
	Sort        SortKey
	Group       GroupOptions
}

// PicksViewModel is everything the picks page renders.
type PicksViewModel struct {
	HeaderText       string         `json:"header"`
	Status           string         `json:"status,omitempty"`
	IndexStatus      string         `json:"index_status,omitempty"`
	ShowControls     bool           `json:"show_controls"`
	Books            []FilterOption `json:"books"`
	Markets          []FilterOption `json:"markets,omitempty"`
	Sort             SortKey        `json:"sort"`
	Total            int            `json:"total"`
	Shown            int            `json:"shown"`
	SummaryText      string         `json:"summary"`
	ShowSlateHeaders bool           `json:"show_slate_headers"`
	Slates           []SlateView    `json:"slates"`
	OffseasonHero    bool           `json:"offseason_hero"`
	Empty            *EmptyState    `json:"empty,omitempty"`
}

// Empty states of the picks page.
var (
	NoPicksAvailable = EmptyState{
		Title:   "No picks available",
		Message: "Try a different date or season, or check again after the next data refresh.",
	}
	NoPicksMatch = EmptyState{
		Title:   "No picks match your filters",
		Message: "Adjust your sportsbook or market filters above to see matching picks.",
	}
)

// DerivePicksViewModel filters, sorts and groups the loaded picks and
// renders every card. It has no side effects.
func DerivePicksViewModel(vc domain.ViewContext, st PicksState) PicksViewModel {
	var all []domain.Pick
	if st.Payload != nil && !st.Failed {
		all = st.Payload.Picks
	}
	sortKey := ParseSortKey(string(st.Sort))

	vm := PicksViewModel{
		HeaderText:   picksHeader(vc, st, len(all)),
		Status:       st.Status,
		IndexStatus:  st.IndexStatus,
		ShowControls: len(all) > 0,
		Books:        BookOptions(all, st.Books),
		Markets:      MarketOptions(all, st.Markets),
		Sort:         sortKey,
		Total:        len(all),
		Slates:       []SlateView{},
	}
	if st.Failed && vm.Status == "" {
		vm.Status = StatusFeedFailed
		if st.ArchiveDate != "" {
			vm.Status = StatusDateFailed
		}
	}

	if len(all) == 0 {
		if vc.IsArchive() || st.ArchiveDate != "" {
			es := NoPicksAvailable
			vm.Empty = &es
		} else {
			vm.OffseasonHero = true
		}
		return vm
	}

	filtered := ApplyFilters(all, st.Books, st.Markets, sortKey)
	vm.Shown = len(filtered)
	vm.SummaryText = "Showing " + strconv.Itoa(len(filtered)) + " of " + strconv.Itoa(len(all)) + " picks"
	if len(filtered) == 0 {
		es := NoPicksMatch
		vm.Empty = &es
		return vm
	}

	slates := GroupSlates(filtered, st.Group)
	vm.ShowSlateHeaders = ShowSlateHeaders(slates)
	for _, s := range slates {
		sv := SlateView{Key: s.Key, Label: s.Label, Games: make([]GameView, 0, len(s.Games))}
		for _, g := range s.Games {
			gv := GameView{Key: g.Key, Matchup: gameMatchup(g), Cards: make([]PickCard, 0, len(g.Picks))}
			for i := range g.Picks {
				gv.Cards = append(gv.Cards, BuildPickCard(&g.Picks[i]))
			}
			sv.Games = append(sv.Games, gv)
		}
		vm.Slates = append(vm.Slates, sv)
	}
	return vm
}

func picksHeader(vc domain.ViewContext, st PicksState, n int) string {
	if st.ArchiveDate != "" {
		return FormatFullDate(st.ArchiveDate) + headerSep + strconv.Itoa(n) + " picks" + headerSep + vc.Season + " Archive"
	}
	if st.Failed {
		return "Feed unavailable"
	}
	var parts []string
	if p := st.Payload; p != nil {
		if p.Date != "" {
			parts = append(parts, FormatFullDate(p.Date))
		}
		if n > 0 {
			parts = append(parts, strconv.Itoa(n)+" picks")
		}
		if p.GeneratedAt != "" {
			parts = append(parts, "Updated "+FormatTimestamp(p.GeneratedAt, vc.Loc()))
		}
	}
	if len(parts) == 0 {
		return "Season starts soon"
	}
	return strings.Join(parts, headerSep)
}

func gameMatchup(g GameGroup) string {
	switch {
	case g.AwayTeam != "" && g.HomeTeam != "":
		return NormalizeTeamCode(g.AwayTeam) + " at " + NormalizeTeamCode(g.HomeTeam)
	case g.HomeTeam != "":
		return NormalizeTeamCode(g.HomeTeam)
	default:
		return NormalizeTeamCode(g.AwayTeam)
	}
}

// BuildPickCard renders one pick.
func BuildPickCard(p *domain.Pick) PickCard {
	c := PickCard{
		Player:      p.Player,
		Initials:    PlayerInitials(p.Player),
		HeadshotURL: HeadshotURL(p.PlayerID),
		Role:        "Starting Pitcher",
		Direction:   string(p.Direction),
		LineText:    FormatNumber(p.Line),
		Market:      p.Market,
		Stars:       p.Stars,
		PriceText:   FormatPrice(p.BestPrice),
	}
	if p.Category == "batter" {
		c.Role = "Batter"
	}
	c.DirectionClass = "under"
	if p.Direction == domain.Over {
		c.DirectionClass = "over"
	}

	opp := NormalizeTeamCode(p.Opponent)
	if team := PlayerTeamCode(p); opp != "" && team != "" {
		c.Matchup = &Matchup{
			PlayerTeam:   team,
			PlayerLogo:   TeamLogoURL(team),
			Opponent:     opp,
			OpponentLogo: TeamLogoURL(opp),
		}
	}

	if p.BestBook != "" || p.BestPrice != nil {
		c.ShowBook = true
	}
	if p.BestBook != "" {
		key := NormalizeKey(p.BestBook)
		c.BookColor = BookColor(key)
		if b, ok := books[key]; ok {
			c.BookName = b.Name
		} else {
			c.BookName = strings.TrimSpace(p.BestBook)
		}
	}

	if p.Result != "" {
		o := &Outcome{
			Text:  strings.ToUpper(string(p.Result)),
			Class: "pick-outcome " + string(p.Result),
		}
		if p.Actual != nil {
			o.ActualText = "Actual: " + FormatNumber(*p.Actual)
		}
		if p.PnL != nil {
			o.PnLText = FormatPnL(p.PnL)
			o.PnLClass = StrictPnLClass(p.PnL)
		}
		c.Outcome = o
	}
	return c
}
