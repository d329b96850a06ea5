package dashboard

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"glicks/internal/domain"
)

// Selection maps a filter key to whether it is enabled. An empty Selection
// means no filter has been initialized and everything passes; a non-empty
// Selection with every key false lets nothing pass.
type Selection map[string]bool

// Clone returns an independent copy of s.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// AnyEnabled reports whether at least one key is enabled.
func (s Selection) AnyEnabled() bool {
	for _, v := range s {
		if v {
			return true
		}
	}
	return false
}

// NormalizeKey trims and lower-cases a sportsbook key.
func NormalizeKey(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func bookKey(p *domain.Pick) string   { return NormalizeKey(p.BestBook) }
func marketKey(p *domain.Pick) string { return p.Market }

// SyncSelection reconciles a sportsbook selection with picks. Every book
// present in picks keeps its previous flag or defaults to enabled; books no
// longer present are dropped.
func SyncSelection(picks []domain.Pick, prev Selection) Selection {
	return syncKeys(picks, prev, bookKey)
}

// SyncMarketSelection is SyncSelection keyed by the exact market name.
func SyncMarketSelection(picks []domain.Pick, prev Selection) Selection {
	return syncKeys(picks, prev, marketKey)
}

func syncKeys(picks []domain.Pick, prev Selection, key func(*domain.Pick) string) Selection {
	next := make(Selection)
	for i := range picks {
		k := key(&picks[i])
		if k == "" {
			continue
		}
		if _, done := next[k]; done {
			continue
		}
		if v, ok := prev[k]; ok {
			next[k] = v
		} else {
			next[k] = true
		}
	}
	return next
}

// FilteredPicks applies a sportsbook selection. The result is always a new
// slice.
func FilteredPicks(picks []domain.Pick, sel Selection) []domain.Pick {
	return filterKeys(picks, sel, bookKey)
}

// FilterByMarket applies a market selection.
func FilterByMarket(picks []domain.Pick, sel Selection) []domain.Pick {
	return filterKeys(picks, sel, marketKey)
}

func filterKeys(picks []domain.Pick, sel Selection, key func(*domain.Pick) string) []domain.Pick {
	if len(picks) == 0 {
		return []domain.Pick{}
	}
	if len(sel) == 0 {
		return append([]domain.Pick(nil), picks...)
	}
	if !sel.AnyEnabled() {
		return []domain.Pick{}
	}
	out := make([]domain.Pick, 0, len(picks))
	for i := range picks {
		if sel[key(&picks[i])] {
			out = append(out, picks[i])
		}
	}
	return out
}

// SortKey selects the pick list ordering.
type SortKey string

const (
	SortMarket    SortKey = "market"
	SortPlayer    SortKey = "player"
	SortDirection SortKey = "direction"
)

// ParseSortKey maps user input to a SortKey, defaulting to SortMarket.
func ParseSortKey(s string) SortKey {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case SortPlayer:
		return SortPlayer
	case SortDirection:
		return SortDirection
	default:
		return SortMarket
	}
}

// Next cycles market, player, direction.
func (k SortKey) Next() SortKey {
	switch k {
	case SortMarket:
		return SortPlayer
	case SortPlayer:
		return SortDirection
	default:
		return SortMarket
	}
}

// SortPicks returns a stably sorted copy of picks. Market and player
// orderings use English collation; direction puts OVER first.
func SortPicks(picks []domain.Pick, key SortKey) []domain.Pick {
	out := append([]domain.Pick(nil), picks...)
	switch key {
	case SortDirection:
		rank := func(p *domain.Pick) int {
			if p.Direction == domain.Over {
				return 0
			}
			return 1
		}
		sort.SliceStable(out, func(i, j int) bool { return rank(&out[i]) < rank(&out[j]) })
	case SortPlayer:
		c := collate.New(language.English)
		sort.SliceStable(out, func(i, j int) bool { return c.CompareString(out[i].Player, out[j].Player) < 0 })
	default:
		c := collate.New(language.English)
		sort.SliceStable(out, func(i, j int) bool { return c.CompareString(out[i].Market, out[j].Market) < 0 })
	}
	return out
}

// ApplyFilters runs the book filter, then the market filter, then sorts.
func ApplyFilters(picks []domain.Pick, books, markets Selection, key SortKey) []domain.Pick {
	return SortPicks(FilterByMarket(FilteredPicks(picks, books), markets), key)
}

// FilterOption is one checkbox of a filter panel.
type FilterOption struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Color   string `json:"color,omitempty"`
	Count   int    `json:"count"`
	Checked bool   `json:"checked"`
}

// BookOptions lists every sportsbook present in picks, sorted by display
// name. It is empty when no pick names a book, which hides the panel.
func BookOptions(picks []domain.Pick, sel Selection) []FilterOption {
	counts := countKeys(picks, bookKey)
	opts := make([]FilterOption, 0, len(counts))
	for key, n := range counts {
		b := LookupBook(key)
		checked := sel[key] || len(sel) == 0
		opts = append(opts, FilterOption{Key: key, Label: b.Name, Color: b.Color, Count: n, Checked: checked})
	}
	c := collate.New(language.English)
	sort.Slice(opts, func(i, j int) bool {
		if cmp := c.CompareString(opts[i].Label, opts[j].Label); cmp != 0 {
			return cmp < 0
		}
		return opts[i].Key < opts[j].Key
	})
	return opts
}

// MarketOptions lists every market present in picks, sorted by name. It
// returns nil when there are fewer than two markets, unless one of them is
// disabled in sel, so a hidden panel never hides the only way back.
func MarketOptions(picks []domain.Pick, sel Selection) []FilterOption {
	counts := countKeys(picks, marketKey)
	if len(counts) == 0 {
		return nil
	}
	if len(counts) == 1 {
		disabled := false
		for m := range counts {
			if on, ok := sel[m]; ok && !on {
				disabled = true
			}
		}
		if !disabled {
			return nil
		}
	}
	opts := make([]FilterOption, 0, len(counts))
	for m, n := range counts {
		checked, ok := sel[m]
		if !ok {
			checked = true
		}
		opts = append(opts, FilterOption{Key: m, Label: m, Count: n, Checked: checked})
	}
	sort.Slice(opts, func(i, j int) bool { return opts[i].Key < opts[j].Key })
	return opts
}

func countKeys(picks []domain.Pick, key func(*domain.Pick) string) map[string]int {
	counts := make(map[string]int)
	for i := range picks {
		if k := key(&picks[i]); k != "" {
			counts[k]++
		}
	}
	return counts
}
