package dashboard

import (
	"reflect"
	"testing"

	"glicks/internal/domain"
)

func bookPicks(books ...string) []domain.Pick {
	out := make([]domain.Pick, len(books))
	for i, b := range books {
		out[i] = domain.Pick{Player: b + "-player", BestBook: b, Market: "Strikeouts", Direction: domain.Over, Stars: 1}
	}
	return out
}

func TestSyncSelection(t *testing.T) {
	picks := bookPicks("DraftKings", "FANDUEL", "draftkings")
	got := SyncSelection(picks, Selection{"draftkings": false, "oldbook": true})
	want := Selection{"draftkings": false, "fanduel": true}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SyncSelection = %v, want %v", got, want)
	}
}

func TestSyncSelectionSkipsBlankBooks(t *testing.T) {
	picks := bookPicks("", "  ", "BetMGM")
	got := SyncSelection(picks, nil)
	want := Selection{"betmgm": true}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SyncSelection = %v, want %v", got, want)
	}
}

func TestSyncSelectionIdempotent(t *testing.T) {
	picks := bookPicks("DraftKings", "FanDuel", "BetMGM", "draftkings")
	once := SyncSelection(picks, Selection{})
	twice := SyncSelection(picks, SyncSelection(picks, Selection{}))
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("sync twice = %v, once = %v", twice, once)
	}
	if !reflect.DeepEqual(FilteredPicks(picks, once), FilteredPicks(picks, twice)) {
		t.Error("filtering differs after syncing twice")
	}
}

func TestFilteredPicks(t *testing.T) {
	picks := bookPicks("DraftKings", "FanDuel", "BetMGM")

	if got := FilteredPicks(picks, Selection{}); len(got) != 3 {
		t.Errorf("empty selection: got %d picks, want 3", len(got))
	}
	if got := FilteredPicks(nil, Selection{"draftkings": true}); got == nil || len(got) != 0 {
		t.Errorf("no picks: got %v, want empty non-nil", got)
	}

	allOff := Selection{"draftkings": false, "fanduel": false, "betmgm": false}
	if got := FilteredPicks(picks, allOff); len(got) != 0 {
		t.Errorf("all off: got %d picks, want 0", len(got))
	}

	got := FilteredPicks(picks, Selection{"draftkings": true, "fanduel": false, "betmgm": true})
	if len(got) != 2 || got[0].BestBook != "DraftKings" || got[1].BestBook != "BetMGM" {
		t.Errorf("partial: got %+v", got)
	}

	// The result never aliases the input.
	all := FilteredPicks(picks, Selection{})
	all[0].Player = "changed"
	if picks[0].Player == "changed" {
		t.Error("FilteredPicks returned the input slice")
	}
}

func TestFilterByMarket(t *testing.T) {
	picks := []domain.Pick{
		{Player: "a", Market: "Strikeouts"},
		{Player: "b", Market: "Hits"},
		{Player: "c", Market: "strikeouts"},
	}
	got := FilterByMarket(picks, Selection{"Strikeouts": true, "Hits": false})
	if len(got) != 1 || got[0].Player != "a" {
		t.Errorf("FilterByMarket = %+v, want only a", got)
	}
	sel := SyncMarketSelection(picks, nil)
	if len(sel) != 3 {
		t.Errorf("SyncMarketSelection keys = %v, want 3 exact-case keys", sel)
	}
}

func TestSortPicks(t *testing.T) {
	picks := []domain.Pick{
		{Player: "Judge, Aaron", Market: "Total Bases", Direction: domain.Under},
		{Player: "Alonso, Pete", Market: "Hits", Direction: domain.Over},
		{Player: "betts, Mookie", Market: "Hits", Direction: domain.Under},
		{Player: "Cole, Gerrit", Market: "Strikeouts", Direction: domain.Over},
	}

	byMarket := SortPicks(picks, SortMarket)
	wantMarket := []string{"Alonso, Pete", "betts, Mookie", "Cole, Gerrit", "Judge, Aaron"}
	for i, w := range wantMarket {
		if byMarket[i].Player != w {
			t.Errorf("market sort [%d] = %q, want %q", i, byMarket[i].Player, w)
		}
	}

	byPlayer := SortPicks(picks, SortPlayer)
	wantPlayer := []string{"Alonso, Pete", "betts, Mookie", "Cole, Gerrit", "Judge, Aaron"}
	for i, w := range wantPlayer {
		if byPlayer[i].Player != w {
			t.Errorf("player sort [%d] = %q, want %q", i, byPlayer[i].Player, w)
		}
	}

	byDir := SortPicks(picks, SortDirection)
	wantDir := []string{"Alonso, Pete", "Cole, Gerrit", "Judge, Aaron", "betts, Mookie"}
	for i, w := range wantDir {
		if byDir[i].Player != w {
			t.Errorf("direction sort [%d] = %q, want %q", i, byDir[i].Player, w)
		}
	}

	if picks[0].Player != "Judge, Aaron" {
		t.Error("SortPicks mutated its input")
	}
}

func TestSortKey(t *testing.T) {
	if ParseSortKey(" Player ") != SortPlayer || ParseSortKey("bogus") != SortMarket {
		t.Error("ParseSortKey mapping wrong")
	}
	if SortMarket.Next() != SortPlayer || SortPlayer.Next() != SortDirection || SortDirection.Next() != SortMarket {
		t.Error("Next does not cycle market, player, direction")
	}
}

func TestBookOptions(t *testing.T) {
	picks := bookPicks("FanDuel", "draftkings", "DraftKings", "mystery")
	opts := BookOptions(picks, Selection{"fanduel": false, "draftkings": true, "mystery": true})
	if len(opts) != 3 {
		t.Fatalf("len(opts) = %d, want 3", len(opts))
	}
	if opts[0].Label != "DraftKings" || opts[0].Count != 2 || !opts[0].Checked {
		t.Errorf("opts[0] = %+v", opts[0])
	}
	if opts[1].Label != "FanDuel" || opts[1].Checked {
		t.Errorf("opts[1] = %+v", opts[1])
	}
	if opts[2].Label != "mystery" || opts[2].Color != DefaultBookColor {
		t.Errorf("opts[2] = %+v", opts[2])
	}

	for _, o := range BookOptions(picks, nil) {
		if !o.Checked {
			t.Errorf("uninitialized selection should check %q", o.Key)
		}
	}
	if got := BookOptions(bookPicks(""), nil); len(got) != 0 {
		t.Errorf("no named books: got %v", got)
	}
}

func TestMarketOptions(t *testing.T) {
	one := []domain.Pick{{Market: "Hits"}, {Market: "Hits"}}
	if got := MarketOptions(one, nil); got != nil {
		t.Errorf("single market: got %v, want nil", got)
	}
	got1 := MarketOptions(one, Selection{"Hits": false})
	if len(got1) != 1 || got1[0].Key != "Hits" || got1[0].Checked {
		t.Errorf("single disabled market: got %+v, want one unchecked option", got1)
	}
	two := []domain.Pick{{Market: "Strikeouts"}, {Market: "Hits"}, {Market: "Hits"}}
	got := MarketOptions(two, Selection{"Strikeouts": false})
	if len(got) != 2 || got[0].Key != "Hits" || got[0].Count != 2 || !got[0].Checked || got[1].Checked {
		t.Errorf("MarketOptions = %+v", got)
	}
}

func TestApplyFilters(t *testing.T) {
	picks := []domain.Pick{
		{Player: "a", BestBook: "fanduel", Market: "Hits"},
		{Player: "b", BestBook: "draftkings", Market: "Hits"},
		{Player: "c", BestBook: "draftkings", Market: "Strikeouts"},
	}
	got := ApplyFilters(picks, Selection{"fanduel": false, "draftkings": true}, Selection{"Hits": true, "Strikeouts": false}, SortPlayer)
	if len(got) != 1 || got[0].Player != "b" {
		t.Errorf("ApplyFilters = %+v, want only b", got)
	}
}
