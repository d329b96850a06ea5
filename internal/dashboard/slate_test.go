package dashboard

import (
	"reflect"
	"testing"

	"glicks/internal/domain"
)

func TestParseTimeMinutes(t *testing.T) {
	tests := map[string]int{
		"7:10 PM ET":  19*60 + 10,
		"1:05 pm ET":  13*60 + 5,
		"12:00 AM":    0,
		"12:15 PM ET": 12*60 + 15,
		"11:59AM":     11*60 + 59,
		"":            UnknownMinutes,
		"TBD":         UnknownMinutes,
		"19:10":       UnknownMinutes,
	}
	for in, want := range tests {
		if got := ParseTimeMinutes(in); got != want {
			t.Errorf("ParseTimeMinutes(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestGroupSlatesOrdersByTime(t *testing.T) {
	picks := []domain.Pick{
		{Player: "late", GamePK: "2", GameTime: "7:10 PM ET", Stars: 1},
		{Player: "early", GamePK: "1", GameTime: "1:05 PM ET", Stars: 1},
	}
	slates := GroupSlates(picks, GroupOptions{})
	if len(slates) != 2 {
		t.Fatalf("len(slates) = %d, want 2", len(slates))
	}
	if slates[0].Label != "1:05 PM ET" || slates[1].Label != "7:10 PM ET" {
		t.Errorf("slate order = %q, %q", slates[0].Label, slates[1].Label)
	}
	if !ShowSlateHeaders(slates) {
		t.Error("two slates should show headers")
	}
}

func TestGroupSlatesGamesAndPicks(t *testing.T) {
	picks := []domain.Pick{
		{Player: "a1", GamePK: "A", GameTime: "7:10 PM ET", Stars: 1},
		{Player: "b1", GamePK: "B", GameTime: "7:10 PM ET", Stars: 2},
		{Player: "b2", GamePK: "B", GameTime: "7:10 PM ET", Stars: 3},
		{Player: "a2", GamePK: "A", GameTime: "7:10 PM ET", Stars: 3},
		{Player: "b3", GamePK: "B", GameTime: "7:10 PM ET", Stars: 2},
		{Player: "u1", HomeTeam: "BOS", AwayTeam: "NYY", Stars: 1},
	}
	slates := GroupSlates(picks, GroupOptions{})
	if len(slates) != 2 {
		t.Fatalf("len(slates) = %d, want 2", len(slates))
	}
	if slates[1].Key != UngroupedSlate || slates[1].Minutes != UnknownMinutes {
		t.Errorf("ungrouped slate should sort last, got %+v", slates[1])
	}
	if slates[1].Games[0].Key != "BOS_NYY" {
		t.Errorf("fallback game key = %q, want BOS_NYY", slates[1].Games[0].Key)
	}

	games := slates[0].Games
	if games[0].Key != "B" || games[1].Key != "A" {
		t.Errorf("game order = %s, %s; want B, A", games[0].Key, games[1].Key)
	}
	var names []string
	for _, p := range games[0].Picks {
		names = append(names, p.Player)
	}
	if !reflect.DeepEqual(names, []string{"b2", "b1", "b3"}) {
		t.Errorf("picks in B = %v, want [b2 b1 b3]", names)
	}
}

func TestGroupSlatesDeterministic(t *testing.T) {
	picks := []domain.Pick{
		{Player: "x", GamePK: "1", GameTime: "4:05 PM ET", Stars: 2},
		{Player: "y", GamePK: "2", GameTime: "1:10 PM ET", Stars: 1},
		{Player: "z", GamePK: "1", GameTime: "4:05 PM ET", Stars: 3},
	}
	first := GroupSlates(picks, GroupOptions{})
	second := GroupSlates(picks, GroupOptions{})
	if !reflect.DeepEqual(first, second) {
		t.Error("grouping the same picks twice differs")
	}
}

func TestGroupSlatesTieOrder(t *testing.T) {
	picks := []domain.Pick{
		{Player: "u1", GamePK: "9", Stars: 1},
		{Player: "a1", GamePK: "1", GameTime: "7:10 PM ET", Stars: 1},
		{Player: "t1", GamePK: "5", GameTime: "TBD", Stars: 2},
		{Player: "b1", GamePK: "2", GameTime: "1:05 PM ET", Stars: 1},
		{Player: "c1", GamePK: "3", GameTime: "7:10 PM ET", Stars: 3},
		{Player: "u2", GamePK: "8", Stars: 1},
		{Player: "b2", GamePK: "4", GameTime: "1:05 PM ET", Stars: 1},
	}

	slates := GroupSlates(picks, GroupOptions{})
	var got [][]string
	for _, s := range slates {
		row := []string{s.Key}
		for _, g := range s.Games {
			row = append(row, g.Key)
		}
		got = append(got, row)
	}
	want := [][]string{
		{"1:05 PM ET", "2", "4"},
		{"7:10 PM ET", "1", "3"},
		{UngroupedSlate, "9", "8"},
		{"TBD", "5"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("slates = %v, want %v", got, want)
	}

	// Reversing the input reverses every tie but keeps the time order.
	rev := make([]domain.Pick, len(picks))
	for i, p := range picks {
		rev[len(picks)-1-i] = p
	}
	got = got[:0]
	for _, s := range GroupSlates(rev, GroupOptions{}) {
		row := []string{s.Key}
		for _, g := range s.Games {
			row = append(row, g.Key)
		}
		got = append(got, row)
	}
	want = [][]string{
		{"1:05 PM ET", "4", "2"},
		{"7:10 PM ET", "3", "1"},
		{UngroupedSlate, "8", "9"},
		{"TBD", "5"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("reversed slates = %v, want %v", got, want)
	}
}

func TestGroupSlatesDoubleheader(t *testing.T) {
	picks := []domain.Pick{
		{Player: "g1", HomeTeam: "NYM", AwayTeam: "ATL", GameTime: "1:10 PM ET", Stars: 1},
		{Player: "g2", HomeTeam: "NYM", AwayTeam: "ATL", GameTime: "6:40 PM ET", Stars: 1},
	}

	merged := GroupSlates(picks, GroupOptions{})
	if len(merged) != 1 || len(merged[0].Games) != 1 || len(merged[0].Games[0].Picks) != 2 {
		t.Errorf("default grouping should merge the doubleheader, got %+v", merged)
	}

	split := GroupSlates(picks, GroupOptions{SplitDoubleheaders: true})
	if len(split) != 2 {
		t.Fatalf("split grouping: len(slates) = %d, want 2", len(split))
	}
	if split[0].Games[0].Key != "NYM_ATL@1:10 PM ET" {
		t.Errorf("split key = %q", split[0].Games[0].Key)
	}
}

func TestGameKeyZeroID(t *testing.T) {
	p := domain.Pick{GamePK: "0", HomeTeam: "SEA", AwayTeam: "HOU"}
	if got := GameKey(&p, GroupOptions{}); got != "SEA_HOU" {
		t.Errorf("GameKey = %q, want SEA_HOU", got)
	}
}

func TestShowSlateHeaders(t *testing.T) {
	if ShowSlateHeaders(nil) {
		t.Error("no slates should not show headers")
	}
	if ShowSlateHeaders([]SlateGroup{{Key: UngroupedSlate}}) {
		t.Error("single ungrouped slate should not show headers")
	}
	if !ShowSlateHeaders([]SlateGroup{{Key: "7:10 PM ET"}}) {
		t.Error("single timed slate should show headers")
	}
}
