package dashboard

import (
	"glicks/internal/domain"
)

// LoadKind identifies an independent stream of loads. A newer load of one
// kind does not invalidate an in-flight load of another.
type LoadKind int

const (
	LoadPicks LoadKind = iota
	LoadIndex
	LoadResults
	numLoadKinds
)

// Session holds the mutable page state of one viewer: the loaded picks, the
// filter selections, the sort order, the calendar cursor and the results.
// It is not safe for concurrent use; one goroutine owns it and fetches run
// elsewhere and report back with the sequence number BeginLoad issued.
// Every view is derived from scratch on request.
type Session struct {
	vc    domain.ViewContext
	group GroupOptions

	seq [numLoadKinds]uint64

	picks       *domain.PicksPayload
	picksFailed bool
	status      string
	archiveDate string

	indexStatus string

	books   Selection
	markets Selection
	sortKey SortKey

	index *CalendarIndex

	results       *domain.ResultsPayload
	resultsFailed bool
}

// NewSession returns an empty session viewing vc.
func NewSession(vc domain.ViewContext, group GroupOptions) *Session {
	return &Session{
		vc:      vc,
		group:   group,
		books:   Selection{},
		markets: Selection{},
		sortKey: SortMarket,
	}
}

// Context returns the viewed season context.
func (s *Session) Context() domain.ViewContext { return s.vc }

// SetSeason switches seasons. Loaded data and the calendar are dropped and
// every in-flight load becomes stale; filter selections are kept.
func (s *Session) SetSeason(season string) {
	s.vc = s.vc.WithSeason(season)
	for k := range s.seq {
		s.seq[k]++
	}
	s.picks, s.picksFailed, s.status, s.archiveDate = nil, false, "", ""
	s.index, s.indexStatus = nil, ""
	s.results, s.resultsFailed = nil, false
}

// BeginLoad issues the sequence number for a new load of kind. Only a
// response carrying the latest number is applied.
func (s *Session) BeginLoad(kind LoadKind) uint64 {
	s.seq[kind]++
	return s.seq[kind]
}

func (s *Session) current(kind LoadKind, seq uint64) bool {
	return seq == s.seq[kind]
}

// ApplyPicks installs a picks response. date is the archived date that was
// requested, or "" for the live feed. A failed load installs an empty list.
// Stale responses are ignored and reported as false.
func (s *Session) ApplyPicks(seq uint64, date string, payload *domain.PicksPayload, err error) bool {
	if !s.current(LoadPicks, seq) {
		return false
	}
	s.archiveDate = date
	s.status = ""
	if err != nil {
		s.picks, s.picksFailed = nil, true
		s.status = StatusFeedFailed
		if date != "" {
			s.status = StatusDateFailed
		}
		return true
	}
	s.picks, s.picksFailed = payload, false

	var all []domain.Pick
	if payload != nil {
		all = payload.Picks
	}
	s.books = SyncSelection(all, s.books)
	s.markets = SyncMarketSelection(all, s.markets)
	return true
}

// ApplyIndex installs a date index response and rebuilds the calendar.
func (s *Session) ApplyIndex(seq uint64, payload *domain.DateIndexPayload, err error) bool {
	if !s.current(LoadIndex, seq) {
		return false
	}
	s.indexStatus = ""
	if err != nil {
		s.index = nil
		s.indexStatus = StatusIndexFailed
		return true
	}
	s.index = BuildIndex(payload)
	if s.index == nil {
		s.indexStatus = StatusNoIndex
	}
	return true
}

// ApplyResults installs a results response.
func (s *Session) ApplyResults(seq uint64, payload *domain.ResultsPayload, err error) bool {
	if !s.current(LoadResults, seq) {
		return false
	}
	s.results, s.resultsFailed = payload, err != nil
	if err != nil {
		s.results = nil
	}
	return true
}

// ToggleBook flips a sportsbook filter. Unknown keys are ignored.
func (s *Session) ToggleBook(key string) bool {
	return toggle(s.books, NormalizeKey(key))
}

// ToggleMarket flips a market filter. Unknown markets are ignored.
func (s *Session) ToggleMarket(market string) bool {
	return toggle(s.markets, market)
}

func toggle(sel Selection, key string) bool {
	v, ok := sel[key]
	if !ok {
		return false
	}
	sel[key] = !v
	return true
}

// SetSort changes the pick ordering.
func (s *Session) SetSort(key SortKey) { s.sortKey = ParseSortKey(string(key)) }

// CycleSort advances to the next ordering and returns it.
func (s *Session) CycleSort() SortKey {
	s.sortKey = s.sortKey.Next()
	return s.sortKey
}

// ShiftMonth moves the calendar cursor; see CalendarIndex.ShiftMonth.
func (s *Session) ShiftMonth(delta int) bool { return s.index.ShiftMonth(delta) }

// SelectDate selects an indexed date. The caller loads its picks.
func (s *Session) SelectDate(date string) bool { return s.index.Select(date) }

// Index returns the calendar index, nil when none is loaded.
func (s *Session) Index() *CalendarIndex { return s.index }

// Selections returns copies of the filter selections and the sort order.
func (s *Session) Selections() (books, markets Selection, sort SortKey) {
	return s.books.Clone(), s.markets.Clone(), s.sortKey
}

// RestoreSelections installs saved selections. Keys absent from the next
// load are pruned by the sync that load triggers.
func (s *Session) RestoreSelections(books, markets Selection, sort SortKey) {
	s.books = books.Clone()
	s.markets = markets.Clone()
	s.SetSort(sort)
}

// View derives the picks page.
func (s *Session) View() PicksViewModel {
	return DerivePicksViewModel(s.vc, PicksState{
		Payload:     s.picks,
		Failed:      s.picksFailed,
		Status:      s.status,
		IndexStatus: s.indexStatus,
		ArchiveDate: s.archiveDate,
		Books:       s.books,
		Markets:     s.markets,
		Sort:        s.sortKey,
		Group:       s.group,
	})
}

// Calendar derives the calendar month at the cursor.
func (s *Session) Calendar() CalendarMonth {
	if s.index == nil {
		return s.index.ComputeDays("")
	}
	return s.index.ComputeDays(s.index.SelectedDate)
}

// Results derives the results page. ok is false when the last results load
// failed, in which case the caller shows ResultsUnavailable.
func (s *Session) Results() (vm ResultsViewModel, ok bool) {
	if s.resultsFailed {
		return DeriveResultsViewModel(nil, s.vc), false
	}
	return DeriveResultsViewModel(s.results, s.vc), true
}
