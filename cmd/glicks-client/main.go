package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"glicks/internal/config"
	"glicks/internal/dashboard"
	"glicks/internal/domain"
	"glicks/internal/source"
	"glicks/internal/store"
	"glicks/internal/util"
)

const (
	viewerID      = "tui"
	loadTimeout   = 20 * time.Second
	refreshPeriod = 2 * time.Minute
)

type page int

const (
	pagePicks page = iota
	pageResults
)

// Messages. Every load result carries the sequence number the session
// issued for it so late responses are discarded.
type tickMsg time.Time

type picksLoadedMsg struct {
	seq     uint64
	date    string
	payload *domain.PicksPayload
	err     error
}

type indexLoadedMsg struct {
	seq     uint64
	payload *domain.DateIndexPayload
	err     error
}

type resultsLoadedMsg struct {
	seq     uint64
	payload *domain.ResultsPayload
	err     error
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshPeriod, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model.
type model struct {
	provider source.Provider
	sessions store.SessionStore // nil when no SQLite path is configured
	sess     *dashboard.Session
	seasons  []string
	logger   *slog.Logger

	page          page
	viewDate      string // archived date being viewed; "" for today's feed
	marketFilters bool   // number keys toggle markets instead of books

	viewport      viewport.Model
	ready         bool
	width, height int
}

func initialModel(provider source.Provider, sessions store.SessionStore, sess *dashboard.Session, seasons []string, logger *slog.Logger) model {
	return model{
		provider: provider,
		sessions: sessions,
		sess:     sess,
		seasons:  seasons,
		logger:   logger,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.reloadAll())
}

// reloadAll starts picks, index and results loads for the viewed season.
func (m *model) reloadAll() tea.Cmd {
	return tea.Batch(m.loadPicks(m.viewDate), m.loadIndex(), m.loadResults())
}

func (m *model) loadPicks(date string) tea.Cmd {
	seq := m.sess.BeginLoad(dashboard.LoadPicks)
	vc := m.sess.Context()
	p := m.provider
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		var (
			payload *domain.PicksPayload
			err     error
		)
		if date == "" {
			payload, err = p.TodayPicks(ctx, vc)
		} else {
			payload, err = p.PicksForDate(ctx, vc, date)
		}
		return picksLoadedMsg{seq: seq, date: date, payload: payload, err: err}
	}
}

func (m *model) loadIndex() tea.Cmd {
	seq := m.sess.BeginLoad(dashboard.LoadIndex)
	vc := m.sess.Context()
	p := m.provider
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		payload, err := p.DateIndex(ctx, vc)
		if errors.Is(err, source.ErrNotFound) {
			payload, err = nil, nil
		}
		return indexLoadedMsg{seq: seq, payload: payload, err: err}
	}
}

func (m *model) loadResults() tea.Cmd {
	seq := m.sess.BeginLoad(dashboard.LoadResults)
	vc := m.sess.Context()
	p := m.provider
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		payload, err := p.Results(ctx, vc)
		return resultsLoadedMsg{seq: seq, payload: payload, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.saveSession()
			return m, tea.Quit
		case "tab":
			if m.page == pagePicks {
				m.page = pageResults
			} else {
				m.page = pagePicks
			}
			m.refresh(true)
			return m, nil
		case "s":
			m.sess.CycleSort()
			m.refresh(false)
			return m, nil
		case "f":
			m.marketFilters = !m.marketFilters
			m.refresh(false)
			return m, nil
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			m.toggleFilter(int(msg.String()[0] - '1'))
			m.refresh(false)
			return m, nil
		case "[", "]":
			delta := -1
			if msg.String() == "]" {
				delta = 1
			}
			return m, m.switchSeason(delta)
		case "<", ">":
			delta := -1
			if msg.String() == ">" {
				delta = 1
			}
			if m.sess.ShiftMonth(delta) {
				m.refresh(false)
			}
			return m, nil
		case "left", "right":
			delta := -1
			if msg.String() == "right" {
				delta = 1
			}
			return m, m.navigateDate(delta)
		case "home":
			if m.viewDate != "" {
				m.viewDate = ""
				return m, m.loadPicks("")
			}
			return m, nil
		case "r":
			return m, m.reloadAll()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		headerH := 1
		footerH := 1
		vpHeight := m.height - headerH - footerH
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.MouseWheelEnabled = true
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.refresh(false)
		return m, nil

	case tickMsg:
		if m.viewDate == "" && !m.sess.Context().IsArchive() {
			return m, tea.Batch(tickCmd(), m.loadPicks(""))
		}
		return m, tickCmd()

	case picksLoadedMsg:
		if msg.err != nil {
			m.logger.Warn("loading picks", "season", m.sess.Context().Season, "date", msg.date, "error", msg.err)
		}
		if m.sess.ApplyPicks(msg.seq, msg.date, msg.payload, msg.err) {
			m.refresh(true)
		}
		return m, nil

	case indexLoadedMsg:
		if msg.err != nil {
			m.logger.Warn("loading date index", "season", m.sess.Context().Season, "error", msg.err)
		}
		if m.sess.ApplyIndex(msg.seq, msg.payload, msg.err) {
			m.refresh(false)
		}
		return m, nil

	case resultsLoadedMsg:
		if msg.err != nil {
			m.logger.Warn("loading results", "season", m.sess.Context().Season, "error", msg.err)
		}
		if m.sess.ApplyResults(msg.seq, msg.payload, msg.err) {
			m.refresh(false)
		}
		return m, nil
	}

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

// refresh re-renders the viewport content, scrolling to the top when top is
// set.
func (m *model) refresh(top bool) {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderContent())
	if top {
		m.viewport.GotoTop()
	}
}

// toggleFilter flips the i-th book or market checkbox of the current view.
func (m *model) toggleFilter(i int) {
	vm := m.sess.View()
	opts := vm.Books
	if m.marketFilters {
		opts = vm.Markets
	}
	if i < 0 || i >= len(opts) {
		return
	}
	if m.marketFilters {
		m.sess.ToggleMarket(opts[i].Key)
	} else {
		m.sess.ToggleBook(opts[i].Key)
	}
}

// switchSeason moves delta seasons through the configured list and reloads
// everything. Filter selections carry over.
func (m *model) switchSeason(delta int) tea.Cmd {
	cur := 0
	for i, s := range m.seasons {
		if s == m.sess.Context().Season {
			cur = i
		}
	}
	next := cur + delta
	if next < 0 || next >= len(m.seasons) {
		return nil
	}
	m.sess.SetSeason(m.seasons[next])
	m.viewDate = ""
	m.refresh(true)
	return m.reloadAll()
}

// navigateDate selects the previous or next indexed date and loads its
// picks. From today's feed, left opens the latest indexed date.
func (m *model) navigateDate(delta int) tea.Cmd {
	ix := m.sess.Index()
	if ix == nil {
		return nil
	}
	cur := len(ix.Dates)
	for i, d := range ix.Dates {
		if d.Date == m.viewDate {
			cur = i
		}
	}
	for next := cur + delta; next >= 0 && next < len(ix.Dates); next += delta {
		date := ix.Dates[next].Date
		if m.sess.SelectDate(date) {
			m.viewDate = date
			return m.loadPicks(date)
		}
	}
	return nil
}

func (m *model) saveSession() {
	if m.sessions == nil {
		return
	}
	books, markets, sortKey := m.sess.Selections()
	err := m.sessions.SaveSession(context.Background(), &store.SavedSession{
		Viewer:  viewerID,
		Season:  m.sess.Context().Season,
		Sort:    string(sortKey),
		Books:   books,
		Markets: markets,
	})
	if err != nil {
		m.logger.Warn("saving session", "error", err)
	}
}

func main() {
	cfgPath := "config/glicks.yaml"
	if p := os.Getenv("GLICKS_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if errors.Is(err, os.ErrNotExist) {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// The UI owns stdout, so logs go to a file.
	logFileName := fmt.Sprintf("/tmp/glicks-client-%s.log", time.Now().Format("2006-01-02"))
	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Fatalf("opening log file: %v", err)
	}
	defer logFile.Close()
	logger := util.NewLoggerTo(logFile, cfg.Logging.Level, "text")
	util.SetDefault(logger)

	ctx := context.Background()
	provider, closeProvider, err := source.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("opening source: %v", err)
	}
	defer closeProvider()

	vc := domain.NewViewContext(cfg.Seasons.Current, cfg.Seasons.Current, util.LoadLocation(cfg.Seasons.TimeZone))
	sess := dashboard.NewSession(vc, dashboard.GroupOptions{SplitDoubleheaders: cfg.Display.SplitDoubleheaders})

	var sessions store.SessionStore
	if cfg.Storage.SQLitePath != "" {
		sqlite, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("opening session store: %v", err)
		}
		defer sqlite.Close()
		sessions = sqlite

		saved, err := sqlite.LoadSession(ctx, viewerID)
		switch {
		case err == nil:
			if cfg.HasSeason(saved.Season) {
				sess.SetSeason(saved.Season)
			}
			sess.RestoreSelections(saved.Books, saved.Markets, dashboard.ParseSortKey(saved.Sort))
			logger.Info("session restored", "season", saved.Season, "updated", saved.UpdatedAt)
		case !errors.Is(err, store.ErrNotFound):
			logger.Warn("loading session", "error", err)
		}
	}

	p := tea.NewProgram(
		initialModel(provider, sessions, sess, cfg.AllSeasons(), logger),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
