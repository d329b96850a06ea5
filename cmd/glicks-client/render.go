package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"glicks/internal/dashboard"
)

// Styles.
var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6"))
	archiveStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("3")) // black on yellow
	slateStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	gameStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	playerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	starStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	overStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	underStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	gainStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	colHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	selectedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("15"))
	emptyStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	warnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
)

// classStyle maps a view-model sign class to a style.
func classStyle(class string) lipgloss.Style {
	switch {
	case strings.Contains(class, "positive"), strings.HasSuffix(class, "win"):
		return gainStyle
	case strings.Contains(class, "negative"), strings.HasSuffix(class, "loss"):
		return lossStyle
	default:
		return dimStyle
	}
}

// densityStyle shades a calendar day by its alpha on the 256-color grey ramp.
func densityStyle(alpha float64) lipgloss.Style {
	grey := 236 + int(alpha*18)
	return lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color(fmt.Sprintf("%d", grey)))
}

func (m model) View() string {
	if !m.ready {
		return "loading..."
	}
	return m.headerView() + "\n" + m.viewport.View() + "\n" + m.footerView()
}

func (m model) headerView() string {
	vc := m.sess.Context()
	label := titleStyle.Render(fmt.Sprintf(" glicks %s ", vc.Season))
	if vc.IsArchive() {
		label = archiveStyle.Render(fmt.Sprintf(" glicks %s archive ", vc.Season))
	}
	page := "Picks"
	if m.page == pageResults {
		page = "Results"
	}
	return label + " " + page + "  " + dimStyle.Render(m.sess.View().HeaderText)
}

func (m model) footerView() string {
	target := "books"
	if m.marketFilters {
		target = "markets"
	}
	return dimStyle.Render(fmt.Sprintf(
		"tab page  ←/→ date  </> month  [/] season  1-9 toggle %s  f filters  s sort  home today  r reload  q quit",
		target))
}

func (m model) renderContent() string {
	if m.page == pageResults {
		vm, ok := m.sess.Results()
		return renderResults(vm, ok)
	}
	var b strings.Builder
	renderCalendar(&b, m.sess.Calendar())
	renderPicks(&b, m.sess.View(), m.marketFilters)
	return b.String()
}

// ---------------------------------------------------------------------------
// Picks page
// ---------------------------------------------------------------------------

func renderCalendar(b *strings.Builder, cal dashboard.CalendarMonth) {
	if len(cal.Days) == 0 {
		return
	}
	prev, next := " ", " "
	if cal.CanPrev {
		prev = "<"
	}
	if cal.CanNext {
		next = ">"
	}
	fmt.Fprintf(b, "%s %s %s\n", prev, gameStyle.Render(cal.Label), next)
	b.WriteString(colHeaderStyle.Render(" Su  Mo  Tu  We  Th  Fr  Sa") + "\n")

	line := strings.Repeat("    ", cal.LeadingBlanks)
	col := cal.LeadingBlanks
	for _, d := range cal.Days {
		cell := fmt.Sprintf(" %2d ", d.Day)
		switch {
		case d.Selected:
			cell = selectedStyle.Render(cell)
		case d.IsAvailable:
			cell = densityStyle(d.Alpha).Render(cell)
		default:
			cell = dimStyle.Render(cell)
		}
		line += cell
		col++
		if col == 7 {
			b.WriteString(line + "\n")
			line, col = "", 0
		}
	}
	if col > 0 {
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
}

func renderFilters(b *strings.Builder, label string, opts []dashboard.FilterOption, active bool) {
	if len(opts) == 0 {
		return
	}
	head := colHeaderStyle.Render(label + ":")
	if active {
		head = playerStyle.Render(label + ":")
	}
	b.WriteString(head)
	for i, o := range opts {
		box := "[ ]"
		if o.Checked {
			box = "[x]"
		}
		name := o.Label
		if o.Color != "" {
			name = lipgloss.NewStyle().Foreground(lipgloss.Color(o.Color)).Render(name)
		}
		if i < 9 && active {
			fmt.Fprintf(b, "  %d%s %s (%d)", i+1, box, name, o.Count)
		} else {
			fmt.Fprintf(b, "  %s %s (%d)", box, name, o.Count)
		}
	}
	b.WriteString("\n")
}

func renderPicks(b *strings.Builder, vm dashboard.PicksViewModel, marketFilters bool) {
	if vm.Status != "" {
		b.WriteString(warnStyle.Render(vm.Status) + "\n")
	}
	if vm.IndexStatus != "" {
		b.WriteString(warnStyle.Render(vm.IndexStatus) + "\n")
	}
	if vm.Status != "" || vm.IndexStatus != "" {
		b.WriteString("\n")
	}
	if vm.ShowControls {
		renderFilters(b, "Books", vm.Books, !marketFilters)
		renderFilters(b, "Markets", vm.Markets, marketFilters)
		fmt.Fprintf(b, "%s  %s\n\n", dimStyle.Render("sort: "+string(vm.Sort)), vm.SummaryText)
	}
	if vm.OffseasonHero {
		b.WriteString(emptyStyle.Render("Season starts soon") + "\n")
		b.WriteString(dimStyle.Render("Picks return on opening day. Switch seasons with [ and ] to browse the archive.") + "\n")
		return
	}
	if vm.Empty != nil {
		b.WriteString(emptyStyle.Render(vm.Empty.Title) + "\n")
		b.WriteString(dimStyle.Render(vm.Empty.Message) + "\n")
		return
	}

	for _, slate := range vm.Slates {
		if vm.ShowSlateHeaders && slate.Label != "" {
			b.WriteString(slateStyle.Render("── "+slate.Label+" ──") + "\n")
		}
		for _, g := range slate.Games {
			if g.Matchup != "" {
				b.WriteString(gameStyle.Render(g.Matchup) + "\n")
			}
			for i := range g.Cards {
				renderCard(b, &g.Cards[i])
			}
			b.WriteString("\n")
		}
	}
}

func renderCard(b *strings.Builder, c *dashboard.PickCard) {
	dir := overStyle
	if c.Direction == "UNDER" {
		dir = underStyle
	}
	n := min(max(c.Stars, 0), 3)
	stars := starStyle.Render(strings.Repeat("★", n)) + dimStyle.Render(strings.Repeat("☆", 3-n))
	fmt.Fprintf(b, "  %s %-24s %s %s %s",
		stars,
		playerStyle.Render(c.Player),
		dimStyle.Render(fmt.Sprintf("%-16s", c.Role)),
		dir.Render(c.Direction+" "+c.LineText),
		c.Market,
	)
	if c.Matchup != nil {
		fmt.Fprintf(b, "  %s", dimStyle.Render(c.Matchup.PlayerTeam+" vs "+c.Matchup.Opponent))
	}
	if c.ShowBook {
		book := c.BookName
		if c.BookColor != "" {
			book = lipgloss.NewStyle().Foreground(lipgloss.Color(c.BookColor)).Render(book)
		}
		fmt.Fprintf(b, "  %s %s", c.PriceText, book)
	}
	if o := c.Outcome; o != nil {
		fmt.Fprintf(b, "  %s", classStyle(o.Class).Render(o.Text))
		if o.ActualText != "" {
			fmt.Fprintf(b, " %s", dimStyle.Render(o.ActualText))
		}
		if o.PnLText != "" {
			fmt.Fprintf(b, " %s", classStyle(o.PnLClass).Render(o.PnLText))
		}
	}
	b.WriteString("\n")
}

// ---------------------------------------------------------------------------
// Results page
// ---------------------------------------------------------------------------

func renderResults(vm dashboard.ResultsViewModel, ok bool) string {
	var b strings.Builder
	if !ok || !vm.Available {
		es := dashboard.ResultsUnavailable
		b.WriteString(emptyStyle.Render(es.Title) + "\n" + dimStyle.Render(es.Message) + "\n")
		return b.String()
	}
	b.WriteString(dimStyle.Render(vm.GeneratedAtText) + "\n\n")
	if vm.WarningText != "" {
		b.WriteString(warnStyle.Render(vm.WarningText) + "\n\n")
	}

	fmt.Fprintf(&b, "Record %s   Win rate %s   P&L %s   ROI %s\n",
		playerStyle.Render(vm.Record),
		vm.WinRateText,
		classStyle(vm.PnLClass).Render(vm.PnLText),
		classStyle(vm.ROIClass).Render(vm.ROIText),
	)
	if vm.Empty && vm.EmptyState != nil {
		b.WriteString("\n" + emptyStyle.Render(vm.EmptyState.Title) + "\n" + dimStyle.Render(vm.EmptyState.Message) + "\n")
		return b.String()
	}

	var stats []string
	add := func(label string, st *dashboard.StatText) {
		if st != nil {
			stats = append(stats, label+" "+classStyle(st.Class).Render(st.Text))
		}
	}
	add("Bet ROI", vm.BetROI)
	add("Flat", vm.FlatReturn)
	add("2%", vm.PctReturn)
	add("Flat DD", vm.FlatDrawdown)
	add("2% DD", vm.PctDrawdown)
	if len(stats) > 0 {
		b.WriteString(strings.Join(stats, "   ") + "\n")
	}
	if vm.StreakText != "" {
		b.WriteString(vm.StreakText + "\n")
	}
	if vm.BankrollText != "" {
		b.WriteString(dimStyle.Render(vm.BankrollText) + "\n")
	}
	b.WriteString(dimStyle.Render(vm.ChartSummary) + "\n\n")

	if len(vm.Markets) > 0 {
		b.WriteString(colHeaderStyle.Render(fmt.Sprintf("%-22s %5s %-10s %7s %10s %8s", "Market", "Bets", "Record", "Win%", "P&L", "ROI")) + "\n")
		for _, r := range vm.Markets {
			fmt.Fprintf(&b, "%-22s %5d %-10s %7s %s %s\n",
				r.Market, r.Bets, r.Record, r.WinRate,
				classStyle(r.PnLClass).Render(fmt.Sprintf("%10s", r.PnLText)),
				classStyle(r.ROIClass).Render(fmt.Sprintf("%8s", r.ROIText)),
			)
		}
		b.WriteString("\n")
	}

	if len(vm.Directions) > 0 {
		b.WriteString(colHeaderStyle.Render(fmt.Sprintf("%-10s %5s %7s %8s", "Side", "Bets", "Win%", "ROI")) + "\n")
		for _, r := range vm.Directions {
			fmt.Fprintf(&b, "%-10s %5d %7s %s\n", r.Direction, r.Bets, r.WinRate,
				classStyle(r.ROIClass).Render(fmt.Sprintf("%8s", r.ROIText)))
		}
		b.WriteString("\n")
	}

	if len(vm.Recent) > 0 {
		b.WriteString(colHeaderStyle.Render(fmt.Sprintf("%-8s %-24s %-28s %-6s %7s %9s", "Date", "Player", "Pick", "Result", "Actual", "P&L")) + "\n")
		for _, r := range vm.Recent {
			fmt.Fprintf(&b, "%-8s %-24s %-28s %s %7s %s\n",
				r.DateText, r.Player, r.PickText,
				classStyle(r.Result).Render(fmt.Sprintf("%-6s", r.Result)),
				r.ActualText,
				classStyle(r.PnLClass).Render(fmt.Sprintf("%9s", r.PnLText)),
			)
		}
		if vm.RecentTruncated {
			b.WriteString(dimStyle.Render(fmt.Sprintf("showing the latest %d graded picks", dashboard.MaxRecentRows)) + "\n")
		}
	}
	return b.String()
}
