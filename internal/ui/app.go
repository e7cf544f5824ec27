package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/Kamar-Folarin/repostats/internal/models"
	"github.com/Kamar-Folarin/repostats/internal/stats"
)

// App is the interactive leaderboard for one report
type App struct {
	tview       *tview.Application
	header      *tview.TextView
	leaderboard *LeaderboardView
}

// NewApp creates an application showing report, sorted by key
func NewApp(report *models.Report, key stats.SortKey, ascending bool) *App {
	a := &App{
		tview:       tview.NewApplication(),
		leaderboard: NewLeaderboardView(key, ascending),
	}

	a.header = tview.NewTextView().
		SetDynamicColors(true).
		SetText(headerText(report))

	aggregate := make(map[string]*models.AuthorStats, len(report.Authors))
	for _, author := range report.Authors {
		aggregate[author.Name] = author
	}
	a.leaderboard.SetData(aggregate)

	root := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.header, 2, 0, false).
		AddItem(a.leaderboard.Root(), 0, 1, true)
	root.SetBorder(true).SetTitle(" repostats ")

	a.tview.SetRoot(root, true).SetInputCapture(a.handleKey)
	return a
}

func headerText(report *models.Report) string {
	text := fmt.Sprintf("[yellow]%s[-] @ [green]%s[-]\nTotal commits: [white::b]%d[-::-]",
		tview.Escape(report.Path), tview.Escape(report.Revision), report.TotalCommits)
	if report.FailedStats > 0 {
		text += fmt.Sprintf("  [red]stats unavailable for %d commits[-]", report.FailedStats)
	}
	return text
}

func (a *App) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch {
	case event.Key() == tcell.KeyEscape, event.Rune() == 'q':
		a.tview.Stop()
		return nil
	case event.Rune() == 's':
		a.leaderboard.CycleSortColumn()
		a.leaderboard.Refresh()
		return nil
	case event.Rune() == 'r':
		a.leaderboard.ReverseSortOrder()
		a.leaderboard.Refresh()
		return nil
	}
	return event
}

// Run blocks until the user quits
func (a *App) Run() error {
	return a.tview.Run()
}
