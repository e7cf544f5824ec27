package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/Kamar-Folarin/repostats/internal/models"
	"github.com/Kamar-Folarin/repostats/internal/stats"
)

type column struct {
	title string
	key   stats.SortKey
}

var columns = []column{
	{"#", ""},
	{"Author", stats.SortByName},
	{"Commits", stats.SortByCommits},
	{"Insertions", stats.SortByInsertions},
	{"Deletions", stats.SortByDeletions},
	{"Net", stats.SortByNet},
	{"PRs", stats.SortByMergedPRs},
}

// LeaderboardView displays per-author statistics in a sortable table
type LeaderboardView struct {
	root  *tview.Flex
	table *tview.Table
	info  *tview.TextView

	aggregate map[string]*models.AuthorStats
	sortCol   int
	sortAsc   bool
}

// NewLeaderboardView creates a new leaderboard view sorted by key
func NewLeaderboardView(key stats.SortKey, ascending bool) *LeaderboardView {
	v := &LeaderboardView{
		sortCol: 2,
		sortAsc: ascending,
	}
	for i, c := range columns {
		if c.key != "" && c.key == key {
			v.sortCol = i
		}
	}
	v.setup()
	return v
}

func (v *LeaderboardView) setup() {
	v.table = tview.NewTable().
		SetSelectable(true, false).
		SetFixed(1, 0).
		SetSeparator(' ')

	v.info = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)

	v.root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(v.table, 0, 1, true).
		AddItem(v.info, 1, 0, false)

	v.renderHeader()
}

func (v *LeaderboardView) renderHeader() {
	for col, c := range columns {
		cell := tview.NewTableCell(c.title).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false).
			SetAttributes(tcell.AttrBold)

		if col == v.sortCol {
			arrow := "▼"
			if v.sortAsc {
				arrow = "▲"
			}
			cell.SetText(c.title + arrow)
		}

		v.table.SetCell(0, col, cell)
	}
}

// SetData replaces the aggregate shown by the view
func (v *LeaderboardView) SetData(aggregate map[string]*models.AuthorStats) {
	v.aggregate = aggregate
	v.Refresh()
}

// Refresh redraws the rows in the current sort order
func (v *LeaderboardView) Refresh() {
	for row := v.table.GetRowCount() - 1; row > 0; row-- {
		v.table.RemoveRow(row)
	}

	authors := stats.Leaderboard(v.aggregate, columns[v.sortCol].key, v.sortAsc)

	for i, author := range authors {
		row := i + 1

		v.table.SetCell(row, 0, tview.NewTableCell(fmt.Sprintf("%d", i+1)).
			SetTextColor(tcell.ColorDarkGray).
			SetAlign(tview.AlignRight))

		v.table.SetCell(row, 1, tview.NewTableCell(author.Name).
			SetExpansion(1))

		v.table.SetCell(row, 2, tview.NewTableCell(fmt.Sprintf("%d", author.TotalCommits)).
			SetAlign(tview.AlignRight))

		v.table.SetCell(row, 3, tview.NewTableCell(fmt.Sprintf("+%d", author.Insertions)).
			SetTextColor(tcell.ColorGreen).
			SetAlign(tview.AlignRight))

		v.table.SetCell(row, 4, tview.NewTableCell(fmt.Sprintf("-%d", author.Deletions)).
			SetTextColor(tcell.ColorRed).
			SetAlign(tview.AlignRight))

		netColor := tcell.ColorWhite
		if author.NetLines > 0 {
			netColor = tcell.ColorGreen
		} else if author.NetLines < 0 {
			netColor = tcell.ColorRed
		}
		v.table.SetCell(row, 5, tview.NewTableCell(fmt.Sprintf("%+d", author.NetLines)).
			SetTextColor(netColor).
			SetAlign(tview.AlignRight))

		v.table.SetCell(row, 6, tview.NewTableCell(fmt.Sprintf("%d", author.MergedPRs)).
			SetAlign(tview.AlignRight))
	}

	v.info.SetText(fmt.Sprintf("[yellow]%d[-] authors | Sort: [green]%s[-] | [s] cycle column, [r] reverse, [q] quit",
		len(authors), columns[v.sortCol].title))

	v.renderHeader()
}

// CycleSortColumn moves the sort to the next column, skipping the rank
func (v *LeaderboardView) CycleSortColumn() {
	v.sortCol = (v.sortCol + 1) % len(columns)
	if v.sortCol == 0 {
		v.sortCol = 1
	}
}

// ReverseSortOrder reverses the sort order
func (v *LeaderboardView) ReverseSortOrder() {
	v.sortAsc = !v.sortAsc
}

// Root returns the root primitive
func (v *LeaderboardView) Root() tview.Primitive {
	return v.root
}
