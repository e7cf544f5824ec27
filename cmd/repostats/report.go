package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"github.com/Kamar-Folarin/repostats/internal/config"
	"github.com/Kamar-Folarin/repostats/internal/models"
	"github.com/Kamar-Folarin/repostats/internal/report"
	"github.com/Kamar-Folarin/repostats/internal/stats"
	"github.com/Kamar-Folarin/repostats/internal/ui"
	"github.com/Kamar-Folarin/repostats/internal/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func runReport(ctx context.Context, cfg *config.Config, logger *logrus.Logger, out io.Writer) error {
	key, err := stats.ParseSortKey(*reportSort)
	if err != nil {
		return err
	}

	path, err := utils.NormalizeRepoPath(*reportPath)
	if err != nil {
		return err
	}

	svc := report.NewService(newGitClient(cfg, logger), nil, cfg, logger)
	analysis, err := svc.Generate(ctx, path)
	if err != nil {
		return err
	}

	if *reportTUI {
		return ui.NewApp(analysis.Report, key, *reportAsc).Run()
	}

	switch *reportFormat {
	case "json":
		return renderJSON(out, analysis.Report, key, *reportAsc)
	default:
		return renderTable(out, analysis.Report, key, *reportAsc)
	}
}

func sortedAuthors(r *models.Report, key stats.SortKey, ascending bool) []*models.AuthorStats {
	aggregate := make(map[string]*models.AuthorStats, len(r.Authors))
	for _, a := range r.Authors {
		aggregate[a.Name] = a
	}
	return stats.Leaderboard(aggregate, key, ascending)
}

func renderTable(out io.Writer, r *models.Report, key stats.SortKey, ascending bool) error {
	if _, err := fmt.Fprintf(out, "Total commits: %d\n\n", r.TotalCommits); err != nil {
		return err
	}

	authors := sortedAuthors(r, key, ascending)
	header := []string{"COMMITS", "INSERTIONS", "DELETIONS", "NET", "PRS"}
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}

	rows := make([][]string, len(authors))
	for i, a := range authors {
		rows[i] = []string{
			strconv.Itoa(a.TotalCommits),
			fmt.Sprintf("+%d", a.Insertions),
			fmt.Sprintf("-%d", a.Deletions),
			fmt.Sprintf("%+d", a.NetLines),
			strconv.Itoa(a.MergedPRs),
		}
		for j, cell := range rows[i] {
			widths[j] = max(widths[j], len(cell))
		}
	}

	// Names are left aligned by the tabwriter; numbers are padded to a
	// fixed width so they line up on the right.
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	writeRow := func(name string, cells []string) {
		fmt.Fprint(w, name)
		for j, cell := range cells {
			fmt.Fprintf(w, "\t%*s", widths[j], cell)
		}
		fmt.Fprintln(w)
	}

	writeRow("AUTHOR", header)
	for i, a := range authors {
		writeRow(a.Name, rows[i])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if r.FailedStats > 0 {
		_, err := fmt.Fprintf(out, "\nStats unavailable for %d commits; their line counts are not included.\n", r.FailedStats)
		return err
	}
	return nil
}

func renderJSON(out io.Writer, r *models.Report, key stats.SortKey, ascending bool) error {
	sorted := *r
	sorted.Authors = sortedAuthors(r, key, ascending)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(&sorted)
}
