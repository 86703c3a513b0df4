package app

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"remotebalkan-scraper/internal/config"
	"remotebalkan-scraper/internal/storage"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	errorStyle  = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("9"))
	mutedStyle  = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("8"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// PrintSummary renders the per-source table and the totals of a run.
func PrintSummary(w io.Writer, s Summary) {
	t := newTable("Source", "Kind", "Raw", "Saved", "Dupes", "Time(s)", "Status")
	for _, st := range s.Sources {
		t.Row(
			st.ID,
			st.Kind,
			strconv.Itoa(st.Raw),
			strconv.Itoa(st.Kept),
			strconv.Itoa(st.Duplicates),
			fmt.Sprintf("%.1f", st.Duration.Seconds()),
			st.Status(),
		)
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return headerStyle
		case col == 6 && row < len(s.Sources) && s.Sources[row].Status() == StatusError:
			return errorStyle
		}
		return cellStyle
	})

	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "Total unique jobs collected: %d\n", s.Total)
	fmt.Fprintf(w, "  Remote: %d\n  Hybrid: %d\n  Onsite: %d\n", s.Remote, s.Hybrid, s.Onsite)
	for _, e := range s.Errors {
		fmt.Fprintf(w, "  %s: %s\n", e.Source, e.Error)
	}
}

// PrintSources renders the configured sources.
func PrintSources(w io.Writer, infos []config.SourceInfo) {
	t := newTable("ID", "Enabled", "Kind", "Remote type", "Region", "URL")
	for _, info := range infos {
		t.Row(info.ID, strconv.FormatBool(info.Enabled), info.Kind, info.RemoteType, info.Region, info.URL)
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return headerStyle
		case row < len(infos) && !infos[row].Enabled:
			return mutedStyle
		}
		return cellStyle
	})
	fmt.Fprintln(w, t.Render())
}

// PrintCounts renders table totals and hybrid_jobs rows per source.
func PrintCounts(w io.Writer, c *storage.Counts) {
	fmt.Fprintf(w, "jobs table: %d jobs\n", c.Jobs)
	fmt.Fprintf(w, "hybrid_jobs table: %d jobs\n", c.HybridJobs)

	names := make([]string, 0, len(c.HybridBySource))
	for name := range c.HybridBySource {
		names = append(names, name)
	}
	sort.Strings(names)

	t := newTable("Source", "Jobs")
	for _, name := range names {
		t.Row(name, strconv.Itoa(c.HybridBySource[name]))
	}
	fmt.Fprintln(w, "By source in hybrid_jobs:")
	fmt.Fprintln(w, t.Render())
}

// PrintLoadResult renders what a load wrote.
func PrintLoadResult(w io.Writer, res *LoadResult) {
	fmt.Fprintf(w, "Loaded %d records (remote %d, hybrid/onsite %d)\n", res.Read, res.RemoteRecords, res.HybridRecords)
	fmt.Fprintf(w, "  jobs: %d upserted\n", res.Jobs)
	fmt.Fprintf(w, "  hybrid_jobs: %d upserted\n", res.HybridJobs)
	if res.FailedBatches > 0 {
		fmt.Fprintf(w, "  failed batches: %d (%d records)\n", res.FailedBatches, res.Failed)
	}
}
