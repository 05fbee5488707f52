package benchy

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true)
)

// WriteSummary renders one table row per run of b.
func WriteSummary(w io.Writer, b *Benchmark) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("BENCHMARK", "TIME", "ITER", "P50", "P99", "METRICS").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	b.Walk(func(path []string, run *Run) {
		t.Row(SummaryRow(path, run)...)
	})

	_, err := fmt.Fprintf(w, "%s\n%s\n", titleStyle.Render(b.Name), t.Render())
	return err
}

// SummaryRow formats a run for a summary table. Iteration columns show "-"
// for runs decoded from a report.
func SummaryRow(path []string, run *Run) []string {
	iter, p50, p99 := "-", "-", "-"
	if run.iterations > 0 {
		iter = fmt.Sprint(run.iterations)
		p50 = run.spread.P50.String()
		p99 = run.spread.P99.String()
	}
	return []string{
		strings.Join(path, " / "),
		run.Time.String(),
		iter,
		p50,
		p99,
		FormatMetrics(run.Metrics),
	}
}

// FormatMetrics lists metrics as sorted key=value pairs.
func FormatMetrics(m map[string]uint64) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, m[k]))
	}
	return strings.Join(parts, " ")
}
