package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/polybase/zk-benchmarks/internal/benchmark"
	"github.com/polybase/zk-benchmarks/pkg/benchy"
)

func printResults(out io.Writer, results []benchmark.Result) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "BENCHMARK\tTIME\tMETRICS")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, r.Time(), benchy.FormatMetrics(r.Metrics))
	}
	w.Flush()
}

func printComparison(out io.Writer, comps []benchmark.Comparison, added []string, threshold float64) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "BENCHMARK\tTIME\tDIFF %\tMETRICS\tSTATUS")

	for _, c := range comps {
		fmt.Fprintf(w, "%s\t%s\t%+.2f%%\t%s\t%s\n",
			c.Name, c.Curr.Time(), c.TimeDiff, formatMetricDiffs(c), c.Status(threshold))
	}
	for _, name := range added {
		fmt.Fprintf(w, "%s\t-\t-\t-\tNEW\n", name)
	}
	w.Flush()
}

func formatMetricDiffs(c benchmark.Comparison) string {
	names := c.MetricNames()
	if len(names) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s %+.1f%%", name, c.MetricDiffs[name]))
	}
	return strings.Join(parts, ", ")
}

func printHistory(out io.Writer, runs []benchmark.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tTIMESTAMP\tBENCHMARK\tCOMMIT\tRUNS")
	for _, r := range runs {
		commit := r.Commit
		if commit == "" {
			commit = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			r.ID, r.Timestamp.Format(time.RFC3339), r.Benchmark, commit, len(r.Results))
	}
	w.Flush()
}
