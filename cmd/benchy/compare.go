package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/polybase/zk-benchmarks/internal/benchmark"
)

func newCompareCmd() *cobra.Command {
	var (
		threshold float64
		fail      bool
	)

	cmd := &cobra.Command{
		Use:   "compare <old.json> <new.json>",
		Short: "Compare two reports and flag regressions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldReport, err := benchmark.LoadReport(args[0])
			if err != nil {
				return err
			}
			newReport, err := benchmark.LoadReport(args[1])
			if err != nil {
				return err
			}

			prev := benchmark.NewRun(oldReport, "")
			curr := benchmark.NewRun(newReport, "")
			comps := benchmark.Compare(prev, curr)
			printComparison(cmd.OutOrStdout(), comps, benchmark.Added(prev, curr), threshold)

			if regressions := benchmark.Regressions(comps, threshold); fail && len(regressions) > 0 {
				return fmt.Errorf("%d benchmark(s) regressed by more than %.1f%%", len(regressions), threshold)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", 10.0, "Percentage threshold for regression warning")
	cmd.Flags().BoolVar(&fail, "fail-on-regression", false, "Exit non-zero when a benchmark regressed")
	return cmd
}
