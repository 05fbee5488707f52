package main

import (
	"github.com/spf13/cobra"

	"github.com/polybase/zk-benchmarks/internal/benchmark"
	"github.com/polybase/zk-benchmarks/pkg/benchy"
)

func newShowCmd() *cobra.Command {
	var summary bool

	cmd := &cobra.Command{
		Use:   "show <report.json>",
		Short: "Print the runs of a saved report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := benchmark.LoadReport(args[0])
			if err != nil {
				return err
			}
			if summary {
				return benchy.WriteSummary(cmd.OutOrStdout(), report)
			}
			printResults(cmd.OutOrStdout(), benchmark.Flatten(report))
			return nil
		},
	}

	cmd.Flags().BoolVar(&summary, "summary", false, "Render a bordered summary table")
	return cmd
}
