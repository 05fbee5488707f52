package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/polybase/zk-benchmarks/internal/benchmark"
)

func newHistoryCmd() *cobra.Command {
	var (
		file  string
		name  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved benchmark runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newStoreFunc(file)
			if err != nil {
				return fmt.Errorf("failed to open history: %w", err)
			}
			all, err := store.LoadAll()
			if err != nil {
				return err
			}

			var runs []benchmark.Run
			for _, r := range all {
				if name == "" || r.Benchmark == name {
					runs = append(runs, r)
				}
			}
			if limit > 0 && len(runs) > limit {
				runs = runs[len(runs)-limit:]
			}

			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved runs.")
				return nil
			}
			printHistory(cmd.OutOrStdout(), runs)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", defaultHistoryFile, "File storing benchmark history")
	cmd.Flags().StringVar(&name, "benchmark", "", "Only list runs of this benchmark")
	cmd.Flags().IntVar(&limit, "limit", 0, "Only list the most recent runs")
	return cmd
}
