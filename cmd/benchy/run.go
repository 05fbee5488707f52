package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/polybase/zk-benchmarks/internal/benchmark"
	"github.com/polybase/zk-benchmarks/internal/config"
)

const defaultHistoryFile = ".benchy/history.json"

// Seams for tests.
var (
	newRunnerFunc = func(s *config.Settings, stderr io.Writer) benchmark.Runner {
		return &benchmark.ExecRunner{
			Quick:       s.Quick,
			MaxDuration: s.MaxDefaultIterationsDuration,
			OutputDir:   s.OutputDir,
			MetricsFile: s.MetricsFile,
			Stderr:      stderr,
		}
	}
	newStoreFunc = func(path string) (benchmark.Store, error) {
		return benchmark.NewFileStore(path)
	}
	gitCommitFunc = benchmark.GitCommit
)

func newRunCmd() *cobra.Command {
	var (
		save      bool
		compare   bool
		fail      bool
		quick     bool
		threshold float64
		file      string
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "run [flags] -- <program> [args...]",
		Short: "Run a benchmark program and track its results over time",
		Long: `Executes a program built on the benchy library with the BENCHY_* settings,
parses the JSON report it prints and compares it with the latest saved run of
the same benchmark. With --save the run is appended to the history file.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *settings
			if quick {
				s.Quick = true
			}
			if outputDir != "" {
				s.OutputDir = outputDir
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Running benchmarks: %s\n", strings.Join(args, " "))

			ctx := cmd.Context()
			start := time.Now()
			report, err := newRunnerFunc(&s, cmd.ErrOrStderr()).Run(ctx, args[0], args[1:]...)
			if err != nil {
				return err
			}
			logger.Info("benchmark program finished", "benchmark", report.Name, "elapsed", time.Since(start))

			current := benchmark.NewRun(report, gitCommitFunc(ctx, "."))
			if len(current.Results) == 0 {
				fmt.Fprintln(out, "No benchmarks found.")
				return nil
			}

			var store benchmark.Store
			if save || compare {
				if store, err = newStoreFunc(file); err != nil {
					return fmt.Errorf("failed to open history: %w", err)
				}
			}

			var regressions []benchmark.Comparison
			var prev *benchmark.Run
			if compare {
				if prev, err = store.LoadLatest(current.Benchmark); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to load history: %v\n", err)
				}
			}
			if prev != nil {
				comps := benchmark.Compare(*prev, current)
				printComparison(out, comps, benchmark.Added(*prev, current), threshold)
				regressions = benchmark.Regressions(comps, threshold)
			} else {
				printResults(out, current.Results)
			}

			if save {
				if err := store.Save(current); err != nil {
					return fmt.Errorf("failed to save history: %w", err)
				}
				fmt.Fprintf(out, "\nResults saved to %s (run %s)\n", file, current.ID)
			}

			if fail && len(regressions) > 0 {
				return fmt.Errorf("%d benchmark(s) regressed by more than %.1f%%", len(regressions), threshold)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Save results to history")
	cmd.Flags().BoolVar(&compare, "compare", true, "Compare with the latest saved run")
	cmd.Flags().BoolVar(&fail, "fail-on-regression", false, "Exit non-zero when a benchmark regressed")
	cmd.Flags().BoolVar(&quick, "quick", false, "Run a single iteration of the first parameter only")
	cmd.Flags().Float64Var(&threshold, "threshold", 10.0, "Percentage threshold for regression warning")
	cmd.Flags().StringVar(&file, "file", defaultHistoryFile, "File to store benchmark history")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory the program writes <name>.json to")
	return cmd
}
