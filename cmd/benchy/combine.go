package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/polybase/zk-benchmarks/internal/benchmark"
)

func newCombineCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "combine [dir]",
		Short: "Merge a tree of reports into one document",
		Long: `Walks dir (default .benchmarks) for <framework>.json reports grouped in
category directories and writes {"meta": ..., "frameworks": {framework:
{category: {result: ...}}}}. A meta.json in the tree replaces the generated
meta block.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ".benchmarks"
			if len(args) == 1 {
				dir = args[0]
			}

			combined, err := benchmark.Combine(dir, time.Now(), logger)
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(combined, "", "    ")
			if err != nil {
				return fmt.Errorf("failed to marshal combined report: %w", err)
			}

			if output == "-" {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			if err := atomic.WriteFile(output, bytes.NewReader(data)); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Combined %d framework(s) into %s\n", len(combined.Frameworks), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "benchmarks.json", `Output file, "-" for stdout`)
	return cmd
}
