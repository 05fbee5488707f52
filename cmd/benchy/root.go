package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/polybase/zk-benchmarks/internal/config"
	"github.com/polybase/zk-benchmarks/internal/telemetry"
)

var exit = os.Exit

var (
	cfgFile string
	verbose bool
	logFile string

	// settings is resolved before any subcommand runs.
	settings *config.Settings
	logger   = slog.Default()
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "benchy",
		Short: "Run isolated benchmarks and track their results",
		Long: `benchy runs benchmark programs built on the benchy library, prints and
stores their JSON reports, compares reports to detect regressions and combines
report trees into the document published on the results site.`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./benchy.yaml)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose/debug logging")
	cmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write JSON logs to this file")

	cmd.AddCommand(
		newRunCmd(),
		newShowCmd(),
		newCompareCmd(),
		newCombineCmd(),
		newHistoryCmd(),
		newDemoCmd(),
	)
	return cmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n=== CRITICAL ERROR: Command Execution Panic ===\n")
			fmt.Fprintf(os.Stderr, "Error: %v\n", r)
			exit(1)
		}
	}()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'benchy --help' for usage.")
		exit(1)
	}
}

// initConfig reads the config file and BENCHY_* variables and sets up logging.
func initConfig(cmd *cobra.Command, args []string) error {
	s, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if verbose {
		s.LogLevel = "debug"
	}
	if logFile != "" {
		s.LogFile = logFile
	}

	l, err := telemetry.InitLogger(s.LogLevel, s.LogFile)
	if err != nil {
		return err
	}

	settings = s
	logger = l
	return nil
}
