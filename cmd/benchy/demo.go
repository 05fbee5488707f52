package main

import (
	"crypto/sha256"
	"hash/fnv"

	"github.com/spf13/cobra"

	"github.com/polybase/zk-benchmarks/pkg/benchy"
)

var demoSizes = []benchy.Parameter[int]{
	benchy.Param("1KiB", 1<<10),
	benchy.Param("64KiB", 64<<10),
	benchy.ParamN(3, "1MiB", 1<<20),
}

// demoRegistry hashes inputs of each size and allocates a large buffer so
// the memory metric has something to report.
func demoRegistry() *benchy.Registry {
	reg := benchy.NewRegistry("demo")

	benchy.RegisterWith(reg, "sha256", demoSizes, func(r *benchy.Run, size int) {
		input := make([]byte, size)
		r.Log("input_bytes", uint64(size))
		r.Run(func() { _ = sha256.Sum256(input) })
	})
	benchy.RegisterWith(reg, "fnv64a", demoSizes, func(r *benchy.Run, size int) {
		input := make([]byte, size)
		r.Log("input_bytes", uint64(size))
		benchy.Measure(r, func() uint64 {
			h := fnv.New64a()
			h.Write(input)
			return h.Sum64()
		})
	})
	reg.Register("alloc_16MiB", 3, func(r *benchy.Run) {
		buf := benchy.Measure(r, func() []byte {
			b := make([]byte, 16<<20)
			for i := range b {
				b[i] = byte(i)
			}
			return b
		})
		r.Log("allocated_bytes", uint64(len(buf)))
	})
	return reg
}

func newDemoCmd() *cobra.Command {
	var (
		quick     bool
		inProcess bool
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a small built-in benchmark suite",
		Long: `Runs hashing and allocation benchmarks through the benchy library and prints
the JSON report. Each iteration runs in a re-executed child process unless
--in-process is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := benchy.ConfigFromSettings(settings)
			if quick {
				cfg.Quick = true
			}

			opts := []benchy.Option{
				benchy.WithLogger(logger),
				benchy.WithStdout(cmd.OutOrStdout()),
				benchy.WithStderr(cmd.ErrOrStderr()),
			}
			if inProcess {
				opts = append(opts, benchy.WithInProcess())
			}

			reg := demoRegistry()
			logger.Debug("running demo suite", "benchmarks", reg.Names())
			reg.RunWith(benchy.NewWithConfig(reg.Name(), cfg, opts...))
			return nil
		},
	}

	cmd.Flags().BoolVar(&quick, "quick", false, "Run a single iteration of the first parameter only")
	cmd.Flags().BoolVar(&inProcess, "in-process", false, "Run iterations in this process instead of isolated children")
	return cmd
}
