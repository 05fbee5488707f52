// Package benchy runs named benchmark functions in isolated child processes,
// averages repeated iterations and reports the results as JSON.
//
// A benchmark program registers its benchmarks on a Benchmark and calls
// Output once at the end:
//
//	b := benchy.FromEnv("hashes")
//	benchy.BenchmarkWith(b, "sha256", []benchy.Parameter[int]{
//		benchy.Param("1KiB", 1<<10),
//		benchy.Param("1MiB", 1<<20),
//	}, func(r *benchy.Run, size int) {
//		data := make([]byte, size)
//		r.Run(func() { sha256.Sum256(data) })
//	})
//	b.Output()
//
// Every iteration re-executes the program with BENCHY_ISOLATE_TASK set. The
// child walks through the same registrations, runs only the selected
// iteration and exits, so registration must be deterministic and side
// effects before Output should be limited to building the tree.
package benchy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/polybase/zk-benchmarks/internal/isolate"
	"github.com/polybase/zk-benchmarks/internal/metrics"
	"github.com/polybase/zk-benchmarks/internal/telemetry"
)

// Benchmark is the root of a result tree.
type Benchmark struct {
	Name    string
	Results []*Group

	env    *engine
	stdout io.Writer
	stderr io.Writer
}

// Option customises a Benchmark.
type Option func(*Benchmark)

// WithStdout redirects the JSON document written by Output.
func WithStdout(w io.Writer) Option {
	return func(b *Benchmark) { b.stdout = w }
}

// WithStderr redirects the summary table and the output of child processes.
func WithStderr(w io.Writer) Option {
	return func(b *Benchmark) {
		b.stderr = w
		b.env.runner.Stderr = w
	}
}

// WithLogger sets the logger for the engine and the isolation runner.
func WithLogger(l *slog.Logger) Option {
	return func(b *Benchmark) {
		b.env.logger = l
		b.env.runner.Logger = l
	}
}

// WithChildArgs replaces the command line arguments of child processes.
// Tests pass -test.run=^TestName$ so a child runs only the calling test.
func WithChildArgs(args ...string) Option {
	return func(b *Benchmark) { b.env.runner.Args = args }
}

// WithInProcess disables isolation. Panics are not contained and no memory
// metric is recorded.
func WithInProcess() Option {
	return func(b *Benchmark) { b.env.runner.InProcess = true }
}

// New returns a benchmark with the default configuration.
func New(name string, opts ...Option) *Benchmark {
	return NewWithConfig(name, DefaultConfig(), opts...)
}

// NewWithConfig returns a benchmark using cfg instead of the environment.
func NewWithConfig(name string, cfg Config, opts ...Option) *Benchmark {
	_, child := isolate.CurrentTask()
	b := &Benchmark{
		Name:    name,
		Results: []*Group{},
		env: &engine{
			root:   name,
			config: cfg,
			runner: &isolate.Runner{},
			logger: slog.Default(),
			child:  child,
		},
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// FromEnv builds the configuration from BENCHY_* variables and logs to
// stderr at BENCHY_LOG_LEVEL. Invalid settings panic.
func FromEnv(name string, opts ...Option) *Benchmark {
	cfg, err := ConfigFromEnv()
	if err != nil {
		panic(fmt.Errorf("benchy: %w", err))
	}

	level, err := telemetry.ParseLevel(cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("benchy: %w", err))
	}
	logger := telemetry.NewLogger(level, os.Stderr, cfg.LogFile)

	return NewWithConfig(name, cfg, append([]Option{WithLogger(logger)}, opts...)...)
}

// Config returns the configuration shared by the tree.
func (b *Benchmark) Config() Config { return b.env.config }

// Group appends a top-level group.
func (b *Benchmark) Group(name string) *Group {
	g := &Group{Name: name, path: []string{name}, env: b.env}
	b.Results = append(b.Results, g)
	return g
}

// Benchmark registers a group name holding a single run, also named name.
func (b *Benchmark) Benchmark(name string, iterations int, f func(*Run)) {
	b.Group(name).Benchmark(name, iterations, f)
}

// Walk calls fn for every run in the tree in order.
func (b *Benchmark) Walk(fn func(path []string, run *Run)) {
	for _, g := range b.Results {
		walk([]string{g.Name}, g.Results, fn)
	}
}

type benchmarkJSON struct {
	Name    string   `json:"name"`
	Results []*Group `json:"results"`
}

func (b *Benchmark) MarshalJSON() ([]byte, error) {
	results := b.Results
	if results == nil {
		results = []*Group{}
	}
	return json.Marshal(benchmarkJSON{Name: b.Name, Results: results})
}

func (b *Benchmark) UnmarshalJSON(data []byte) error {
	var raw benchmarkJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode benchmark: %w", err)
	}
	b.Name = raw.Name
	b.Results = raw.Results
	if b.Results == nil {
		b.Results = []*Group{}
	}
	return nil
}

// JSON returns the indented report without writing it anywhere.
func (b *Benchmark) JSON() ([]byte, error) {
	return json.MarshalIndent(b, "", "  ")
}

// Output prints the report to stdout and, depending on the configuration,
// writes <OutputDir>/<name>.json, the metrics textfile and a summary table.
// Any failure panics. In a child process Output does nothing.
func (b *Benchmark) Output() {
	if b.env.child {
		task, _ := isolate.CurrentTask()
		b.env.logger.Warn("isolated task was not registered by this program", "task", task)
		return
	}

	data, err := b.JSON()
	if err != nil {
		panic(fmt.Errorf("benchy: serialize %q: %w", b.Name, err))
	}

	if _, err := fmt.Fprintln(b.stdout, string(data)); err != nil {
		panic(fmt.Errorf("benchy: write report: %w", err))
	}

	cfg := b.env.config
	if cfg.OutputDir != "" {
		if err := writeReport(cfg.OutputDir, b.Name, data); err != nil {
			panic(fmt.Errorf("benchy: %w", err))
		}
	}

	if cfg.MetricsFile != "" {
		if err := metrics.Export(cfg.MetricsFile, b.samples()); err != nil {
			panic(fmt.Errorf("benchy: %w", err))
		}
	}

	if cfg.Summary {
		if err := WriteSummary(b.stderr, b); err != nil {
			panic(fmt.Errorf("benchy: write summary: %w", err))
		}
	}
}

func writeReport(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, name+".json")
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (b *Benchmark) samples() []metrics.Sample {
	var samples []metrics.Sample
	b.Walk(func(path []string, run *Run) {
		samples = append(samples, metrics.Sample{
			Benchmark:  b.Name,
			Path:       path,
			Time:       run.Time,
			Metrics:    run.Metrics,
			Iterations: run.iterations,
		})
	})
	return samples
}
