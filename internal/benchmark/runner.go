package benchmark

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/polybase/zk-benchmarks/pkg/benchy"
)

// Runner defines the interface for running benchmark programs.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (*benchy.Benchmark, error)
}

// ExecRunner starts a benchmark program and parses the report it prints.
// The program's stderr, which carries logs and the output of isolated
// iterations, is forwarded to Stderr.
type ExecRunner struct {
	Quick       bool
	MaxDuration time.Duration
	OutputDir   string
	MetricsFile string

	// Env is appended after the BENCHY_* settings.
	Env    []string
	Stderr io.Writer
	Dir    string
}

var execCommand = exec.CommandContext

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (*benchy.Benchmark, error) {
	cmd := execCommand(ctx, name, args...)
	cmd.Env = append(append(os.Environ(), r.env()...), r.Env...)
	cmd.Dir = r.Dir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = r.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("benchmark command %s failed: %w", strings.Join(cmd.Args, " "), err)
	}

	b, err := ParseReport(out.Bytes())
	if err != nil {
		return nil, fmt.Errorf("parse output of %s: %w", name, err)
	}
	return b, nil
}

func (r *ExecRunner) env() []string {
	var env []string
	if r.Quick {
		env = append(env, "BENCHY_QUICK=true")
	}
	if r.MaxDuration > 0 {
		env = append(env, "BENCHY_MAX_DEFAULT_ITERATIONS_DURATION="+strconv.FormatInt(r.MaxDuration.Milliseconds(), 10))
	}
	if r.OutputDir != "" {
		env = append(env, "BENCHY_OUTPUT_DIR="+r.OutputDir)
	}
	if r.MetricsFile != "" {
		env = append(env, "BENCHY_METRICS_FILE="+r.MetricsFile)
	}
	return env
}

// GitCommit returns the short hash of HEAD in dir, or "" outside a
// repository.
func GitCommit(ctx context.Context, dir string) string {
	cmd := execCommand(ctx, "git", "rev-parse", "--short", "HEAD")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
