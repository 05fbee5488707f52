package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polybase/zk-benchmarks/internal/benchmark"
	"github.com/polybase/zk-benchmarks/internal/config"
	"github.com/polybase/zk-benchmarks/pkg/benchy"
)

const reportV1 = `{
  "name": "hashes",
  "results": [
    {
      "name": "sha256",
      "results": [
        {"name": "1KiB", "time": {"secs": 0, "nanos": 1000}, "metrics": {"memory_usage_bytes": 4096}},
        {"name": "1MiB", "time": {"secs": 1, "nanos": 0}, "metrics": {}}
      ]
    }
  ]
}`

const reportV2 = `{
  "name": "hashes",
  "results": [
    {
      "name": "sha256",
      "results": [
        {"name": "1KiB", "time": {"secs": 0, "nanos": 2000}, "metrics": {"memory_usage_bytes": 4096}},
        {"name": "1MiB", "time": {"secs": 1, "nanos": 0}, "metrics": {}},
        {"name": "4MiB", "time": {"secs": 4, "nanos": 0}, "metrics": {}}
      ]
    }
  ]
}`

type mockRunner struct {
	report   string
	err      error
	settings *config.Settings
	name     string
	args     []string
}

func (m *mockRunner) Run(ctx context.Context, name string, args ...string) (*benchy.Benchmark, error) {
	m.name = name
	m.args = args
	if m.err != nil {
		return nil, m.err
	}
	return benchmark.ParseReport([]byte(m.report))
}

type mockStore struct {
	saved  []benchmark.Run
	latest *benchmark.Run
	all    []benchmark.Run
}

func (m *mockStore) Save(run benchmark.Run) error {
	m.saved = append(m.saved, run)
	return nil
}

func (m *mockStore) LoadLatest(name string) (*benchmark.Run, error) {
	return m.latest, nil
}

func (m *mockStore) LoadAll() ([]benchmark.Run, error) {
	return m.all, nil
}

// useMocks swaps the runner and store seams for the duration of the test.
func useMocks(t *testing.T, r *mockRunner, s *mockStore) {
	t.Helper()
	oldRunner, oldStore, oldCommit := newRunnerFunc, newStoreFunc, gitCommitFunc
	t.Cleanup(func() {
		newRunnerFunc, newStoreFunc, gitCommitFunc = oldRunner, oldStore, oldCommit
	})

	newRunnerFunc = func(cfg *config.Settings, _ io.Writer) benchmark.Runner {
		r.settings = cfg
		return r
	}
	newStoreFunc = func(path string) (benchmark.Store, error) { return s, nil }
	gitCommitFunc = func(ctx context.Context, dir string) string { return "abc123" }
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgFile, verbose, logFile = "", false, ""
	chdirTest(t, t.TempDir())

	root := newRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	err := root.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func mustRun(t *testing.T, report string) benchmark.Run {
	t.Helper()
	b, err := benchmark.ParseReport([]byte(report))
	require.NoError(t, err)
	return benchmark.NewRun(b, "")
}
