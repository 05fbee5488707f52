package benchmark

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/polybase/zk-benchmarks/pkg/benchy"
)

// ErrNoReport means no JSON document was found in a program's output.
var ErrNoReport = errors.New("no benchmark report in output")

// LoadReport reads a report written by Benchmark.Output.
func LoadReport(path string) (*benchy.Benchmark, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	b, err := ParseReport(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// ParseReport decodes the first JSON object in output. Lines before it, such
// as build output, are ignored.
func ParseReport(output []byte) (*benchy.Benchmark, error) {
	start, offset := -1, 0
	for _, line := range bytes.SplitAfter(output, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimSpace(line), []byte("{")) {
			start = offset
			break
		}
		offset += len(line)
	}
	if start < 0 {
		return nil, ErrNoReport
	}

	var b benchy.Benchmark
	dec := json.NewDecoder(bytes.NewReader(output[start:]))
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &b, nil
}

// Flatten lists every run of b in tree order.
func Flatten(b *benchy.Benchmark) []Result {
	var results []Result
	b.Walk(func(path []string, run *benchy.Run) {
		results = append(results, Result{
			Name:    strings.Join(path, "/"),
			TimeNs:  int64(run.Time),
			Metrics: run.Metrics,
		})
	})
	return results
}

// NewRun wraps a report as a history entry.
func NewRun(b *benchy.Benchmark, commit string) Run {
	return Run{
		ID:        uuid.NewString(),
		Benchmark: b.Name,
		Timestamp: time.Now().UTC(),
		Commit:    commit,
		Results:   Flatten(b),
	}
}
