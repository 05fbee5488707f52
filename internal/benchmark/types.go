package benchmark

import (
	"time"
)

// Result is one run of a report, keyed by its slash-joined path.
type Result struct {
	Name    string            `json:"name"`
	TimeNs  int64             `json:"time_ns"`
	Metrics map[string]uint64 `json:"metrics,omitempty"`
}

func (r Result) Time() time.Duration { return time.Duration(r.TimeNs) }

// Run is one saved execution of a benchmark program.
type Run struct {
	ID        string    `json:"id"`
	Benchmark string    `json:"benchmark"`
	Timestamp time.Time `json:"timestamp"`
	Commit    string    `json:"commit,omitempty"` // Git commit hash
	Results   []Result  `json:"results"`
}
