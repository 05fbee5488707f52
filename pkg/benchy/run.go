package benchy

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/polybase/zk-benchmarks/internal/memory"
	"github.com/polybase/zk-benchmarks/internal/stats"
)

// MetricMemoryUsage is the peak RSS growth, in bytes, observed while a run
// executed. It is only recorded for isolated runs.
const MetricMemoryUsage = "memory_usage_bytes"

// Run is one timed execution with its metrics. After aggregation it holds
// the mean over all iterations.
type Run struct {
	Name    string
	Time    time.Duration
	Metrics map[string]uint64

	// Set on the hot path inside the isolated closure.
	monitorMemory bool

	// Set on averaged runs, never serialized.
	iterations int
	spread     stats.Summary
}

func newRun(name string, monitorMemory bool) *Run {
	return &Run{Name: name, Metrics: map[string]uint64{}, monitorMemory: monitorMemory}
}

// Run times f. Only the time spent in f is recorded, so setup done before the
// call is excluded. In an isolated child the peak memory growth during f is
// logged as MetricMemoryUsage.
func (r *Run) Run(f func()) {
	Measure(r, func() struct{} {
		f()
		return struct{}{}
	})
}

// Measure is Run for a function with a result.
func Measure[R any](r *Run, f func() R) R {
	var stop memory.Stop
	if r.monitorMemory {
		stop = memory.Monitor()
	}

	start := time.Now()
	out := f()
	r.Time = time.Since(start)

	if stop != nil {
		if used, ok := stop(); ok {
			r.Log(MetricMemoryUsage, used)
		}
	}
	return out
}

// Log records a metric, replacing any earlier value with the same name.
func (r *Run) Log(metric string, value uint64) {
	if r.Metrics == nil {
		r.Metrics = map[string]uint64{}
	}
	r.Metrics[metric] = value
}

// Iterations is the number of isolated executions averaged into r.
func (r *Run) Iterations() int { return r.iterations }

// Spread describes the distribution of the iteration times averaged into r.
func (r *Run) Spread() stats.Summary { return r.spread }

func (*Run) result() {}

// duration is the wire form of a time.Duration: whole seconds plus the
// nanosecond remainder.
type duration struct {
	Secs  uint64 `json:"secs"`
	Nanos uint32 `json:"nanos"`
}

func toWire(d time.Duration) duration {
	if d < 0 {
		d = 0
	}
	return duration{Secs: uint64(d / time.Second), Nanos: uint32(d % time.Second)}
}

func (d duration) value() time.Duration {
	return time.Duration(d.Secs)*time.Second + time.Duration(d.Nanos)
}

type runJSON struct {
	Name    string            `json:"name"`
	Time    duration          `json:"time"`
	Metrics map[string]uint64 `json:"metrics"`
}

func (r Run) MarshalJSON() ([]byte, error) {
	metrics := r.Metrics
	if metrics == nil {
		metrics = map[string]uint64{}
	}
	return json.Marshal(runJSON{Name: r.Name, Time: toWire(r.Time), Metrics: metrics})
}

// ErrNotRun reports a JSON object that lacks the shape of a run.
var ErrNotRun = errors.New("not a run: want an object with time and metrics and without results")

func (r *Run) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decode run: %w", err)
	}
	if shapeOf(fields) != shapeRun {
		return ErrNotRun
	}

	var raw runJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode run: %w", err)
	}
	*r = Run{Name: raw.Name, Time: raw.Time.value(), Metrics: raw.Metrics}
	if r.Metrics == nil {
		r.Metrics = map[string]uint64{}
	}
	return nil
}
