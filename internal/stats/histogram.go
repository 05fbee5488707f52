// Package stats summarises per-iteration wall times.
package stats

import (
	"log/slog"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	lowest  = 1
	highest = int64(time.Hour / time.Microsecond)
	sigfigs = 3
)

// Recorder accumulates iteration durations at microsecond resolution,
// 1us to 1h, 3 significant figures. It is not safe for concurrent use; the
// aggregator records from a single goroutine.
type Recorder struct {
	hist *hdrhistogram.Histogram
}

func NewRecorder() *Recorder {
	return &Recorder{hist: hdrhistogram.New(lowest, highest, sigfigs)}
}

// Record adds d, clamped to the trackable range.
func (r *Recorder) Record(d time.Duration) {
	v := int64(d / time.Microsecond)
	if v < lowest {
		v = lowest
	}
	if v > highest {
		v = highest
	}
	// Cannot fail inside the clamped range.
	_ = r.hist.RecordValue(v)
}

func (r *Recorder) Count() int64 { return r.hist.TotalCount() }

// Summary is a snapshot of the recorded distribution.
type Summary struct {
	Count int64
	Min   time.Duration
	P50   time.Duration
	P90   time.Duration
	P99   time.Duration
	Max   time.Duration
	Mean  time.Duration
}

func (r *Recorder) Summary() Summary {
	if r.hist.TotalCount() == 0 {
		return Summary{}
	}
	us := func(v int64) time.Duration { return time.Duration(v) * time.Microsecond }
	return Summary{
		Count: r.hist.TotalCount(),
		Min:   us(r.hist.Min()),
		P50:   us(r.hist.ValueAtQuantile(50)),
		P90:   us(r.hist.ValueAtQuantile(90)),
		P99:   us(r.hist.ValueAtQuantile(99)),
		Max:   us(r.hist.Max()),
		Mean:  time.Duration(r.hist.Mean() * float64(time.Microsecond)),
	}
}

// LogValue implements slog.LogValuer.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("count", s.Count),
		slog.Duration("min", s.Min),
		slog.Duration("p50", s.P50),
		slog.Duration("p90", s.P90),
		slog.Duration("p99", s.P99),
		slog.Duration("max", s.Max),
		slog.Duration("mean", s.Mean),
	)
}
