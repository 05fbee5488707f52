package benchy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/polybase/zk-benchmarks/internal/isolate"
	"github.com/polybase/zk-benchmarks/internal/memory"
	"github.com/polybase/zk-benchmarks/internal/stats"
)

// Parameter is one case of a parameterised benchmark.
type Parameter[T any] struct {
	Name  string
	Value T

	// Iterations overrides the iteration count for this case; 0 means
	// adaptive.
	Iterations int
}

// Param builds a case that iterates adaptively.
func Param[T any](name string, value T) Parameter[T] {
	return Parameter[T]{Name: name, Value: value}
}

// ParamN builds a case with a fixed iteration count.
func ParamN[T any](iterations int, name string, value T) Parameter[T] {
	return Parameter[T]{Name: name, Value: value, Iterations: iterations}
}

// engine is shared by every group of one Benchmark.
type engine struct {
	root    string
	config  Config
	runner  *isolate.Runner
	logger  *slog.Logger
	ordinal int
	child   bool
}

// taskSep cannot appear in names typed by hand.
const taskSep = "\x1f"

// nextTask identifies the next registration. Registration happens in the
// same order in the parent and every child, so the ordinal is stable across
// processes.
func (e *engine) nextTask(path []string) string {
	e.ordinal++
	return e.root + taskSep + strconv.Itoa(e.ordinal) + taskSep + strings.Join(path, "/")
}

func (e *engine) isolated() bool {
	return !e.runner.InProcess && isolate.Supported()
}

// Benchmark runs f repeatedly and appends the averaged run, named name.
//
// iterations 0 iterates adaptively: up to DefaultIterations times, stopping
// once the elapsed time reaches the configured budget. A positive count runs
// exactly that many iterations. Quick mode runs one. Each iteration executes
// in a fresh child process. A panic or crash in f panics here.
func (g *Group) Benchmark(name string, iterations int, f func(*Run)) {
	if iterations < 0 {
		panic(fmt.Sprintf("benchy: negative iteration count %d for %q", iterations, name))
	}
	if g.env == nil {
		panic(fmt.Sprintf("benchy: group %q is not attached to a benchmark", g.Name))
	}

	run, ok := g.env.iterate(g.childPath(name), name, iterations, f)
	if ok {
		g.Results = append(g.Results, run)
	}
}

// BenchmarkWith creates a group name under parent holding one averaged run
// per parameter. In quick mode only the first parameter runs.
func BenchmarkWith[T any](parent Grouper, name string, params []Parameter[T], f func(*Run, T)) *Group {
	g := parent.Group(name)
	if g.env != nil && g.env.config.Quick && len(params) > 1 {
		params = params[:1]
	}

	for _, p := range params {
		value := p.Value
		g.Benchmark(p.Name, p.Iterations, func(r *Run) {
			f(r, value)
		})
	}
	return g
}

// iterate returns false inside a child process that was started for
// another task.
func (e *engine) iterate(path []string, name string, iterations int, f func(*Run)) (*Run, bool) {
	task := e.nextTask(path)
	log := e.logger.With("benchmark", strings.Join(path, "/"))

	adaptive := iterations == 0
	limit := iterations
	if adaptive {
		limit = DefaultIterations
	}
	if e.config.Quick {
		limit = 1
	}
	budget := e.config.budget()

	if !e.child {
		log.Debug("benchmark started", "limit", limit, "adaptive", adaptive, "budget", budget, "isolated", e.isolated())
	}

	monitor := e.isolated()
	runs := make([]Run, 0, limit)
	spread := stats.NewRecorder()
	start := time.Now()

	for i := 0; i < limit; i++ {
		run, err := isolate.Fork(context.Background(), e.runner, task, func() Run {
			return execute(name, monitor, f)
		})
		if errors.Is(err, isolate.ErrSkipped) {
			return nil, false
		}
		if err != nil {
			panic(fmt.Errorf("benchmark %q: %w", strings.Join(path, "/"), err))
		}

		runs = append(runs, run)
		spread.Record(run.Time)

		elapsed := time.Since(start)
		log.Debug("iteration finished", "iteration", i+1, "time", run.Time, "elapsed", elapsed)

		if adaptive && elapsed >= budget {
			if i+1 < limit {
				log.Debug("iteration budget exhausted", "iterations", i+1, "budget", budget)
			}
			break
		}
	}

	avg := average(name, runs)
	avg.spread = spread.Summary()
	log.Debug("benchmark finished", "iterations", avg.iterations, "time", avg.Time, "spread", avg.spread)

	return avg, true
}

// execute is one iteration, run inside the child process.
func execute(name string, monitor bool, f func(*Run)) Run {
	var stop memory.Stop
	if monitor {
		stop = memory.Monitor()
	}

	run := newRun(name, monitor)
	f(run)

	if stop != nil {
		used, ok := stop()
		if _, logged := run.Metrics[MetricMemoryUsage]; ok && !logged {
			run.Log(MetricMemoryUsage, used)
		}
	}
	return *run
}

// average merges iteration results: the mean time, and for every metric the
// mean over the iterations that logged it.
func average(name string, runs []Run) *Run {
	if len(runs) == 0 {
		panic(fmt.Sprintf("benchy: no runs to average for %q", name))
	}

	var total time.Duration
	sums := map[string]uint64{}
	counts := map[string]uint64{}
	for _, r := range runs {
		total += r.Time
		for k, v := range r.Metrics {
			sums[k] += v
			counts[k]++
		}
	}

	avg := newRun(name, false)
	avg.Time = total / time.Duration(len(runs))
	for k, sum := range sums {
		avg.Metrics[k] = sum / counts[k]
	}
	avg.iterations = len(runs)
	return avg
}
