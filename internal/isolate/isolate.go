// Package isolate runs a unit of work in a separate OS process and ships its
// result back to the caller.
//
// Go cannot fork a running runtime, so a child is created by re-executing the
// current binary with the same arguments and [EnvTask] set to the task id.
// The program walks through its registration code again; the [Fork] call whose
// task matches serves the closure, writes the JSON-encoded result to fd 3 and
// exits. Every other [Fork] call in the child returns [ErrSkipped].
//
// The parent classifies the child's termination three ways: a result was
// received, the closure panicked (the child sent the "panic" token), or the
// child exited without sending anything (crash, OOM kill, signal).
//
// On platforms without this capability [Fork] calls the closure in-process.
// There is no panic or crash containment in that mode.
package isolate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"
)

// EnvTask marks a child process and names the task it serves.
const EnvTask = "BENCHY_ISOLATE_TASK"

const (
	panicToken = "panic"

	// maxPayload bounds a single result read from the pipe.
	maxPayload = 8092

	// childFD is the descriptor the result pipe occupies in the child
	// (first entry of exec.Cmd.ExtraFiles).
	childFD = 3
)

var (
	// ErrPanicked reports that the closure panicked inside the child.
	ErrPanicked = errors.New("benchmark function panicked")

	// ErrExited reports that the child terminated without sending a result.
	ErrExited = errors.New("benchmark process exited without reporting a result; it likely ran out of memory and was killed")

	// ErrSkipped is returned inside a child process for every task other than
	// the one the child was started for.
	ErrSkipped = errors.New("task not selected in this process")

	// ErrPayloadTooLarge reports a result that does not fit the pipe buffer.
	ErrPayloadTooLarge = fmt.Errorf("result exceeds %d bytes", maxPayload)
)

// Runner holds the settings used to start child processes.
// The zero value re-executes os.Args with test-harness output flags removed.
type Runner struct {
	// Path is the executable to start. Defaults to os.Executable().
	Path string

	// Args replaces the child's command line arguments (without argv[0]).
	Args []string

	// Env is appended to the parent's environment.
	Env []string

	// Stderr receives the child's stdout and stderr. Defaults to os.Stderr.
	Stderr io.Writer

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// InProcess disables isolation and runs closures directly.
	InProcess bool
}

// ExitError describes a child that terminated without reporting a result.
type ExitError struct {
	Task   string
	Status string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("task %q: %v (%s)", e.Task, ErrExited, e.Status)
}

func (e *ExitError) Unwrap() error { return ErrExited }

// Supported reports whether child processes can be used on this platform.
func Supported() bool { return supported }

// CurrentTask returns the task this process was started for, if it is a child.
func CurrentTask() (string, bool) {
	if !supported {
		return "", false
	}
	task, ok := os.LookupEnv(EnvTask)
	return task, ok && task != ""
}

var downgradeOnce sync.Once

// Fork runs f in a child process and returns its decoded result.
//
// T must round-trip through encoding/json. Inside a child process Fork either
// serves f (and never returns) or returns ErrSkipped.
func Fork[T any](ctx context.Context, r *Runner, task string, f func() T) (T, error) {
	var zero T

	if current, ok := CurrentTask(); ok {
		if current != task {
			return zero, ErrSkipped
		}
		serve(f)
	}

	if r == nil {
		r = &Runner{}
	}

	if r.InProcess {
		return f(), nil
	}

	if !supported {
		downgradeOnce.Do(func() {
			r.logger().Warn("process isolation unavailable, running benchmarks in-process", "goos", runtime.GOOS)
		})
		return f(), nil
	}

	data, err := r.spawn(ctx, task)
	if err != nil {
		return zero, err
	}

	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return zero, fmt.Errorf("decode result of task %q: %w", task, err)
	}

	return out, nil
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}

func (r *Runner) executable() (string, error) {
	if r.Path != "" {
		return r.Path, nil
	}
	path, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	return path, nil
}

func (r *Runner) args() []string {
	if r.Args != nil {
		return r.Args
	}
	return ChildArgs(os.Args[1:])
}

// droppedTestFlags are go test harness flags that must not reach a child.
// paniconexit0 would turn the child's os.Exit(0) into a panic; the others
// would make the child overwrite the parent's profile and coverage files.
var droppedTestFlags = []string{
	"test.paniconexit0",
	"test.coverprofile",
	"test.cpuprofile",
	"test.memprofile",
	"test.blockprofile",
	"test.mutexprofile",
	"test.trace",
	"test.testlogfile",
	"test.gocoverdir",
}

// ChildArgs filters args for re-execution in a child process.
func ChildArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		name := strings.TrimLeft(arg, "-")
		name, _, _ = strings.Cut(name, "=")
		if strings.HasPrefix(arg, "-") && isDroppedTestFlag(name) {
			continue
		}
		out = append(out, arg)
	}
	return out
}

func isDroppedTestFlag(name string) bool {
	for _, f := range droppedTestFlags {
		if name == f {
			return true
		}
	}
	return false
}

// classify turns the bytes received from a child into a result or an error.
func classify(task string, data []byte, received bool, status string) ([]byte, error) {
	if !received || len(data) == 0 {
		return nil, &ExitError{Task: task, Status: status}
	}
	if string(data) == panicToken {
		return nil, fmt.Errorf("task %q: %w (%s)", task, ErrPanicked, status)
	}
	return data, nil
}
