//go:build unix

package isolate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

const supported = true

// drainTimeout bounds the final pipe read after the child has exited. The
// write end may still be held open by a grandchild that inherited it.
const drainTimeout = 250 * time.Millisecond

// Exit codes used by a child that fails outside the closure.
const (
	exitEncode = 3
	exitWrite  = 4
)

type payload struct {
	data []byte
	err  error
}

func (r *Runner) spawn(ctx context.Context, task string) ([]byte, error) {
	path, err := r.executable()
	if err != nil {
		return nil, err
	}

	rd, wr, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("create result pipe: %w", err)
	}
	defer rd.Close()

	cmd := exec.CommandContext(ctx, path, r.args()...)
	cmd.Env = append(append(os.Environ(), r.Env...), EnvTask+"="+task)
	cmd.Stdout = r.stderr()
	cmd.Stderr = r.stderr()
	cmd.ExtraFiles = []*os.File{wr}

	if err := cmd.Start(); err != nil {
		wr.Close()
		return nil, fmt.Errorf("start child for task %q: %w", task, err)
	}
	wr.Close()

	log := r.logger().With("task", task, "pid", cmd.Process.Pid)
	log.Debug("isolated run started")

	var received atomic.Bool
	readDone := make(chan payload, 1)
	go func() {
		data, err := readPayload(rd, &received)
		readDone <- payload{data: data, err: err}
	}()

	exited := make(chan struct{})
	go func() {
		// The exit status is read from cmd.ProcessState below.
		_ = cmd.Wait()
		close(exited)
	}()

	var res payload
	select {
	case res = <-readDone:
		<-exited
	case <-exited:
		// Whatever the child wrote before exiting is still buffered.
		_ = rd.SetReadDeadline(time.Now().Add(drainTimeout))
		res = <-readDone
	}

	status := describeExit(cmd.ProcessState)
	log.Debug("isolated run finished", "status", status, "bytes", len(res.data))

	if res.err != nil && !errors.Is(res.err, os.ErrDeadlineExceeded) {
		return nil, fmt.Errorf("read result of task %q: %w", task, res.err)
	}

	return classify(task, res.data, received.Load(), status)
}

// readPayload reads until EOF, marking received as soon as the first byte
// arrives.
func readPayload(r io.Reader, received *atomic.Bool) ([]byte, error) {
	buf := make([]byte, maxPayload+1)
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		if m > 0 {
			received.Store(true)
			n += m
		}
		if errors.Is(err, io.EOF) {
			return buf[:n], nil
		}
		if err != nil {
			return buf[:n], err
		}
	}
	return nil, ErrPayloadTooLarge
}

func describeExit(state *os.ProcessState) string {
	if state == nil {
		return "unknown exit status"
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return "killed by " + unix.SignalName(ws.Signal())
	}
	return fmt.Sprintf("exit status %d", state.ExitCode())
}

// serve runs f as the selected task of a child process and exits.
func serve[T any](f func() T) {
	w := os.NewFile(childFD, "benchy-result")
	unix.CloseOnExec(childFD)

	out := guarded(w, f)

	data, err := json.Marshal(out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "benchy: encode result: %v\n", err)
		os.Exit(exitEncode)
	}
	if len(data) > maxPayload {
		fmt.Fprintf(os.Stderr, "benchy: %v\n", ErrPayloadTooLarge)
		os.Exit(exitEncode)
	}
	if _, err := w.Write(data); err != nil {
		fmt.Fprintf(os.Stderr, "benchy: write result: %v\n", err)
		os.Exit(exitWrite)
	}
	w.Close()

	os.Exit(0)
}

// guarded calls f, sending the panic token before a panic propagates.
func guarded[T any](w io.Writer, f func() T) T {
	defer func() {
		if rec := recover(); rec != nil {
			_, _ = w.Write([]byte(panicToken))
			panic(rec)
		}
	}()
	return f()
}
