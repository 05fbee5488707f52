//go:build !unix

package isolate

import (
	"context"
	"fmt"
	"runtime"
)

const supported = false

func (r *Runner) spawn(context.Context, string) ([]byte, error) {
	return nil, fmt.Errorf("process isolation is not supported on %s", runtime.GOOS)
}

func serve[T any](f func() T) {
	panic("isolate: child processes are not supported on " + runtime.GOOS)
}
