// Package memory samples the resident set size of the current process.
//
// The figures are only meaningful together with process isolation: a child
// process starts fresh, so its baseline and peak describe a single benchmark
// iteration and everything is released when the child exits. Run in-process,
// the numbers accumulate across iterations.
package memory

import (
	"os"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// SampleInterval is the polling period of the background sampler.
const SampleInterval = time.Millisecond

// Sampler returns the current memory usage in bytes.
type Sampler func() (uint64, error)

// Stop ends a monitoring session and returns the peak usage above the
// baseline. ok is false when no reading could be taken.
type Stop func() (used uint64, ok bool)

// Monitor starts sampling this process's RSS.
func Monitor() Stop {
	return MonitorWith(processRSS())
}

// MonitorWith reads the baseline with sample before returning, then keeps
// sampling in the background. The returned Stop joins the sampler; calling it
// more than once returns the first result.
func MonitorWith(sample Sampler) Stop {
	base, err := sample()
	if err != nil {
		return func() (uint64, bool) { return 0, false }
	}

	done := make(chan struct{})
	result := make(chan uint64, 1)

	go func() {
		result <- track(sample, base, done)
	}()

	return sync.OnceValues(func() (uint64, bool) {
		close(done)
		return <-result - base, true
	})
}

// track returns the highest reading seen until done is closed, never less
// than base.
func track(sample Sampler, base uint64, done <-chan struct{}) uint64 {
	highest := base
	observe := func() {
		if v, err := sample(); err == nil && v > highest {
			highest = v
		}
	}

	ticker := time.NewTicker(SampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			observe()
			return highest
		case <-ticker.C:
			observe()
		}
	}
}

func processRSS() Sampler {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return func() (uint64, error) { return 0, err }
	}

	return func() (uint64, error) {
		info, err := proc.MemoryInfo()
		if err != nil {
			return 0, err
		}
		return info.RSS, nil
	}
}
