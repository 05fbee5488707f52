package main

import (
	"fmt"
	"os"
	"runtime/debug"
)

func main() {
	// Benchmark failures surface as panics; report them and exit non-zero.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n=== CRITICAL ERROR: Benchmark Panic ===\n")
			fmt.Fprintf(os.Stderr, "Error: %v\n\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	Execute()
}
