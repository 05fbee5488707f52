package main

import (
	"os"
	"path/filepath"
	"testing"
)

// chdirTest changes the working directory to dir for the duration of the
// test, restoring it on cleanup. It mirrors testing.T.Chdir (Go 1.24+) for
// toolchains that predate it.
func chdirTest(t *testing.T, dir string) {
	t.Helper()
	if !filepath.IsAbs(dir) {
		abs, err := filepath.Abs(dir)
		if err != nil {
			t.Fatal(err)
		}
		dir = abs
	}
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	// t.Setenv also forbids use in parallel tests, as t.Chdir does.
	t.Setenv("PWD", dir)
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldwd); err != nil {
			panic("testing.Chdir: " + err.Error())
		}
	})
}
