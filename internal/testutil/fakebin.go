// Package testutil provides fake external tools for tests that exercise
// code shelling out to the aircrack-ng suite.
package testutil

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// hostUtilities are linked into every fake bin so scripts can use them.
var hostUtilities = []string{"sh", "sleep", "cat"}

// Bin is a directory of fake executables that replaces PATH for one test.
type Bin struct {
	t   testing.TB
	Dir string
}

// NewBin creates an empty bin and points PATH at it. Only the host
// utilities the scripts need are reachable.
func NewBin(t testing.TB) *Bin {
	t.Helper()

	dir := t.TempDir()
	for _, name := range hostUtilities {
		path, err := exec.LookPath(name)
		if err != nil {
			t.Skipf("%s not available: %v", name, err)
		}
		if err := os.Symlink(path, filepath.Join(dir, name)); err != nil {
			t.Fatalf("link %s: %v", name, err)
		}
	}
	t.Setenv("PATH", dir)
	return &Bin{t: t, Dir: dir}
}

// Add installs a shell script under name. Every invocation is appended to
// the call log before the script body runs.
func (b *Bin) Add(name, body string) {
	b.t.Helper()

	script := fmt.Sprintf("#!/bin/sh\nprintf '%%s %%s\\n' %q \"$*\" >> %q\n%s\n", name, b.logPath(), body)
	if err := os.WriteFile(filepath.Join(b.Dir, name), []byte(script), 0o755); err != nil {
		b.t.Fatalf("write fake %s: %v", name, err)
	}
}

// Calls returns the logged invocations of name, one argument string each.
func (b *Bin) Calls(name string) []string {
	b.t.Helper()

	data, err := os.ReadFile(b.logPath())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		b.t.Fatalf("read call log: %v", err)
	}

	var calls []string
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		if args, ok := strings.CutPrefix(line, name+" "); ok {
			calls = append(calls, args)
		}
	}
	return calls
}

func (b *Bin) logPath() string {
	return filepath.Join(b.Dir, "calls.log")
}
