// Package mdbtest provides a scripted mdb.Runner for tests.
package mdbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Runner answers commands from a fixed script keyed by "tool arg1 arg2 ...".
// The database path argument is dropped from the key. Unknown commands fail.
type Runner struct {
	Outputs map[string]string
	Errors  map[string]error

	mu    sync.Mutex
	Calls []string
}

// New returns an empty script.
func New() *Runner {
	return &Runner{
		Outputs: make(map[string]string),
		Errors:  make(map[string]error),
	}
}

// On registers the output for a command.
func (r *Runner) On(key, output string) *Runner {
	r.Outputs[key] = output
	return r
}

// Fail registers an error for a command.
func (r *Runner) Fail(key string, err error) *Runner {
	r.Errors[key] = err
	return r
}

func (r *Runner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	key := Key(name, args...)

	r.mu.Lock()
	r.Calls = append(r.Calls, key)
	r.mu.Unlock()

	if err, ok := r.Errors[key]; ok {
		return nil, err
	}
	if out, ok := r.Outputs[key]; ok {
		return []byte(out), nil
	}
	if name != "" && len(args) == 1 && args[0] == "--version" {
		return []byte("mdbtools v1.0.0\n"), nil
	}
	return nil, fmt.Errorf("unscripted command: %s", key)
}

// Key builds the lookup key for a call. A leading argument ending in an
// Access extension is treated as the database path and skipped.
func Key(name string, args ...string) string {
	if len(args) > 0 && isDatabasePath(args[0]) {
		args = args[1:]
	}
	return strings.TrimSpace(name + " " + strings.Join(args, " "))
}

func isDatabasePath(s string) bool {
	l := strings.ToLower(s)
	return strings.HasSuffix(l, ".mdb") || strings.HasSuffix(l, ".accdb")
}
