// Package runnertest provides a scripted runner.Exec for tests.
package runnertest

import (
	"context"
	"strings"
	"sync"

	"github.com/sanyoog/retro-cam/internal/runner"
)

// Reply is the scripted result of one command.
type Reply struct {
	Out string
	Err error
}

// Fake records every command it is asked to run and answers from a
// script keyed by the plain command line ("git status --short").
// Commands without a scripted reply return "" and nil. A key with
// several replies hands them out in order and repeats the last one.
type Fake struct {
	mu      sync.Mutex
	replies map[string][]Reply
	calls   []runner.Command
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{replies: make(map[string][]Reply)}
}

// On appends replies for the command line key.
func (f *Fake) On(key string, replies ...Reply) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[key] = append(f.replies[key], replies...)
	return f
}

// Run implements runner.Exec.
func (f *Fake) Run(ctx context.Context, cmd runner.Command) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, cmd)

	key := Key(cmd)
	rs := f.replies[key]
	if len(rs) == 0 {
		return "", nil
	}
	r := rs[0]
	if len(rs) > 1 {
		f.replies[key] = rs[1:]
	}
	return r.Out, r.Err
}

// Calls returns the plain command lines run so far.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = Key(c)
	}
	return out
}

// Commands returns the commands run so far, including their Check flag.
func (f *Fake) Commands() []runner.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]runner.Command(nil), f.calls...)
}

// Key joins the command name and arguments with single spaces.
func Key(cmd runner.Command) string {
	return strings.Join(append([]string{cmd.Name}, cmd.Args...), " ")
}
