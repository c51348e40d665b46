// Package runner executes external command-line tools in a fixed
// working directory and captures their output.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"al.essio.dev/pkg/shellescape"
)

// Command is a single invocation of an external tool. When Check is set
// a non-zero exit status is reported and returned as an error; otherwise
// the captured stdout is returned regardless of exit status.
type Command struct {
	Name  string
	Args  []string
	Check bool
}

// Cmd builds a checked Command.
func Cmd(name string, args ...string) Command {
	return Command{Name: name, Args: args, Check: true}
}

// Unchecked returns a copy of c that tolerates a non-zero exit status.
func (c Command) Unchecked() Command {
	c.Check = false
	return c
}

// String renders the command line shell-quoted, for messages.
func (c Command) String() string {
	return shellescape.QuoteCommand(append([]string{c.Name}, c.Args...))
}

// Exec runs commands. Runner is the real implementation; tests
// substitute fakes.
type Exec interface {
	Run(ctx context.Context, cmd Command) (string, error)
}

// ExitError reports a checked command that exited non-zero.
type ExitError struct {
	Command string
	Code    int
	Stderr  string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s: exit status %d", e.Command, e.Code)
}

// Runner runs commands with Dir as the working directory. Failures of
// checked commands are printed to Report (os.Stderr when nil).
type Runner struct {
	Dir    string
	Env    []string // extra KEY=VALUE pairs appended to the environment
	Report io.Writer
}

// New returns a Runner rooted at dir.
func New(dir string) *Runner {
	return &Runner{Dir: dir}
}

// Run executes cmd and returns its stdout with surrounding whitespace
// trimmed. A command that cannot be started is always an error.
func (r *Runner) Run(ctx context.Context, cmd Command) (string, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = r.Dir
	if len(r.Env) > 0 {
		c.Env = append(os.Environ(), r.Env...)
	}
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	out := strings.TrimSpace(stdout.String())
	if err == nil {
		return out, nil
	}

	if ctx.Err() != nil {
		return "", fmt.Errorf("%s: %w", cmd, ctx.Err())
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return "", fmt.Errorf("%s: %w", cmd, err)
	}
	if !cmd.Check {
		return out, nil
	}

	e := &ExitError{Command: cmd.String(), Code: exitErr.ExitCode(), Stderr: stderr.String()}
	w := r.Report
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, "ERROR: %s\n", e.Command)
	fmt.Fprintf(w, "STDERR: %s\n", e.Stderr)
	return "", e
}
