// shipit stages, commits and pushes the working tree, moves the release
// tag, then follows the GitHub Actions run started for the tag.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// Exit codes besides 0 and the build-failure code 1.
const (
	exitConfig    = 2
	exitInterrupt = 130
)

// CLI is the shipit command line.
type CLI struct {
	Config  string           `short:"c" help:"Config file (.json, .yaml or .yml)" type:"path"`
	Version kong.VersionFlag `name:"version" short:"V" help:"Show version and exit"`

	Ship    ShipCmd    `cmd:"" default:"withargs" help:"Commit, push, tag and watch the CI run (default)"`
	History HistoryCmd `cmd:"" help:"Show or prune the invocation history"`
}

// exitError carries a process exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("shipit"),
		kong.Description("Push the release tag and watch its CI build."),
		kong.Vars{"version": version + " (" + buildDate + ")"},
	)
	err := ctx.Run(&cli)
	if err != nil {
		var ee *exitError
		if !errors.As(err, &ee) || ee.err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	os.Exit(exitCode(err))
}
