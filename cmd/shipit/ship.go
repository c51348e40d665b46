package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/sanyoog/retro-cam/internal/ci"
	"github.com/sanyoog/retro-cam/internal/config"
	"github.com/sanyoog/retro-cam/internal/eventlog"
	"github.com/sanyoog/retro-cam/internal/git"
	"github.com/sanyoog/retro-cam/internal/notifier"
	"github.com/sanyoog/retro-cam/internal/paths"
	"github.com/sanyoog/retro-cam/internal/release"
	"github.com/sanyoog/retro-cam/internal/runner"
)

const (
	outcomeInterrupted = "interrupted"
	notifyTimeout      = 30 * time.Second
)

// ShipCmd runs the push-and-watch sequence.
type ShipCmd struct {
	SkipCommit bool `name:"skip-commit" help:"Do not stage or commit"`
	SkipPush   bool `name:"skip-push" help:"Do not push the branch or move the tag"`
	NoWatch    bool `name:"no-watch" help:"Do not wait for the CI run"`
}

func (s *ShipCmd) Run(cli *CLI) error {
	cfg, source, err := config.Load(cli.Config)
	if err != nil {
		return &exitError{code: exitConfig, err: err}
	}
	if err := cfg.Validate(); err != nil {
		if source == "" {
			source = "defaults"
		}
		return &exitError{code: exitConfig, err: fmt.Errorf("invalid config (%s): %w", source, err)}
	}

	workdir := cfg.Workdir
	if workdir == "" {
		workdir = "."
	}
	if err := config.LoadEnv(workdir); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := runner.New(cfg.Workdir)
	r.Report = os.Stderr
	rel := &release.Release{
		Git:     git.New(r),
		CI:      ci.New(r, cfg.Repo),
		Config:  cfg,
		Console: release.NewConsole(os.Stdout, term.IsTerminal(int(os.Stdout.Fd()))),
	}

	start := time.Now()
	rep, runErr := rel.Run(ctx, release.Options{
		SkipCommit: s.SkipCommit,
		SkipPush:   s.SkipPush,
		NoWatch:    s.NoWatch,
	})
	if runErr != nil {
		rep.Outcome = outcomeInterrupted
		rep.ExitCode = exitInterrupt
		fmt.Fprintln(os.Stderr, "\nInterrupted.")
	}

	if runErr == nil {
		notify(os.Stderr, notifier.New(cfg.Notify), eventFor(cfg, rep, start))
	}
	if cfg.History {
		record(os.Stderr, cfg, rep, start)
	}

	if rep.ExitCode != 0 {
		return &exitError{code: rep.ExitCode}
	}
	return nil
}

// sender is satisfied by *notifier.Notifier.
type sender interface {
	Enabled() bool
	Send(ctx context.Context, ev notifier.Event) error
}

// notify announces decisive outcomes. Failures are warnings only.
func notify(warn io.Writer, n sender, ev notifier.Event) {
	if !n.Enabled() || !notifiable(ev.Outcome) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	if err := n.Send(ctx, ev); err != nil {
		fmt.Fprintf(warn, "warning: notify: %v\n", err)
	}
}

func notifiable(outcome string) bool {
	switch outcome {
	case release.OutcomeSuccess, release.OutcomeFailure, release.OutcomeTimeout:
		return true
	}
	return false
}

func eventFor(cfg config.Config, rep release.Report, start time.Time) notifier.Event {
	ev := notifier.Event{
		Time:       start,
		Repo:       cfg.Repo,
		Branch:     cfg.Branch,
		Tag:        cfg.Tag,
		RunID:      rep.RunID,
		Outcome:    rep.Outcome,
		Conclusion: rep.Conclusion,
		URL:        rep.URL,
	}
	if rep.Elapsed > 0 {
		ev.Elapsed = rep.Elapsed.String()
	}
	return ev
}

func entryFor(cfg config.Config, rep release.Report, start time.Time) eventlog.Entry {
	return eventlog.Entry{
		Time:       start,
		Repo:       cfg.Repo,
		Branch:     cfg.Branch,
		Tag:        cfg.Tag,
		RunID:      rep.RunID,
		Outcome:    rep.Outcome,
		Conclusion: rep.Conclusion,
		Elapsed:    time.Since(start),
		ExitCode:   rep.ExitCode,
	}
}

// record appends the invocation to the history database. Failures are
// warnings only.
func record(warn io.Writer, cfg config.Config, rep release.Report, start time.Time) {
	store, err := eventlog.NewSQLiteStore(paths.HistoryPath())
	if err != nil {
		fmt.Fprintf(warn, "warning: history: %v\n", err)
		return
	}
	defer store.Close()
	if err := store.Record(entryFor(cfg, rep, start)); err != nil {
		fmt.Fprintf(warn, "warning: history: %v\n", err)
	}
}
