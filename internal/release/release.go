// Package release runs the push-and-watch sequence: stage, commit,
// push, retag, then follow the CI run started for the tag.
package release

import (
	"context"
	"fmt"
	"time"

	"github.com/sanyoog/retro-cam/internal/ci"
	"github.com/sanyoog/retro-cam/internal/config"
	"github.com/sanyoog/retro-cam/internal/git"
	"github.com/sanyoog/retro-cam/internal/monitor"
)

// Outcome values recorded for a sequence.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeTimeout = "timeout"
	OutcomeNone    = "none" // no matching run was watched
)

// Options select a partial sequence.
type Options struct {
	SkipCommit bool
	SkipPush   bool
	NoWatch    bool
}

// Report summarizes a finished sequence.
type Report struct {
	Outcome    string
	RunID      int64
	Conclusion string
	URL        string
	Elapsed    time.Duration
	ExitCode   int
}

// Release wires the clients and settings of one sequence.
type Release struct {
	Git     *git.Client
	CI      *ci.Client
	Config  config.Config
	Console *Console
	Sleep   monitor.Sleeper // nil = real sleep
}

// Run executes the sequence. Failing steps are reported on the console
// and the sequence carries on; the only error returned is ctx's.
func (r *Release) Run(ctx context.Context, opts Options) (Report, error) {
	out := r.Console
	cfg := r.Config
	rep := Report{Outcome: OutcomeNone, URL: ci.ActionsURL(cfg.Repo)}

	out.Section("🔍", "Checking git status...")
	if status, err := r.Git.Status(ctx); err == nil {
		if status == "" {
			status = "Working tree clean"
		}
		out.Line("%s", status)
	}
	if err := ctx.Err(); err != nil {
		return rep, err
	}

	out.Section("📝", "Last commit:")
	if last, err := r.Git.LastCommit(ctx); err == nil {
		out.Line("%s", last)
	}

	if !opts.SkipCommit {
		if err := r.commit(ctx); err != nil {
			return rep, err
		}
	}

	if !opts.SkipPush {
		if err := r.push(ctx); err != nil {
			return rep, err
		}
	}

	if !opts.NoWatch {
		done, err := r.watch(ctx, &rep)
		if err != nil || done {
			return rep, err
		}
	}

	out.Section("✅", "Done! Check status at: "+ci.ActionsURL(cfg.Repo))
	return rep, nil
}

func (r *Release) commit(ctx context.Context) error {
	out := r.Console
	out.Section("➕", "Staging changes...")
	for _, p := range r.Config.Stage {
		if _, err := r.Git.Add(ctx, p); err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
	}

	out.Section("💾", "Committing changes...")
	msg, err := r.Git.Commit(ctx, r.Config.CommitMessage)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err == nil && msg != "" {
		out.Line("%s", msg)
	} else {
		out.Line("No changes to commit")
	}
	return nil
}

func (r *Release) push(ctx context.Context) error {
	out := r.Console
	cfg := r.Config

	out.Section("🚀", fmt.Sprintf("Pushing to %s...", cfg.Branch))
	if msg, err := r.Git.Push(ctx, cfg.Remote, cfg.Branch); err == nil {
		out.Line("%s", orDefault(msg, "Pushed successfully"))
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	out.Section("🏷️ ", "Creating tag...")
	r.Git.Retag(ctx, cfg.Tag)
	if err := ctx.Err(); err != nil {
		return err
	}

	out.Section("📤", "Pushing tag...")
	if msg, err := r.Git.PushTag(ctx, cfg.Remote, cfg.Tag, cfg.ForceTag); err == nil {
		out.Line("%s", orDefault(msg, "Tag pushed successfully"))
	}
	return ctx.Err()
}

// watch lists recent runs and follows the first active run for the
// tag. done reports a decisive outcome that ends the sequence.
func (r *Release) watch(ctx context.Context, rep *Report) (done bool, err error) {
	out := r.Console
	cfg := r.Config

	out.Section("⏳", "Waiting for GitHub Actions to start...")
	err = monitor.Warmup(ctx, cfg.Warmup.Rounds, cfg.Warmup.Interval.Std(), r.Sleep, func(waited time.Duration) {
		out.Line("   Waiting... %ds", int(waited.Seconds()))
	})
	if err != nil {
		return false, err
	}

	out.Section("📊", "Checking recent workflow runs...")
	runs, err := r.CI.ListRuns(ctx, cfg.RunLimit)
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return false, nil
	}

	for _, run := range runs {
		out.Line("%s %s [%s] - %s", out.RunMarker(run.State()), run.DisplayTitle, run.HeadBranch, run.Status)
		if !ci.Active(run.Status) || run.HeadBranch != cfg.Tag {
			continue
		}
		return r.follow(ctx, run.DatabaseID, rep)
	}
	return false, nil
}

func (r *Release) follow(ctx context.Context, id int64, rep *Report) (bool, error) {
	out := r.Console
	cfg := r.Config

	out.Section("🔍", fmt.Sprintf("Monitoring build %d...", id))
	out.Rule(60)

	w := monitor.NewWatcher(r.CI)
	w.MaxChecks = cfg.Poll.MaxChecks
	w.Interval = cfg.Poll.Interval.Std()
	if r.Sleep != nil {
		w.Sleep = r.Sleep
	}
	w.Progress = func(elapsed time.Duration, status, conclusion string) {
		out.Line("[%ds] Status: %s | Conclusion: %s", int(elapsed.Seconds()), status, conclusion)
	}

	res, err := w.Watch(ctx, id)
	rep.RunID = id
	rep.URL = ci.RunURL(cfg.Repo, id)
	rep.Elapsed = res.Elapsed
	rep.Conclusion = res.Conclusion
	if err != nil {
		return false, err
	}

	switch res.Outcome {
	case monitor.OutcomeSuccess:
		rep.Outcome = OutcomeSuccess
		out.Section("✅", "BUILD SUCCESSFUL!")
		return true, nil
	case monitor.OutcomeFailure:
		rep.Outcome = OutcomeFailure
		rep.ExitCode = 1
		out.Section("❌", "BUILD FAILED with conclusion: "+res.Conclusion)
		out.Section("📋", "Fetching error logs...")
		if logs, err := r.CI.FailedLogs(ctx, id); err == nil && logs != "" {
			out.Line("%s", ci.Truncate(logs, cfg.LogLimit))
		}
		return true, ctx.Err()
	default:
		rep.Outcome = OutcomeTimeout
		out.Section("⏰", "Timeout reached. Check manually at:")
		out.Line("   %s", rep.URL)
		return false, nil
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
