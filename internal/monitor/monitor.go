// Package monitor polls a CI run until it finishes or the attempt
// budget runs out.
package monitor

import (
	"context"
	"time"

	"github.com/sanyoog/retro-cam/internal/ci"
)

const (
	DefaultMaxChecks      = 30
	DefaultInterval       = 10 * time.Second
	DefaultWarmupRounds   = 3
	DefaultWarmupInterval = 3 * time.Second
)

// Sleeper pauses for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the real Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// StatusSource reports the status and conclusion of a run.
type StatusSource interface {
	RunStatus(ctx context.Context, id int64) (status, conclusion string, err error)
}

// Outcome is how a watch ended.
type Outcome int

const (
	OutcomeTimeout Outcome = iota
	OutcomeSuccess
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	default:
		return "timeout"
	}
}

// Result describes a finished watch.
type Result struct {
	Outcome    Outcome
	Status     string
	Conclusion string
	Checks     int           // status queries attempted
	Elapsed    time.Duration // checks × interval
}

// Watcher polls a run at a fixed interval for at most MaxChecks
// attempts. Each attempt sleeps first, then queries.
type Watcher struct {
	Source    StatusSource
	MaxChecks int
	Interval  time.Duration
	Sleep     Sleeper

	// Progress, when set, is called after every successful query.
	Progress func(elapsed time.Duration, status, conclusion string)
}

// NewWatcher returns a Watcher with the default budget.
func NewWatcher(src StatusSource) *Watcher {
	return &Watcher{
		Source:    src,
		MaxChecks: DefaultMaxChecks,
		Interval:  DefaultInterval,
		Sleep:     Sleep,
	}
}

// Watch polls run id. A query that fails or returns an incomplete
// answer still uses up its attempt. Running out of attempts is reported
// as OutcomeTimeout, not as an error; the only error is ctx's.
func (w *Watcher) Watch(ctx context.Context, id int64) (Result, error) {
	sleep := w.Sleep
	if sleep == nil {
		sleep = Sleep
	}
	var res Result
	for check := 0; check < w.MaxChecks; check++ {
		if err := sleep(ctx, w.Interval); err != nil {
			return res, err
		}
		res.Checks = check + 1
		res.Elapsed = time.Duration(check+1) * w.Interval

		status, conclusion, err := w.Source.RunStatus(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			continue
		}
		res.Status, res.Conclusion = status, conclusion
		if w.Progress != nil {
			w.Progress(res.Elapsed, status, conclusion)
		}
		if status != ci.StatusCompleted {
			continue
		}
		if conclusion == ci.ConclusionSuccess {
			res.Outcome = OutcomeSuccess
		} else {
			res.Outcome = OutcomeFailure
		}
		return res, nil
	}
	res.Outcome = OutcomeTimeout
	return res, nil
}

// Warmup sleeps rounds times for interval each, calling tick with the
// total time waited after every round.
func Warmup(ctx context.Context, rounds int, interval time.Duration, sleep Sleeper, tick func(waited time.Duration)) error {
	if sleep == nil {
		sleep = Sleep
	}
	for i := 0; i < rounds; i++ {
		if err := sleep(ctx, interval); err != nil {
			return err
		}
		if tick != nil {
			tick(time.Duration(i+1) * interval)
		}
	}
	return nil
}
