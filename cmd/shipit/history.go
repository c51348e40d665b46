package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sanyoog/retro-cam/internal/eventlog"
	"github.com/sanyoog/retro-cam/internal/paths"
	"github.com/sanyoog/retro-cam/internal/release"
)

// HistoryCmd lists or prunes recorded invocations.
type HistoryCmd struct {
	Limit int  `short:"n" help:"Number of entries to show" default:"10"`
	Clear bool `help:"Remove every entry"`
	Clean int  `help:"Remove entries older than N days" placeholder:"DAYS"`
}

const colTag = 28 // width of the tag column

func (h *HistoryCmd) Run() error {
	if h.Limit <= 0 {
		return fmt.Errorf("limit must be a positive integer")
	}
	if h.Clean < 0 {
		return fmt.Errorf("days must be a positive integer")
	}
	store, err := eventlog.NewSQLiteStore(paths.HistoryPath())
	if err != nil {
		return err
	}
	defer store.Close()
	return h.exec(os.Stdout, store, time.Now())
}

func (h *HistoryCmd) exec(w io.Writer, store eventlog.Store, now time.Time) error {
	switch {
	case h.Clear:
		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(w, "History cleared.")
		return nil
	case h.Clean > 0:
		n, err := store.Clean(h.Clean)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Removed %d entries (kept last %d days).\n", n, h.Clean)
		return nil
	}

	entries, err := store.Entries(h.Limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "No history yet.")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintln(w, formatEntry(e, now))
	}
	return nil
}

// formatEntry renders one history line:
// when, outcome, tag, run id and how long the invocation took.
func formatEntry(e eventlog.Entry, now time.Time) string {
	run := "-"
	if e.RunID != 0 {
		run = "#" + strconv.FormatInt(e.RunID, 10)
	}
	return fmt.Sprintf("%s  %s  %s  %s  %s",
		padR(humanize.RelTime(e.Time, now, "ago", "from now"), 16),
		colorPadR(outcomeColor(e.Outcome), e.Outcome, 11),
		padR(e.Tag, colTag),
		padR(run, 12),
		dim(e.Elapsed.Round(time.Second).String()),
	)
}

// --- ANSI color helpers (disabled when NO_COLOR env var is set) ---

var noColor = os.Getenv("NO_COLOR") != ""

func ansi(code, s string) string {
	if noColor {
		return s
	}
	return code + s + "\033[0m"
}

func dim(s string) string    { return ansi("\033[2m", s) }
func red(s string) string    { return ansi("\033[31m", s) }
func green(s string) string  { return ansi("\033[32m", s) }
func yellow(s string) string { return ansi("\033[33m", s) }
func plain(s string) string  { return s }

func outcomeColor(outcome string) func(string) string {
	switch outcome {
	case release.OutcomeSuccess:
		return green
	case release.OutcomeFailure:
		return red
	case release.OutcomeTimeout, outcomeInterrupted:
		return yellow
	}
	return plain
}

// padR pads s to width with spaces on the right.
func padR(s string, width int) string {
	if pad := width - len(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}

// colorPadR applies a color function to s, then right-pads to width
// (accounting for invisible ANSI escape bytes).
func colorPadR(colorFn func(string) string, s string, width int) string {
	colored := colorFn(s)
	return padR(colored, width+(len(colored)-len(s)))
}
