package release

import (
	"fmt"
	"io"
	"strings"

	"github.com/sanyoog/retro-cam/internal/ci"
)

// Console prints progress lines. Emoji markers are only written when
// the output is a terminal.
type Console struct {
	w       io.Writer
	emoji   bool
	started bool
}

// NewConsole returns a Console writing to w.
func NewConsole(w io.Writer, emoji bool) *Console {
	return &Console{w: w, emoji: emoji}
}

// Section starts a new block of output, separated from the previous one
// by a blank line.
func (c *Console) Section(icon, msg string) {
	if c.started {
		fmt.Fprintln(c.w)
	}
	c.started = true
	c.Mark(icon, msg)
}

// Mark prints msg prefixed by icon when emoji are enabled.
func (c *Console) Mark(icon, msg string) {
	if c.emoji && icon != "" {
		fmt.Fprintf(c.w, "%s %s\n", icon, msg)
		return
	}
	fmt.Fprintln(c.w, msg)
}

// Line prints a plain formatted line.
func (c *Console) Line(format string, args ...any) {
	fmt.Fprintf(c.w, format+"\n", args...)
}

// Rule prints a horizontal rule of n '=' characters.
func (c *Console) Rule(n int) {
	fmt.Fprintln(c.w, strings.Repeat("=", n))
}

// RunMarker returns the marker shown before a run in the run listing.
func (c *Console) RunMarker(s ci.State) string {
	if c.emoji {
		switch s {
		case ci.StateActive:
			return "⏳"
		case ci.StateSucceeded:
			return "✅"
		default:
			return "❌"
		}
	}
	switch s {
	case ci.StateActive:
		return "[..]"
	case ci.StateSucceeded:
		return "[ok]"
	default:
		return "[!!]"
	}
}
