// Package toast shows a desktop notification using the platform's own
// tool: notify-send on Linux, osascript on macOS, PowerShell on Windows.
package toast

import (
	"context"
	"errors"
	"fmt"

	"github.com/sanyoog/retro-cam/internal/runner"
)

// ErrUnsupported is returned on platforms without a notification tool.
var ErrUnsupported = errors.New("toast: unsupported platform")

// Show displays a notification with title and message, running the
// platform tool through ex.
func Show(ctx context.Context, ex runner.Exec, title, message string) error {
	name, args := command(title, message)
	if name == "" {
		return ErrUnsupported
	}
	if _, err := ex.Run(ctx, runner.Cmd(name, args...)); err != nil {
		return fmt.Errorf("toast failed: %w", err)
	}
	return nil
}
