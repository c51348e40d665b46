//go:build darwin

package toast

import (
	"fmt"

	"github.com/sanyoog/retro-cam/internal/shell"
)

// command uses osascript.
func command(title, message string) (string, []string) {
	script := fmt.Sprintf(`display notification "%s" with title "%s"`,
		shell.EscapeAppleScript(message), shell.EscapeAppleScript(title))
	return "osascript", []string{"-e", script}
}
