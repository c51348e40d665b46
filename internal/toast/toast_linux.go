//go:build linux

package toast

// command uses notify-send.
func command(title, message string) (string, []string) {
	return "notify-send", []string{"--app-name=shipit", title, message}
}
