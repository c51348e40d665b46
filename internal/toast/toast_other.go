//go:build !linux && !darwin && !windows

package toast

func command(title, message string) (string, []string) {
	return "", nil
}
