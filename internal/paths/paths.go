package paths

import (
	"os"
	"path/filepath"
)

const (
	AppDirName      = "retro-cam"
	ConfigFileName  = "shipit.json"
	HistoryFileName = "shipit.db"
	DotEnvFileName  = ".env"
	DirPerm         = 0755
	FilePerm        = 0644
)

// ConfigCandidates lists the file names tried next to the binary and in
// the data directory, in order.
var ConfigCandidates = []string{ConfigFileName, "shipit.yaml", "shipit.yml"}

// AtomicWrite writes data to path via a temporary file + rename to avoid
// partial writes. The parent directory is created if needed.
func AtomicWrite(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), DirPerm); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, FilePerm); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// DataDir returns the platform-specific data directory:
//   - Windows: %APPDATA%\retro-cam
//   - Unix:    ~/.config/retro-cam
//
// Falls back to os.TempDir()/retro-cam if neither is available.
func DataDir() string {
	if appdata := os.Getenv("APPDATA"); appdata != "" {
		return filepath.Join(appdata, AppDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), AppDirName)
	}
	return filepath.Join(home, ".config", AppDirName)
}

// HistoryPath returns the location of the shipit history database.
func HistoryPath() string {
	return filepath.Join(DataDir(), HistoryFileName)
}
