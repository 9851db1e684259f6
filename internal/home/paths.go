package home

import (
	"os"
	"path/filepath"
)

// BaseDir returns the placette data directory. PLACETTE_HOME overrides the
// default ~/.placette, which keeps tests and multi-instance setups apart.
func BaseDir() string {
	if dir := os.Getenv("PLACETTE_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".placette")
}

// DBPath returns the sqlite database path.
func DBPath(base string) string {
	return filepath.Join(base, "placette.db")
}

// LogDir returns the log directory.
func LogDir(base string) string {
	return filepath.Join(base, "logs")
}

// LogPath returns the daemon log file path.
func LogPath(base string) string {
	return filepath.Join(LogDir(base), "placetted.log")
}

// ConfigPath returns the config file path.
func ConfigPath(base string) string {
	return filepath.Join(base, "config.toml")
}

// EnsureDirs creates the data directory tree with owner-only permissions.
func EnsureDirs(base string) error {
	for _, d := range []string{base, LogDir(base)} {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
