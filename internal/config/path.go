package config

import (
	"os"
	"path/filepath"
)

// DefaultDataDir returns the default directory for the tail cursor store
// based on the host OS. It prefers standard locations when available and
// falls back to a dotdir in the user's home directory.
func DefaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return "./data"
	}

	// XDG (Linux) override
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "knime-audit")
	}

	// Common Linux/Unix system dir
	if isDir("/var/lib") {
		return "/var/lib/knime-audit"
	}

	// Fallback: ~/.knime-audit
	return filepath.Join(homeDir, ".knime-audit")
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
