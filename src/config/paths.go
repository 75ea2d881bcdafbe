package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

const appDir = "diveagent"

// DefaultStorePath returns the default object store location under
// XDG_STATE_HOME.
func DefaultStorePath() string {
	return filepath.Join(xdg.StateHome, appDir, "objects.db")
}

// DefaultConfigPath returns the user config file location under
// XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appDir, "config.json")
}

// DefaultDataPath returns the directory for user data files.
func DefaultDataPath() string {
	return filepath.Join(xdg.DataHome, appDir)
}
