// Package paths locates soyforge's per-user directories following the XDG
// Base Directory layout:
//
//   - Config: $XDG_CONFIG_HOME/soyforge (user-wide manifest defaults)
//   - State:  $XDG_STATE_HOME/soyforge (log file)
//
// The XDG variables are read on every call so tests can redirect them with
// t.Setenv; github.com/adrg/xdg supplies the platform defaults otherwise.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// AppDirName is the directory created under each XDG base
const AppDirName = "soyforge"

const (
	EnvConfigHome = "XDG_CONFIG_HOME"
	EnvStateHome  = "XDG_STATE_HOME"
	EnvHome       = "HOME"
)

// ConfigDir returns the per-user configuration directory
func ConfigDir() string {
	return filepath.Join(base(EnvConfigHome, xdg.ConfigHome), AppDirName)
}

// StateDir returns the per-user state directory
func StateDir() string {
	return filepath.Join(base(EnvStateHome, xdg.StateHome), AppDirName)
}

// UserConfigFile is the user-wide manifest layer
func UserConfigFile() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// LogFile is where file logging goes
func LogFile() string {
	return filepath.Join(StateDir(), AppDirName+".log")
}

func base(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	return fallback
}

// ExpandHome expands a leading ~ or ~/ to the user's home directory.
// ~user forms are returned unchanged.
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
