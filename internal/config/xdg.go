package config

import (
	"os"
	"path/filepath"
)

const appDirName = "coursedoc"

// ConfigDir is $XDG_CONFIG_HOME/coursedoc or ~/.config/coursedoc.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appDirName)
}

// DataDir is $XDG_DATA_HOME/coursedoc or ~/.local/share/coursedoc.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", appDirName)
}

// CacheDir is $XDG_CACHE_HOME/coursedoc or ~/.cache/coursedoc.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", appDirName)
}
