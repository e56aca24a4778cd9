// Package paths resolves configuration, data directory, and backing file
// locations.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// appDirName is the per-user directory name under the platform roots.
const appDirName = "relmap"

// Layout of the backing file below the data directory.
const (
	StoreSubdir   = "json"
	StoreFileName = "project_directories.json"
)

// Environment variable names for location overrides.
const (
	EnvConfigDir = "RELMAP_CONFIG_DIR"
	EnvStorePath = "RELMAP_STORE_PATH"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/relmap (fallback ~/.config/relmap)
// macOS:   ~/Library/Application Support/relmap
// Windows: %APPDATA%/relmap
func DefaultConfigDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_CONFIG_HOME", ".config")
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDirName), nil
}

// DefaultDataDir returns the platform-specific default data directory.
//
// Linux:   $XDG_DATA_HOME/relmap (fallback ~/.local/share/relmap)
// macOS:   ~/Library/Application Support/relmap
// Windows: %APPDATA%/relmap
func DefaultDataDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
	}
	// macOS and Windows: same as config dir.
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDirName), nil
}

func xdgDir(env, homeRel string) (string, error) {
	if xdg := os.Getenv(env); xdg != "" {
		return filepath.Join(xdg, appDirName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, homeRel, appDirName), nil
}

// DefaultStorePath returns <data dir>/json/project_directories.json.
func DefaultStorePath() (string, error) {
	dir, err := DefaultDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, StoreSubdir, StoreFileName), nil
}

// ResolveConfigDir returns the configuration directory following the precedence
// chain: flag > RELMAP_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveStorePath returns the backing file path following the precedence
// chain: flag > configValue (store_path in config.yaml) > RELMAP_STORE_PATH
// env > DefaultStorePath().
func ResolveStorePath(flag, configValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configValue != "" {
		return filepath.Abs(configValue)
	}
	if env := os.Getenv(EnvStorePath); env != "" {
		return filepath.Abs(env)
	}
	return DefaultStorePath()
}
