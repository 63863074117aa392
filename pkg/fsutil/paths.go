// Package fsutil provides the application's filesystem conventions: the
// per-user cache and config locations and the permission modes used when
// creating files and directories.
package fsutil

import (
	"os"
	"path/filepath"
)

const (
	// AppName is the name of the application used in paths.
	AppName = "waypkg"
)

// CacheDir returns the per-user cache directory for the application.
// On Linux: ~/.cache/waypkg/
// On macOS: ~/Library/Caches/waypkg/
// On Windows: %LOCALAPPDATA%\waypkg\cache\
func CacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, AppName), nil
}

// ConfigDir returns the per-user configuration directory for the application.
// On Linux: ~/.config/waypkg/
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, AppName), nil
}

// EnsureDir creates dir (and parents) if it does not exist.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, DirModeDefault)
}
