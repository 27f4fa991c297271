package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultFileName is the config file created in the home directory.
const DefaultFileName = ".onair.toml"

//go:embed default.toml
var defaultTemplate []byte

// DefaultTemplate returns the commented configuration written on first run.
func DefaultTemplate() []byte {
	return defaultTemplate
}

// DefaultPath returns ~/.onair.toml, or the bare file name if the home
// directory cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultFileName
	}
	return filepath.Join(home, DefaultFileName)
}

// ExpandPath replaces a leading ~ with the home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// EnsureFile writes the default template to path when no file exists there.
// It reports whether the file was created.
func EnsureFile(path string) (bool, error) {
	path = ExpandPath(path)

	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat config %s: %w", path, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("create config directory: %w", err)
		}
	}
	// The file holds broker credentials.
	if err := os.WriteFile(path, defaultTemplate, 0o600); err != nil {
		return false, fmt.Errorf("write default config: %w", err)
	}
	return true, nil
}
