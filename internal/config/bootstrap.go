package config

import (
	"errors"
	"os"
	"path/filepath"
)

// EnsureUserConfig returns <dataDir>/config.yml, writing the embedded default
// there first if the user has none yet.
func EnsureUserConfig(dataDir string) (string, error) {
	userPath := filepath.Join(dataDir, "config.yml")

	_, err := os.Stat(userPath)
	if err == nil {
		return userPath, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(userPath, defaultYAML, 0o644); err != nil {
		return "", err
	}
	return userPath, nil
}

// ResolvePath anchors a relative data file (seen log, database) in dataDir.
func ResolvePath(dataDir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dataDir, p)
}
