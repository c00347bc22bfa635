package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Validate runs NormalizeAndValidate and folds its errors into one error.
func Validate(cfg Config) error {
	_, v := NormalizeAndValidate(cfg)
	if !v.OK() {
		return errors.New("config validation failed:\n- " + strings.Join(v.Errors, "\n- "))
	}
	return nil
}

func SaveAtomic(path string, cfg Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	b, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	return WriteFileAtomic(path, b)
}

// WriteFileAtomic writes b to path through a temp file and rename, keeping
// the previous version as path.bak.
func WriteFileAtomic(path string, b []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	bak := path + ".bak"

	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}

	_ = os.Remove(bak)
	_ = os.Rename(path, bak)

	return os.Rename(tmp, path)
}
