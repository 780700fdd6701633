package config

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// EnsureUserFile copies the bundled default into the data directory on
// first run, so users edit their own copy instead of the install tree.
func EnsureUserFile(dataDir, name, defaultPath string) (string, error) {
	userPath := filepath.Join(dataDir, name)

	_, err := os.Stat(userPath)
	if err == nil {
		return userPath, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	// First run: copy the shipped default into place.
	src, err := os.Open(defaultPath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(userPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return userPath, nil
}
