// Package storage writes media files to the local disk.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

type LocalStore struct {
	root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

func (s *LocalStore) resolve(relPath string) (string, error) {
	clean := filepath.Clean("/" + relPath)
	if strings.Contains(relPath, "..") {
		return "", fmt.Errorf("invalid media path %q", relPath)
	}
	return filepath.Join(s.root, clean), nil
}

func (s *LocalStore) Save(relPath string, data []byte) error {
	full, err := s.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create media dir: %w", err)
	}
	return os.WriteFile(full, data, 0o644)
}

// Remove deletes the file. A file that is already gone is not an error.
func (s *LocalStore) Remove(relPath string) error {
	full, err := s.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
