// Package blob stores uploaded sheet PDFs under opaque string keys.
package blob

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const dirPerm = 0o750

// ErrNotFound is returned when no object exists under a key.
var ErrNotFound = errors.New("blob: object not found")

// ErrInvalidKey is returned for keys that escape the store root.
var ErrInvalidKey = errors.New("blob: invalid object key")

// Store is a filesystem-backed blob store. Backed by the OS filesystem in
// production and an in-memory filesystem in tests.
type Store struct {
	fs   afero.Fs
	root string
}

// NewStore creates a store rooted at dir on the given filesystem.
func NewStore(fs afero.Fs, dir string) (*Store, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if dir == "" {
		return nil, errors.New("blob: root directory is required")
	}
	if err := fs.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("blob: create root: %w", err)
	}
	return &Store{fs: fs, root: dir}, nil
}

// NewOsStore creates a store on the real filesystem.
func NewOsStore(dir string) (*Store, error) {
	return NewStore(afero.NewOsFs(), dir)
}

// Put writes data under key and returns the key.
func (s *Store) Put(key string, data []byte) (string, error) {
	p, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := s.fs.MkdirAll(filepath.Dir(p), dirPerm); err != nil {
		return "", fmt.Errorf("blob: put %s: %w", key, err)
	}
	if err := afero.WriteFile(s.fs, p, data, 0o640); err != nil {
		return "", fmt.Errorf("blob: put %s: %w", key, err)
	}
	return key, nil
}

// Get reads the object under key.
func (s *Store) Get(key string) ([]byte, error) {
	p, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	exists, err := afero.Exists(s.fs, p)
	if err != nil {
		return nil, fmt.Errorf("blob: get %s: %w", key, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	data, err := afero.ReadFile(s.fs, p)
	if err != nil {
		return nil, fmt.Errorf("blob: get %s: %w", key, err)
	}
	return data, nil
}

// Delete removes the object under key. Deleting a missing key is not an
// error.
func (s *Store) Delete(key string) error {
	p, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(p); err != nil {
		exists, statErr := afero.Exists(s.fs, p)
		if statErr == nil && !exists {
			return nil
		}
		return fmt.Errorf("blob: delete %s: %w", key, err)
	}
	return nil
}

// resolve maps a key to a path inside the root, rejecting traversal and
// absolute keys.
func (s *Store) resolve(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	clean := path.Clean(key)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}
