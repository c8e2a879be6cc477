package autosave

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps one file per key in a directory.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates a file-based store.
// If dir is empty, defaults to ~/.tabshelf/state
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".tabshelf", "state")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+".json")
}

// Get reads the value stored under key.
func (s *FileStore) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Put replaces the value under key with an atomic rename.
func (s *FileStore) Put(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.path(key)
	tempPath := target + ".tmp"
	if err := os.WriteFile(tempPath, value, 0600); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tempPath, target); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Close is a no-op.
func (s *FileStore) Close() error { return nil }

// Dir returns the directory of the store.
func (s *FileStore) Dir() string {
	return s.dir
}
