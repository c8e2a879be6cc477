package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store persists section data.
type Store interface {
	// Load rereads the backing file.
	Load() error

	// Save writes all sections out.
	Save() error

	GetSection(sectionID string) (map[string]interface{}, error)
	SetSection(sectionID string, data map[string]interface{}) error
	GetAll() (map[string]map[string]interface{}, error)
	SetAll(data map[string]map[string]interface{}) error
}

const fileVersion = "1"

type fileLayout struct {
	Version  string                            `json:"version"`
	Sections map[string]map[string]interface{} `json:"sections"`
}

// FileStore implements Store with one JSON file.
type FileStore struct {
	path     string
	data     map[string]map[string]interface{}
	mu       sync.RWMutex
	modified bool
}

// NewFileStore creates a file store and loads the file if it exists.
// If path is empty, defaults to ~/.tabshelf/config.json
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(homeDir, ".tabshelf", "config.json")
	}

	store := &FileStore{
		path: path,
		data: make(map[string]map[string]interface{}),
	}
	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return store, nil
}

// Load rereads the file. A missing file is an empty config.
func (s *FileStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.data = make(map[string]map[string]interface{})
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var layout fileLayout
	if err := json.Unmarshal(raw, &layout); err != nil {
		return fmt.Errorf("failed to decode config file: %w", err)
	}
	s.data = layout.Sections
	if s.data == nil {
		s.data = make(map[string]map[string]interface{})
	}
	s.modified = false
	return nil
}

// Save writes the file through a temp file and an atomic rename.
func (s *FileStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	out, err := json.MarshalIndent(fileLayout{Version: fileVersion, Sections: s.data}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, out, 0600); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to write temp config file: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	s.modified = false
	return nil
}

func copySection(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

// GetSection returns a copy of a section's data, empty when absent.
func (s *FileStore) GetSection(sectionID string) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySection(s.data[sectionID]), nil
}

// SetSection replaces a section's data with a copy of data.
func (s *FileStore) SetSection(sectionID string, data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sectionID] = copySection(data)
	s.modified = true
	return nil
}

// GetAll returns a deep copy of every section.
func (s *FileStore) GetAll() (map[string]map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]map[string]interface{}, len(s.data))
	for id, data := range s.data {
		out[id] = copySection(data)
	}
	return out, nil
}

// SetAll replaces every section with a deep copy of data.
func (s *FileStore) SetAll(data map[string]map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string]map[string]interface{}, len(data))
	for id, section := range data {
		s.data[id] = copySection(section)
	}
	s.modified = true
	return nil
}

// IsModified reports unsaved changes.
func (s *FileStore) IsModified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modified
}

// Path returns the file path of the store.
func (s *FileStore) Path() string {
	return s.path
}
