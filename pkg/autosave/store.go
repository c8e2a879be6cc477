package autosave

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/entrhq/tabshelf/pkg/snapshot"
)

// Keys used by the editor.
const (
	PayloadKey = "tabshelf.autosave.v1"
	ThemeKey   = "tabshelf.theme"
)

// ErrNotFound is returned by Store.Get for a missing key.
var ErrNotFound = errors.New("autosave: key not found")

// Store is a small persistent key-value store.
type Store interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
	Close() error
}

// Payload is the persisted editor state. Windows keeps empty windows alive
// across restarts.
type Payload struct {
	Snapshot *snapshot.Snapshot `json:"snapshot"`
	Windows  []int              `json:"windows"`
}

// SavePayload writes p under PayloadKey.
func SavePayload(s Store, p Payload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("autosave: encode payload: %w", err)
	}
	return s.Put(PayloadKey, data)
}

// LoadPayload reads the payload under PayloadKey. The snapshot goes through
// normalization, so a corrupted or hand-edited entry still loads. ok is false
// when nothing has been saved.
func LoadPayload(s Store) (p Payload, ok bool, err error) {
	data, err := s.Get(PayloadKey)
	if errors.Is(err, ErrNotFound) {
		return Payload{}, false, nil
	}
	if err != nil {
		return Payload{}, false, err
	}

	var raw struct {
		Snapshot json.RawMessage `json:"snapshot"`
		Windows  []int           `json:"windows"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Payload{}, false, fmt.Errorf("autosave: decode payload: %w", err)
	}
	return Payload{Snapshot: snapshot.NormalizeJSON(raw.Snapshot), Windows: raw.Windows}, true, nil
}

// Backends accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open creates the store for a backend name. path is a directory for the
// file backend and a database file for SQLite; empty means the default
// location under ~/.tabshelf.
func Open(backend, path string) (Store, error) {
	switch backend {
	case "", BackendFile:
		fs, err := NewFileStore(path)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case BackendSQLite:
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("failed to get user home directory: %w", err)
			}
			path = filepath.Join(home, ".tabshelf", "autosave.db")
		}
		db, err := OpenSQLiteStore(path)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("autosave: unknown backend %q", backend)
	}
}
