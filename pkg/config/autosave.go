package config

import (
	"sync"
	"time"

	"github.com/entrhq/tabshelf/pkg/autosave"
)

// SectionIDAutosave is the identifier for the autosave section.
const SectionIDAutosave = "autosave"

// AutosaveSection controls where and how often the editor saves.
type AutosaveSection struct {
	Delay   time.Duration `validate:"gte=50ms,lte=1m"`
	Backend string        `validate:"oneof=file sqlite"`
	// Path is a directory for the file backend and a database for SQLite.
	// Empty means the default under ~/.tabshelf.
	Path string
	mu   sync.RWMutex
}

// NewAutosaveSection creates the section with default settings.
func NewAutosaveSection() *AutosaveSection {
	s := &AutosaveSection{}
	s.Reset()
	return s
}

func (s *AutosaveSection) ID() string    { return SectionIDAutosave }
func (s *AutosaveSection) Title() string { return "Autosave" }
func (s *AutosaveSection) Description() string {
	return "Quiet period before the editor saves and the store it saves to."
}

// Data returns the current configuration data.
func (s *AutosaveSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]interface{}{
		"delay":   s.Delay.String(),
		"backend": s.Backend,
		"path":    s.Path,
	}
}

// SetData updates the configuration from the provided data.
func (s *AutosaveSection) SetData(data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		var err error
		switch key {
		case "delay":
			s.Delay, err = durationValue(key, value)
		case "backend":
			s.Backend, err = stringValue(key, value)
		case "path":
			s.Path, err = stringValue(key, value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the delay range and the backend name.
func (s *AutosaveSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return validate.Struct(s)
}

// Reset resets the section to default configuration.
func (s *AutosaveSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Delay = autosave.DefaultDelay
	s.Backend = autosave.BackendFile
	s.Path = ""
}

// Settings returns the delay, backend and path together.
func (s *AutosaveSection) Settings() (time.Duration, string, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Delay, s.Backend, s.Path
}
