package config

import "sync"

const (
	// SectionIDBrowser is the identifier for the browser section.
	SectionIDBrowser = "browser"

	BackendMemory     = "memory"
	BackendPlaywright = "playwright"
	BackendCDP        = "cdp"
)

// BrowserSection selects the browser driver used by export and import.
type BrowserSection struct {
	Backend  string `validate:"oneof=memory playwright cdp"`
	Headless bool
	// RemoteURL connects to an already running browser instead of
	// launching one.
	RemoteURL string `validate:"omitempty,url"`
	mu        sync.RWMutex
}

// NewBrowserSection creates the section with default settings.
func NewBrowserSection() *BrowserSection {
	s := &BrowserSection{}
	s.Reset()
	return s
}

func (s *BrowserSection) ID() string    { return SectionIDBrowser }
func (s *BrowserSection) Title() string { return "Browser" }
func (s *BrowserSection) Description() string {
	return "Browser driver, headless mode and remote debugging endpoint."
}

// Data returns the current configuration data.
func (s *BrowserSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]interface{}{
		"backend":    s.Backend,
		"headless":   s.Headless,
		"remote_url": s.RemoteURL,
	}
}

// SetData updates the configuration from the provided data.
func (s *BrowserSection) SetData(data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		var err error
		switch key {
		case "backend":
			s.Backend, err = stringValue(key, value)
		case "headless":
			s.Headless, err = boolValue(key, value)
		case "remote_url":
			s.RemoteURL, err = stringValue(key, value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the backend name and the remote URL.
func (s *BrowserSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return validate.Struct(s)
}

// Reset resets the section to default configuration.
func (s *BrowserSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Backend = BackendPlaywright
	s.Headless = false
	s.RemoteURL = ""
}

// Settings returns the backend, headless flag and remote URL together.
func (s *BrowserSection) Settings() (string, bool, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Backend, s.Headless, s.RemoteURL
}
