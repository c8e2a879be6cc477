package config

import (
	"fmt"
	"sync"

	"github.com/alecthomas/chroma/v2/styles"
)

const (
	// SectionIDUI is the identifier for the UI settings section
	SectionIDUI = "ui"

	defaultPreviewStyle = "monokai"
)

// UISection holds editor presentation settings.
type UISection struct {
	// ConfirmDeletes asks before deleting a window or group that still
	// holds tabs.
	ConfirmDeletes bool
	// PreviewStyle is the chroma style of the JSON preview.
	PreviewStyle string `validate:"required"`
	mu           sync.RWMutex
}

// NewUISection creates a new UI section with default settings.
func NewUISection() *UISection {
	s := &UISection{}
	s.Reset()
	return s
}

func (s *UISection) ID() string    { return SectionIDUI }
func (s *UISection) Title() string { return "UI Settings" }
func (s *UISection) Description() string {
	return "Delete confirmations and the highlight style of the JSON preview."
}

// Data returns the current configuration data.
func (s *UISection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]interface{}{
		"confirm_deletes": s.ConfirmDeletes,
		"preview_style":   s.PreviewStyle,
	}
}

// SetData updates the configuration from the provided data.
func (s *UISection) SetData(data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		var err error
		switch key {
		case "confirm_deletes":
			s.ConfirmDeletes, err = boolValue(key, value)
		case "preview_style":
			s.PreviewStyle, err = stringValue(key, value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate requires a preview style chroma knows.
func (s *UISection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := validate.Struct(s); err != nil {
		return err
	}
	if _, ok := styles.Registry[s.PreviewStyle]; !ok {
		return fmt.Errorf("unknown preview_style %q", s.PreviewStyle)
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *UISection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ConfirmDeletes = true
	s.PreviewStyle = defaultPreviewStyle
}

// Settings returns the confirmation flag and the preview style.
func (s *UISection) Settings() (bool, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ConfirmDeletes, s.PreviewStyle
}
