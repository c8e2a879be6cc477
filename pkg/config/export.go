package config

import (
	"sync"

	"github.com/entrhq/tabshelf/pkg/codec"
)

// SectionIDExport is the identifier for the export section.
const SectionIDExport = "export"

// ExportSection holds the JSON and Markdown export settings.
type ExportSection struct {
	JSONFilename string `validate:"required"`
	// RulesPath points at a YAML rules file; empty uses the built-in rules.
	RulesPath string
	// CloseDuplicates closes duplicate tabs in the browser after a live
	// Markdown export.
	CloseDuplicates bool
	mu              sync.RWMutex
}

// NewExportSection creates the section with default settings.
func NewExportSection() *ExportSection {
	s := &ExportSection{}
	s.Reset()
	return s
}

func (s *ExportSection) ID() string    { return SectionIDExport }
func (s *ExportSection) Title() string { return "Export" }
func (s *ExportSection) Description() string {
	return "File name of JSON exports, URL rules and duplicate handling of Markdown exports."
}

// Data returns the current configuration data.
func (s *ExportSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]interface{}{
		"json_filename":    s.JSONFilename,
		"rules_path":       s.RulesPath,
		"close_duplicates": s.CloseDuplicates,
	}
}

// SetData updates the configuration from the provided data.
func (s *ExportSection) SetData(data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		var err error
		switch key {
		case "json_filename":
			s.JSONFilename, err = stringValue(key, value)
		case "rules_path":
			s.RulesPath, err = stringValue(key, value)
		case "close_duplicates":
			s.CloseDuplicates, err = boolValue(key, value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate requires a JSON file name.
func (s *ExportSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return validate.Struct(s)
}

// Reset resets the section to default configuration.
func (s *ExportSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.JSONFilename = codec.DefaultJSONFilename
	s.RulesPath = ""
	s.CloseDuplicates = true
}

// Canonicalizer loads the configured URL rules.
func (s *ExportSection) Canonicalizer() (*codec.Canonicalizer, error) {
	s.mu.RLock()
	path := s.RulesPath
	s.mu.RUnlock()

	if path == "" {
		return codec.DefaultCanonicalizer(), nil
	}
	return codec.LoadRules(path)
}

// Settings returns the JSON filename and the close-duplicates flag together.
func (s *ExportSection) Settings() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.JSONFilename, s.CloseDuplicates
}
