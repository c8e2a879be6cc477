package config

import (
	"fmt"
	"sync"
)

// Section is one named group of settings persisted under its ID.
type Section interface {
	ID() string
	Title() string
	Description() string

	// Data returns the settings as JSON-friendly values.
	Data() map[string]interface{}

	// SetData applies stored values. Unknown keys are ignored.
	SetData(data map[string]interface{}) error

	Validate() error

	// Reset restores the defaults.
	Reset()
}

// Manager keeps the registered sections in registration order and moves
// their data in and out of a Store.
type Manager struct {
	store    Store
	sections map[string]Section
	order    []string
	mu       sync.RWMutex
}

// NewManager creates a manager with no sections.
func NewManager(store Store) *Manager {
	return &Manager{
		store:    store,
		sections: make(map[string]Section),
	}
}

// RegisterSection adds a section. IDs must be unique.
func (m *Manager) RegisterSection(section Section) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := section.ID()
	if _, exists := m.sections[id]; exists {
		return fmt.Errorf("section %q already registered", id)
	}
	m.sections[id] = section
	m.order = append(m.order, id)
	return nil
}

// GetSection looks up a section by ID.
func (m *Manager) GetSection(id string) (Section, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	section, ok := m.sections[id]
	return section, ok
}

// GetSections returns every section in registration order.
func (m *Manager) GetSections() []Section {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sections := make([]Section, 0, len(m.order))
	for _, id := range m.order {
		sections = append(sections, m.sections[id])
	}
	return sections
}

// LoadAll reloads the store and hands every section its stored data.
// Sections with nothing stored keep their defaults.
func (m *Manager) LoadAll() error {
	if err := m.store.Load(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	for _, section := range m.GetSections() {
		data, err := m.store.GetSection(section.ID())
		if err != nil {
			return fmt.Errorf("failed to read section %s: %w", section.ID(), err)
		}
		if len(data) == 0 {
			continue
		}
		if err := section.SetData(data); err != nil {
			return fmt.Errorf("invalid data in section %s: %w", section.ID(), err)
		}
	}
	return nil
}

// SaveAll validates every section and writes them all to the store.
// Nothing is written when a section is invalid.
func (m *Manager) SaveAll() error {
	sections := m.GetSections()
	for _, section := range sections {
		if err := section.Validate(); err != nil {
			return fmt.Errorf("section %s: %w", section.ID(), err)
		}
	}

	for _, section := range sections {
		if err := m.store.SetSection(section.ID(), section.Data()); err != nil {
			return fmt.Errorf("failed to store section %s: %w", section.ID(), err)
		}
	}

	if err := m.store.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// ResetAll restores every section to its defaults without saving.
func (m *Manager) ResetAll() {
	for _, section := range m.GetSections() {
		section.Reset()
	}
}

// Store returns the backing store.
func (m *Manager) Store() Store {
	return m.store
}
