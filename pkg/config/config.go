// Package config manages the persisted tabshelf settings, grouped into
// sections and stored as one JSON file.
package config

import (
	"sync"
)

var (
	// globalManager is the singleton configuration manager instance
	globalManager *Manager
	globalMu      sync.Mutex
)

// NewDefaultManager creates a manager over store with every tabshelf
// section registered.
func NewDefaultManager(store Store) (*Manager, error) {
	manager := NewManager(store)
	for _, section := range []Section{
		NewAutosaveSection(),
		NewExportSection(),
		NewBrowserSection(),
		NewUISection(),
	} {
		if err := manager.RegisterSection(section); err != nil {
			return nil, err
		}
	}
	return manager, nil
}

// Initialize creates and loads the global configuration manager.
// This should be called once at application startup.
func Initialize(configPath string) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	store, err := NewFileStore(configPath)
	if err != nil {
		return err
	}
	manager, err := NewDefaultManager(store)
	if err != nil {
		return err
	}
	if err := manager.LoadAll(); err != nil {
		return err
	}

	globalManager = manager
	return nil
}

// Global returns the global configuration manager.
// Panics if Initialize has not been called.
func Global() *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalManager == nil {
		panic("config not initialized: call config.Initialize first")
	}
	return globalManager
}

// IsInitialized returns true if the global configuration has been initialized.
func IsInitialized() bool {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalManager != nil
}

func globalSection[T Section](id string) T {
	var zero T
	if !IsInitialized() {
		return zero
	}
	section, ok := Global().GetSection(id)
	if !ok {
		return zero
	}
	typed, ok := section.(T)
	if !ok {
		return zero
	}
	return typed
}

// GetAutosave returns the autosave section, or nil before Initialize.
func GetAutosave() *AutosaveSection {
	return globalSection[*AutosaveSection](SectionIDAutosave)
}

// GetExport returns the export section, or nil before Initialize.
func GetExport() *ExportSection {
	return globalSection[*ExportSection](SectionIDExport)
}

// GetBrowser returns the browser section, or nil before Initialize.
func GetBrowser() *BrowserSection {
	return globalSection[*BrowserSection](SectionIDBrowser)
}

// GetUI returns the UI section, or nil before Initialize.
func GetUI() *UISection {
	return globalSection[*UISection](SectionIDUI)
}
