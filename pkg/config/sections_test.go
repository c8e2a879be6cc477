package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSections_Defaults(t *testing.T) {
	for _, s := range []Section{NewAutosaveSection(), NewExportSection(), NewBrowserSection(), NewUISection()} {
		t.Run(s.ID(), func(t *testing.T) {
			assert.NoError(t, s.Validate())
			assert.NotEmpty(t, s.Title())
			assert.NotEmpty(t, s.Description())
		})
	}

	delay, backend, path := NewAutosaveSection().Settings()
	assert.Equal(t, 400*time.Millisecond, delay)
	assert.Equal(t, "file", backend)
	assert.Empty(t, path)

	confirm, style := NewUISection().Settings()
	assert.True(t, confirm)
	assert.Equal(t, "monokai", style)

	filename, closeDuplicates := NewExportSection().Settings()
	assert.Equal(t, "chrome-tabs.json", filename)
	assert.True(t, closeDuplicates)
}

func TestSections_SetDataAndValidate(t *testing.T) {
	tests := []struct {
		name     string
		section  Section
		data     map[string]interface{}
		setErr   bool
		validErr bool
	}{
		{"autosave ok", NewAutosaveSection(), map[string]interface{}{"delay": "1s", "backend": "sqlite"}, false, false},
		{"autosave numeric delay", NewAutosaveSection(), map[string]interface{}{"delay": float64(time.Second)}, false, false},
		{"autosave delay too short", NewAutosaveSection(), map[string]interface{}{"delay": "1ms"}, false, true},
		{"autosave bad backend", NewAutosaveSection(), map[string]interface{}{"backend": "redis"}, false, true},
		{"autosave bad delay", NewAutosaveSection(), map[string]interface{}{"delay": "soon"}, true, false},
		{"export empty filename", NewExportSection(), map[string]interface{}{"json_filename": ""}, false, true},
		{"export bad type", NewExportSection(), map[string]interface{}{"close_duplicates": "yes"}, true, false},
		{"browser cdp", NewBrowserSection(), map[string]interface{}{"backend": "cdp", "remote_url": "ws://127.0.0.1:9222"}, false, false},
		{"browser bad url", NewBrowserSection(), map[string]interface{}{"remote_url": "not a url"}, false, true},
		{"browser bad backend", NewBrowserSection(), map[string]interface{}{"backend": "lynx"}, false, true},
		{"ui unknown style", NewUISection(), map[string]interface{}{"preview_style": "no-such-style"}, false, true},
		{"ui ignores unknown keys", NewUISection(), map[string]interface{}{"theme": "dark"}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.section.SetData(tt.data)
			if tt.setErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.validErr {
				assert.Error(t, tt.section.Validate())
			} else {
				assert.NoError(t, tt.section.Validate())
			}
		})
	}
}

func TestSections_ResetAndData(t *testing.T) {
	s := NewBrowserSection()
	require.NoError(t, s.SetData(map[string]interface{}{"backend": "memory", "headless": true}))
	assert.Equal(t, map[string]interface{}{"backend": "memory", "headless": true, "remote_url": ""}, s.Data())

	s.Reset()
	backend, headless, remote := s.Settings()
	assert.Equal(t, BackendPlaywright, backend)
	assert.False(t, headless)
	assert.Empty(t, remote)
}

func TestExportSection_Canonicalizer(t *testing.T) {
	s := NewExportSection()
	canon, err := s.Canonicalizer()
	require.NoError(t, err)
	assert.NotNil(t, canon)

	require.NoError(t, s.SetData(map[string]interface{}{"rules_path": filepath.Join(t.TempDir(), "missing.yaml")}))
	_, err = s.Canonicalizer()
	assert.Error(t, err)
}

func TestInitialize(t *testing.T) {
	reset := func() {
		globalMu.Lock()
		globalManager = nil
		globalMu.Unlock()
	}
	reset()
	t.Cleanup(reset)

	assert.False(t, IsInitialized())
	assert.Nil(t, GetAutosave())
	assert.Panics(t, func() { Global() })

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, Initialize(path))
	require.True(t, IsInitialized())

	require.NotNil(t, GetBrowser())
	require.NoError(t, GetBrowser().SetData(map[string]interface{}{"backend": "cdp"}))
	require.NoError(t, Global().SaveAll())

	reset()
	require.NoError(t, Initialize(path))
	backend, _, _ := GetBrowser().Settings()
	assert.Equal(t, BackendCDP, backend, "settings persist across initializations")
	assert.NotNil(t, GetExport())
	assert.NotNil(t, GetUI())
	assert.NotNil(t, GetAutosave())
}
