package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/tabshelf/pkg/browser"
	"github.com/entrhq/tabshelf/pkg/codec"
	appconfig "github.com/entrhq/tabshelf/pkg/config"
)

const snapshotJSON = `{
	"version": 1,
	"generatedAt": "2026-03-01T12:00:00Z",
	"groups": [{"id": "g1", "title": "Docs", "color": "blue", "collapsed": false, "windowId": 1}],
	"tabs": [
		{"url": "https://a.example", "title": "A", "pinned": false, "active": true, "muted": false, "windowId": 1, "index": 0, "groupId": null},
		{"url": "https://b.example", "title": "B", "pinned": false, "active": false, "muted": false, "windowId": 1, "index": 0, "groupId": "g1"},
		{"url": "https://a.example", "title": "A copy", "pinned": false, "active": false, "muted": false, "windowId": 2, "index": 0, "groupId": null}
	]
}`

func initConfig(t *testing.T) *Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, appconfig.Initialize(path))
	return &Config{ConfigPath: path, Backend: appconfig.BackendMemory}
}

func TestRun_Usage(t *testing.T) {
	config := initConfig(t)
	var out bytes.Buffer

	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"frobnicate"}},
		{"import without file", []string{"import"}},
		{"bad export format", []string{"export", "-format", "csv"}},
		{"edit with two files", []string{"edit", "a.json", "b.json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(context.Background(), config, tt.args, strings.NewReader(""), &out)
			assert.ErrorIs(t, err, errUsage)
		})
	}
}

func TestRunNormalize(t *testing.T) {
	in := strings.NewReader(`{"tabs": [{"url": "https://x.example", "windowId": 3, "index": 7}, {"title": "no url"}]}`)
	var out bytes.Buffer

	require.NoError(t, run(context.Background(), &Config{}, []string{"normalize"}, in, &out))

	snap, err := codec.ParseImport(out.Bytes())
	require.NoError(t, err)
	require.Len(t, snap.Tabs, 1)
	assert.Equal(t, 3, snap.Tabs[0].WindowID)
	assert.Equal(t, 0, snap.Tabs[0].Index)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(envBackend, "cdp")
	t.Setenv(envRemoteURL, "ws://127.0.0.1:9222")

	c := &Config{Backend: "memory"}
	c.applyEnv()
	assert.Equal(t, "memory", c.Backend, "flags win over the environment")
	assert.Equal(t, "ws://127.0.0.1:9222", c.RemoteURL)
}

func TestOpenBrowser_UnknownBackend(t *testing.T) {
	initConfig(t)
	_, err := openBrowser(context.Background(), &Config{Backend: "lynx"})
	assert.ErrorIs(t, err, errUsage)
}

func TestRestoreThenExport(t *testing.T) {
	initConfig(t)
	ctx := context.Background()
	snap, err := codec.ParseImport([]byte(snapshotJSON))
	require.NoError(t, err)

	m := browser.NewMemory()
	var out bytes.Buffer
	require.NoError(t, restore(ctx, m, snap, &out))
	assert.Equal(t, "Restored 2 windows, 3 tabs, 1 groups.\n", out.String())

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tabs.json")
		require.NoError(t, export(ctx, m, formatJSON, path, false, &out))

		data, err := readInput([]string{path}, nil)
		require.NoError(t, err)
		captured, err := codec.ParseImport(data)
		require.NoError(t, err)
		assert.Len(t, captured.Tabs, 3)
		assert.Len(t, captured.Groups, 1)
	})

	t.Run("markdown closes duplicates", func(t *testing.T) {
		var md bytes.Buffer
		require.NoError(t, export(ctx, m, formatMarkdown, "", true, &md))
		assert.True(t, strings.HasPrefix(md.String(), "||Name|URL|Tab Group|\n|---|---|---|---|\n"))

		tabs, err := m.ListTabs(ctx)
		require.NoError(t, err)
		assert.Len(t, tabs, 2)
	})
}
