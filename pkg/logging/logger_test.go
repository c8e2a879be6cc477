package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useTempLogDir points the package at a temporary directory with a fresh
// session and restores the globals afterwards.
func useTempLogDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	prevDir, prevErr, prevSession := logDir, initErr, sessionID

	reset := func(d, session string, err error) {
		_ = Close()
		sink = nil
		logDir = d
		initErr = err
		initOnce = sync.Once{}
		sessionID = session
		sessionIDOnce = sync.Once{}
	}
	reset(dir, "", nil)
	t.Cleanup(func() { reset(prevDir, prevSession, prevErr) })
	return dir
}

func logContent(t *testing.T, l *Logger) string {
	t.Helper()
	data, err := os.ReadFile(l.LogPath())
	require.NoError(t, err)
	return string(data)
}

func TestNewLogger_SessionFile(t *testing.T) {
	dir := useTempLogDir(t)

	l, err := NewLogger("export")
	require.NoError(t, err)
	l.Infof("started")

	assert.Equal(t, GetSessionID(), l.SessionID())
	assert.Equal(t, dir, filepath.Dir(l.LogPath()))
	assert.Equal(t, l.SessionID()+"-tabshelf.log", filepath.Base(l.LogPath()))
	assert.FileExists(t, l.LogPath())

	got, err := GetLogDirectory()
	require.NoError(t, err)
	assert.Equal(t, dir, got)
}

func TestLogger_Levels(t *testing.T) {
	useTempLogDir(t)
	l, err := NewLogger("editor")
	require.NoError(t, err)

	tests := []struct {
		name string
		log  func(format string, v ...interface{})
		want string
	}{
		{"printf", l.Printf, "[editor] [INFO] moved 3 tabs"},
		{"debug", l.Debugf, "[editor] [DEBUG] moved 3 tabs"},
		{"info", l.Infof, "[editor] [INFO] moved 3 tabs"},
		{"warn", l.Warnf, "[editor] [WARN] moved 3 tabs"},
		{"error", l.Errorf, "[editor] [ERROR] moved 3 tabs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.log("moved %d tabs", 3)
			assert.Contains(t, logContent(t, l), tt.want)
		})
	}
}

func TestLogger_ComponentsShareTheSessionLog(t *testing.T) {
	useTempLogDir(t)

	restore, err := NewLogger("import")
	require.NoError(t, err)
	edit, err := NewLogger("edit")
	require.NoError(t, err)
	tui := edit.With("tui")

	restore.Infof("restored window 1")
	tui.Warnf("preview highlighting failed")

	assert.Equal(t, restore.LogPath(), edit.LogPath())
	assert.Equal(t, edit.LogPath(), tui.LogPath())
	assert.Equal(t, edit.SessionID(), tui.SessionID())

	content := logContent(t, restore)
	assert.Contains(t, content, "[import] [INFO] restored window 1")
	assert.Contains(t, content, "[edit.tui] [WARN] preview highlighting failed")
}

func TestDiscard(t *testing.T) {
	useTempLogDir(t)

	l := Discard("bridge-test")
	l.Errorf("dropped %s", "entry")

	assert.Empty(t, l.LogPath())
	assert.NotEmpty(t, l.SessionID())
	assert.Nil(t, sink, "a discard logger opens no session file")
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() { l.Infof("nothing") })
}

func TestClose_Reopens(t *testing.T) {
	useTempLogDir(t)
	l, err := NewLogger("cli")
	require.NoError(t, err)

	l.Infof("before close")
	require.NoError(t, Close())
	require.NoError(t, Close())

	l.Infof("after close")
	content := logContent(t, l)
	assert.Equal(t, 2, strings.Count(content, "[cli] [INFO]"))
}

func TestNewLogger_FallbackWhenDirectoryFails(t *testing.T) {
	dir := useTempLogDir(t)
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))
	logDir = filepath.Join(blocker, "logs")

	l, err := NewLogger("cli")
	require.Error(t, err)
	require.NotNil(t, l)
	assert.Empty(t, l.LogPath())
	assert.Equal(t, os.Stderr, l.Writer())
}
