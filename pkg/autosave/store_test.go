package autosave

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/tabshelf/pkg/snapshot"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()

	fs, err := NewFileStore(filepath.Join(t.TempDir(), "state"))
	require.NoError(t, err)

	db, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "autosave.db"))
	require.NoError(t, err)

	mem, err := OpenSQLiteStore(":memory:")
	require.NoError(t, err)

	all := map[string]Store{"file": fs, "sqlite": db, "sqlite-memory": mem}
	t.Cleanup(func() {
		for _, s := range all {
			s.Close()
		}
	})
	return all
}

func TestStores(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get("missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Put(ThemeKey, []byte("dark")))
			got, err := s.Get(ThemeKey)
			require.NoError(t, err)
			assert.Equal(t, "dark", string(got))

			require.NoError(t, s.Put(ThemeKey, []byte("light")))
			got, err = s.Get(ThemeKey)
			require.NoError(t, err)
			assert.Equal(t, "light", string(got))

			require.NoError(t, s.Delete(ThemeKey))
			_, err = s.Get(ThemeKey)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.NoError(t, s.Delete(ThemeKey), "deleting twice is fine")
		})
	}
}

func TestFileStore_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Put("a/b key", []byte("{}")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a%2Fb%20key.json", entries[0].Name())
}

func TestSQLiteStore_PersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "autosave.db")

	s, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(PayloadKey, []byte(`{"windows":[1]}`)))
	require.NoError(t, s.Close())

	s, err = OpenSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(PayloadKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"windows":[1]}`, string(got))
}

func TestPayloadRoundTrip(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := LoadPayload(s)
			require.NoError(t, err)
			assert.False(t, ok)

			snap := snapshot.NormalizeJSON([]byte(`{
				"generatedAt": "2026-01-01T00:00:00Z",
				"groups": [{"id": "g2", "title": "Read", "color": "pink", "windowId": 3}],
				"tabs": [{"url": "https://a", "windowId": 3, "groupId": "g2"}]
			}`))
			require.NoError(t, SavePayload(s, Payload{Snapshot: snap, Windows: []int{3, 8}}))

			got, ok, err := LoadPayload(s)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, []int{3, 8}, got.Windows)
			assert.Equal(t, snap, got.Snapshot)
		})
	}
}

func TestLoadPayload_Corrupted(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Put(PayloadKey, []byte(`not json`)))
	_, _, err = LoadPayload(s)
	assert.Error(t, err)

	require.NoError(t, s.Put(PayloadKey, []byte(`{"snapshot": {"tabs": [{"url": ""}, {"url": "https://ok"}]}}`)))
	got, ok, err := LoadPayload(s)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got.Snapshot.Tabs, 1, "the snapshot inside is normalized")
	assert.Equal(t, "https://ok", got.Snapshot.Tabs[0].URL)
}

func TestOpen(t *testing.T) {
	s, err := Open(BackendFile, t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = Open(BackendSQLite, filepath.Join(t.TempDir(), "x.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	s.Close()

	_, err = Open("etcd", "")
	assert.Error(t, err)
}
