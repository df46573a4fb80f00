package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_DefaultsWhenFileMissing(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Load())

	assert.False(t, store.AutoSync())
	assert.Empty(t, store.IgnoredKeys())
}

func TestStore_LoadExistingFile(t *testing.T) {
	dir := t.TempDir()
	content := `{"auto_sync":true,"ignored_keys":["editor.fontSize"]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))

	store := NewStore(dir)
	require.NoError(t, store.Load())

	assert.True(t, store.AutoSync())
	assert.Equal(t, []string{"editor.fontSize"}, store.IgnoredKeys())
}

func TestStore_LoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("{not json"), 0o644))

	store := NewStore(dir)
	assert.Error(t, store.Load())
}

func TestStore_SetAutoSyncPersistsAndNotifies(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	require.NoError(t, store.Load())

	ch := store.Subscribe()
	t.Cleanup(func() { store.Unsubscribe(ch) })

	require.NoError(t, store.SetAutoSync(true))
	assert.True(t, store.AutoSync())

	select {
	case event := <-ch:
		assert.Equal(t, KeyAutoSync, event.Key)
	default:
		t.Fatal("expected a change event after enabling auto sync")
	}

	// the flag survives a fresh load
	reloaded := NewStore(dir)
	require.NoError(t, reloaded.Load())
	assert.True(t, reloaded.AutoSync())
}

func TestStore_SetAutoSyncSameValueIsNoop(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Load())
	require.NoError(t, store.SetAutoSync(true))

	ch := store.Subscribe()
	t.Cleanup(func() { store.Unsubscribe(ch) })

	require.NoError(t, store.SetAutoSync(true))

	select {
	case event := <-ch:
		t.Fatalf("unexpected change event %q for a no-op set", event.Key)
	default:
	}
}

func TestStore_WatchPicksUpExternalEdit(t *testing.T) {
	dir := t.TempDir()

	// macos is funny =)
	// tmpdir lives in /var/folders but it's actually symlink to /private/var/folders
	dir, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)

	store := NewStore(dir)
	require.NoError(t, store.Load())
	require.NoError(t, store.Watch())
	t.Cleanup(store.Close)

	ch := store.Subscribe()

	// another process enables auto sync
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`{"auto_sync":true}`), 0o644))

	select {
	case event := <-ch:
		require.NotNil(t, event)
		assert.Equal(t, KeyAutoSync, event.Key)
		assert.True(t, store.AutoSync())
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for settings change event")
	}
}

func TestStore_WatchIgnoresOwnSaves(t *testing.T) {
	dir := t.TempDir()
	dir, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)

	store := NewStore(dir)
	require.NoError(t, store.Load())
	require.NoError(t, store.Watch())
	t.Cleanup(store.Close)

	ch := store.Subscribe()

	require.NoError(t, store.SetAutoSync(true))

	// exactly one event: the synchronous broadcast from SetAutoSync,
	// with no duplicate echoed back by the watcher
	select {
	case event := <-ch:
		assert.Equal(t, KeyAutoSync, event.Key)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for settings change event")
	}

	select {
	case event := <-ch:
		t.Fatalf("unexpected duplicate event %q from watcher echo", event.Key)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestStore_ValuesReturnsCopy(t *testing.T) {
	dir := t.TempDir()
	content := `{"auto_sync":false,"ignored_keys":["a"]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))

	store := NewStore(dir)
	require.NoError(t, store.Load())

	values := store.Values()
	values.IgnoredKeys[0] = "mutated"
	assert.Equal(t, []string{"a"}, store.IgnoredKeys())
}
