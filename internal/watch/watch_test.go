package watch

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestWatcherFiresOnPackWrite(t *testing.T) {
	dir := t.TempDir()
	var reloads atomic.Int32

	w, err := New(dir, func() { reloads.Add(1) }, nil)
	require.NoError(t, err)
	require.NotNil(t, w)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "pack.yaml"), []byte("metadata: {}\n"), 0o644))
	waitFor(t, func() bool { return reloads.Load() >= 1 })
}

func TestWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	var reloads atomic.Int32

	w, err := New(dir, func() { reloads.Add(1) }, nil)
	require.NoError(t, err)
	defer w.Close()

	path := filepath.Join(dir, "pack.yaml")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("metadata: {}\n"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	waitFor(t, func() bool { return reloads.Load() >= 1 })
	// The burst settled into a single reload.
	time.Sleep(2 * debounce)
	assert.Equal(t, int32(1), reloads.Load())
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	var reloads atomic.Int32

	w, err := New(dir, func() { reloads.Add(1) }, nil)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	time.Sleep(2 * debounce)
	assert.Equal(t, int32(0), reloads.Load())
}

func TestWatcherMissingDir(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "absent"), func() {}, nil)
	require.NoError(t, err)
	assert.Nil(t, w)
	assert.NoError(t, w.Close())
}

func TestWatcherFiresOnRemove(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pack.yaml")
	require.NoError(t, os.WriteFile(path, []byte("metadata: {}\n"), 0o644))

	var reloads atomic.Int32
	w, err := New(dir, func() { reloads.Add(1) }, nil)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.Remove(path))
	waitFor(t, func() bool { return reloads.Load() >= 1 })
}
