package filewatch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barracuda/internal/config/logger"
)

func Test_Watcher_Watch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "whitelist.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o600))

	w, err := New(logger.NewNoopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	var (
		mu    sync.Mutex
		calls int
	)
	done := make(chan struct{})

	require.NoError(t, w.Watch(path, func() error {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()

		if n == 1 {
			close(done)
		}

		return nil
	}))

	stop := make(chan struct{})
	go w.Run(stop)
	t.Cleanup(func() { close(stop) })

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o600))

	select {
	case <-done:
		mu.Lock()
		assert.GreaterOrEqual(t, calls, 1)
		mu.Unlock()
	case <-time.After(2 * time.Second):
		t.Fatal("reload callback was never invoked")
	}
}

func Test_Watcher_Watch_IgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "profiles.txt")
	other := filepath.Join(dir, "unrelated.txt")
	require.NoError(t, os.WriteFile(watched, []byte("v1"), 0o600))

	w, err := New(logger.NewNoopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	called := make(chan struct{})
	require.NoError(t, w.Watch(watched, func() error {
		close(called)
		return nil
	}))

	stop := make(chan struct{})
	go w.Run(stop)
	t.Cleanup(func() { close(stop) })

	require.NoError(t, os.WriteFile(other, []byte("x"), 0o600))

	select {
	case <-called:
		t.Fatal("reload should not fire for an unrelated file")
	case <-time.After(150 * time.Millisecond):
	}
}
