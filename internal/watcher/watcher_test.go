package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/boxbuild/boxbuild/internal/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(logger.Options{Level: "error"})
	require.NoError(t, err)
	return log
}

func TestWatcherFiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yml")
	require.NoError(t, os.WriteFile(path, []byte("box: python:3.11\n"), 0o600))

	w, err := New(newTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	w.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var fired atomic.Int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Watch(ctx, path, func() {
			fired.Add(1)
			cancel()
		})
	}()

	// Give the watcher time to register before mutating the file.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("box: python:3.12\n"), 0o600))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not fire")
	}
	require.Equal(t, int32(1), fired.Load())
}

func TestWatcherIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yml")
	require.NoError(t, os.WriteFile(path, []byte("box: python:3.11\n"), 0o600))

	w, err := New(newTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	w.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	var fired atomic.Int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Watch(ctx, path, func() { fired.Add(1) })
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yml"), []byte("noise\n"), 0o600))

	<-done
	require.Equal(t, int32(0), fired.Load())
}
