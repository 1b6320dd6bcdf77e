package cli

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsConfigChange(t *testing.T) {
	path := filepath.Join("/etc", "transitsync", "config.toml")

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write", fsnotify.Event{Name: path, Op: fsnotify.Write}, true},
		{"create after rename", fsnotify.Event{Name: path, Op: fsnotify.Create}, true},
		{"unclean name", fsnotify.Event{Name: "/etc/transitsync/./config.toml", Op: fsnotify.Write}, true},
		{"chmod only", fsnotify.Event{Name: path, Op: fsnotify.Chmod}, false},
		{"remove", fsnotify.Event{Name: path, Op: fsnotify.Remove}, false},
		{"other file", fsnotify.Event{Name: "/etc/transitsync/config.toml.swp", Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isConfigChange(tt.event, path))
		})
	}
}

func TestWatchConfig_CallsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("home_address = \"a\"\n"), 0600))

	ctx, cancel := context.WithCancel(context.Background())
	var changes atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- watchConfig(ctx, path, func() { changes.Add(1) })
	}()

	// The watcher may not be registered yet, so keep writing, slower than
	// the debounce.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("home_address = \"b\"\n"), 0600)
		return changes.Load() > 0
	}, 10*time.Second, 2*reloadDebounce)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watchConfig did not return after cancel")
	}
}

func TestWatchConfig_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "config.toml")

	err := watchConfig(context.Background(), path, func() {})

	assert.Error(t, err)
}
