package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/timetable/infra/source"
)

type batches struct {
	mu  sync.Mutex
	got [][]string
}

func (b *batches) add(paths []string) {
	b.mu.Lock()
	b.got = append(b.got, paths)
	b.mu.Unlock()
}

func (b *batches) snapshot() [][]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([][]string(nil), b.got...)
}

func startWatcher(t *testing.T, cfg source.Config) *batches {
	t.Helper()
	w, err := New(cfg, 100*time.Millisecond)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	b := &batches{}
	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx, b.add)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return b
}

func TestWatcherBatchesCSVChanges(t *testing.T) {
	dir := t.TempDir()
	b := startWatcher(t, source.Config{Dir: dir, Exclude: []string{"draft-*"}})

	a := filepath.Join(dir, "a.csv")
	require.NoError(t, os.WriteFile(a, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(a, []byte("xy"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "draft-1.csv"), []byte("x"), 0o644))

	require.Eventually(t, func() bool { return len(b.snapshot()) > 0 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(250 * time.Millisecond)
	got := b.snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, []string{a}, got[0])
}

func TestWatcherSingleFile(t *testing.T) {
	dir := t.TempDir()
	legacy := filepath.Join(dir, "legacy.csv")
	b := startWatcher(t, source.Config{File: legacy})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.csv"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(legacy, []byte("x"), 0o644))

	require.Eventually(t, func() bool { return len(b.snapshot()) > 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{legacy}, b.snapshot()[0])
}

func TestNewMissingDir(t *testing.T) {
	_, err := New(source.Config{Dir: filepath.Join(t.TempDir(), "missing")}, 0)
	assert.Error(t, err)
}
