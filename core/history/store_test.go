package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func records(base time.Time) []RunRecord {
	return []RunRecord{
		{ID: "a", Timestamp: base, Status: StatusOK, Emitted: 10, Sources: []string{"data/a.csv"}},
		{ID: "b", Timestamp: base.Add(time.Hour), Status: StatusFailed, Error: "boom"},
		{ID: "c", Timestamp: base.Add(2 * time.Hour), Status: StatusOK, Destinations: map[string]string{"out.json": ""}},
	}
}

func exerciseStore(t *testing.T, store RunStore) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 2, 16, 8, 0, 0, 0, time.UTC)
	for _, r := range records(base) {
		require.NoError(t, store.Append(ctx, r))
	}

	all, err := store.Query(ctx, RunQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, []string{"data/a.csv"}, all[0].Sources)

	ok, err := store.Query(ctx, RunQuery{Status: StatusOK})
	require.NoError(t, err)
	assert.Len(t, ok, 2)

	window, err := store.Query(ctx, RunQuery{Start: base.Add(30 * time.Minute), End: base.Add(90 * time.Minute)})
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, "boom", window[0].Error)

	last, err := store.Query(ctx, RunQuery{Limit: 1})
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, "c", last[0].ID)
}

func TestJSONLStore(t *testing.T) {
	store, err := NewJSONLStore(filepath.Join(t.TempDir(), "runs.jsonl"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	exerciseStore(t, store)
}

func TestRotatingJSONLStore(t *testing.T) {
	store, err := NewRotatingJSONLStore(filepath.Join(t.TempDir(), "logs", "runs.jsonl"), 1, 2, 1)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	exerciseStore(t, store)
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore("file:runs_test.db?mode=memory&cache=shared")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	exerciseStore(t, store)
}

func TestOpenAndConfig(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	s, err := Open(cfg)
	require.NoError(t, err)
	assert.IsType(t, NopStore{}, s)

	dir := t.TempDir()
	for _, backend := range []string{"jsonl", "jsonl_rotating", "sqlite"} {
		c := Config{Backend: backend, Path: filepath.Join(dir, fmt.Sprintf("runs-%s", backend))}
		c.SetDefaults()
		require.NoError(t, c.Validate(), backend)
		s, err := Open(c)
		require.NoError(t, err, backend)
		require.NoError(t, s.Close())
	}

	bad := Config{Backend: "csv"}
	assert.Error(t, bad.Validate())
	_, err = Open(bad)
	assert.Error(t, err)
}
