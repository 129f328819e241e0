package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/timetable/config"
	"github.com/kilianp07/timetable/core/convert"
	"github.com/kilianp07/timetable/core/emit"
	"github.com/kilianp07/timetable/core/history"
	coremetrics "github.com/kilianp07/timetable/core/metrics"
	coremon "github.com/kilianp07/timetable/core/monitoring"
)

const export = `Subject,Start Date,Start Time,End Time,Location
MO(P) - 4ES1,16/02/2026,09:00:00,11:00:00,C4-002
MO(P) - 4ES1,23/02/2026,09:00:00,11:00:00,C4-002
NO LECTIU,24/02/2026,,,
AM(G) - 2,17/02/2026,10:00:00,12:00:00,C4-101
AM(L) - 2A,18/02/2026,15:00:00,17:00:00,LAB1
AM(L) - 2B,19/02/2026,15:00:00,17:00:00,LAB2
`

type recordingSink struct{ reports []coremetrics.RunReport }

func (r *recordingSink) RecordRun(rep coremetrics.RunReport) error {
	r.reports = append(r.reports, rep)
	return nil
}

func testConfig(t *testing.T, srcDir string, outputs ...string) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Source.Dir = srcDir
	cfg.Output.Paths = outputs
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	return cfg
}

func writeExport(t *testing.T, dir, name, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(data), 0o644))
}

func TestRunEndToEnd(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "data")
	writeExport(t, src, "EspaiC4.csv", export)
	txt := filepath.Join(root, "schedule_data.txt")
	js := filepath.Join(root, "src", "data.json")

	store, err := history.NewJSONLStore(filepath.Join(root, "runs.jsonl"))
	require.NoError(t, err)
	sink := &recordingSink{}
	svc, err := New(testConfig(t, src, txt, js), WithRunStore(store), WithMetricsSink(sink))
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()
	events := svc.Events()

	res, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, history.StatusOK, res.Status)
	assert.Equal(t, 6, res.Stats.Rows)
	assert.Equal(t, 1, res.Stats.Skipped[convert.SkipHoliday])
	assert.Equal(t, 4, res.Stats.Emitted)
	assert.Equal(t, []string{"2A"}, res.Hierarchy["AM"]["2"])

	a, err := os.ReadFile(txt)
	require.NoError(t, err)
	b, err := os.ReadFile(js)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, res.Payload, a)

	p, err := emit.Decode(a)
	require.NoError(t, err)
	require.Equal(t, 4, p.Count)
	first := p.Results[0]
	assert.Equal(t, "AM", first.Subject)
	assert.Equal(t, "2A", first.Group)
	assert.Equal(t, 2, first.Weekday)
	assert.Equal(t, "T", first.Type.String())
	last := p.Results[3]
	assert.Equal(t, "MO", last.Subject)
	assert.Equal(t, []int{1, 2}, last.Weeks)

	snap, ok := svc.Latest()
	require.True(t, ok)
	assert.Equal(t, res.RunID, snap.RunID)
	assert.Len(t, snap.Sessions, 4)

	select {
	case ev := <-events:
		assert.Equal(t, res.RunID, ev.RunID)
		assert.Equal(t, history.StatusOK, ev.Status)
		assert.Equal(t, 4, ev.Sessions)
	case <-time.After(time.Second):
		t.Fatal("no run event")
	}

	require.Len(t, sink.reports, 1)
	assert.True(t, sink.reports[0].Succeeded)
	assert.Equal(t, 2, sink.reports[0].DestinationsOK)
	assert.Equal(t, 1, sink.reports[0].Skipped["holiday"])

	recs, err := store.Query(context.Background(), history.RunQuery{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, history.StatusOK, recs[0].Status)
	assert.Equal(t, "", recs[0].Destinations[js])
}

func TestRunIsIdempotent(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "data")
	writeExport(t, src, "b.csv", export)
	writeExport(t, src, "a.csv", "Subject,Start Date,Start Time,End Time\nMO(P) - 4ES1,02/03/2026,09:00:00,11:00:00\n")
	out := filepath.Join(root, "data.json")
	svc, err := New(testConfig(t, src, out))
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	first, err := svc.Run(context.Background())
	require.NoError(t, err)
	second, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.Payload, second.Payload)
	assert.NotEqual(t, first.RunID, second.RunID)

	p, err := emit.Decode(second.Payload)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, p.Results[3].Weeks)
}

func TestRunWithoutSourceWritesNothing(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "data.json")
	sink := &recordingSink{}
	svc, err := New(testConfig(t, filepath.Join(root, "missing"), out), WithMetricsSink(sink))
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	res, err := svc.Run(context.Background())
	require.Error(t, err)
	assert.True(t, IsNoInput(err))
	assert.Equal(t, history.StatusNoInput, res.Status)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
	_, ok := svc.Latest()
	assert.False(t, ok)
	require.Len(t, sink.reports, 1)
	assert.False(t, sink.reports[0].Succeeded)
}

func TestRunPartialDestinationFailure(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "data")
	writeExport(t, src, "EspaiC4.csv", export)
	blocker := filepath.Join(root, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	good := filepath.Join(root, "out", "data.json")
	bad := filepath.Join(blocker, "data.json")

	rec := &coremon.Recorder{}
	coremon.Init(rec)
	defer coremon.Init(coremon.NopMonitor{})

	svc, err := New(testConfig(t, src, bad, good))
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	res, err := svc.Run(context.Background())
	require.Error(t, err)
	var de *emit.DestinationError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, bad, de.Destination)
	assert.Equal(t, history.StatusFailed, res.Status)
	assert.Equal(t, []string{good}, res.Emit.Written)
	_, statErr := os.Stat(good)
	assert.NoError(t, statErr)

	captured := rec.Captured()
	require.Len(t, captured, 1)
	assert.Equal(t, res.RunID, captured[0].Tags["run_id"])
}

func TestRunMalformedRowAborts(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "data")
	writeExport(t, src, "bad.csv", "Subject,Start Date,Start Time,End Time\nMO(P) - 4ES1,2026-02-16,09:00:00,11:00:00\n")
	out := filepath.Join(root, "data.json")
	svc, err := New(testConfig(t, src, out))
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	res, err := svc.Run(context.Background())
	require.Error(t, err)
	var rowErr *convert.RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 2, rowErr.Line)
	assert.ErrorIs(t, err, convert.ErrMalformedDate)
	assert.Equal(t, history.StatusFailed, res.Status)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}
