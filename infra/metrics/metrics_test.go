package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/timetable/core/factory"
	coremetrics "github.com/kilianp07/timetable/core/metrics"
)

func report() coremetrics.RunReport {
	return coremetrics.RunReport{
		RunID:          "run-1",
		Time:           time.Unix(1771200000, 0),
		Duration:       1500 * time.Millisecond,
		Files:          2,
		Rows:           120,
		Skipped:        map[string]int{"holiday": 4, "weekend": 2},
		Descriptors:    114,
		UniqueSessions: 30,
		ParentGroups:   3,
		Emitted:        41,
		DestinationsOK: 2,
		Succeeded:      true,
	}
}

func TestPromSinkRecordsAndWritesTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	path := filepath.Join(t.TempDir(), "timetable.prom")
	sink, err := NewPromSinkWithRegistry(reg, reg, path)
	require.NoError(t, err)

	require.NoError(t, sink.RecordRun(report()))
	assert.Equal(t, 120.0, testutil.ToFloat64(sink.rows))
	assert.Equal(t, 41.0, testutil.ToFloat64(sink.sessions.WithLabelValues("emitted")))
	assert.Equal(t, 4.0, testutil.ToFloat64(sink.skipped.WithLabelValues("holiday")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.runs.WithLabelValues("true")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "timetable_last_run_parent_groups 3")

	again, err := NewPromSinkWithRegistry(reg, reg, "")
	require.NoError(t, err, "re-registering should reuse collectors")
	require.NoError(t, again.RecordRun(report()))
	assert.Equal(t, 2.0, testutil.ToFloat64(sink.runs.WithLabelValues("true")))
}

func TestInfluxSinkRecordRun(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()
	require.NoError(t, sink.RecordRun(report()))
	assert.True(t, strings.HasPrefix(body, "timetable_run,"), body)
	assert.Contains(t, body, "run_id=run-1")
	assert.Contains(t, body, "emitted=41i")
	assert.Contains(t, body, "skipped_holiday=4i")
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}

func TestFactoryRegistersBuiltins(t *testing.T) {
	s, err := coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "prometheus", Conf: map[string]any{}}})
	require.NoError(t, err)
	_, ok := s.(*PromSink)
	assert.True(t, ok, "got %T", s)
}
