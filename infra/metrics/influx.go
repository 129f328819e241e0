package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/timetable/core/metrics"
	"github.com/kilianp07/timetable/infra/logger"
)

// InfluxSink writes one point per run to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RunPoint renders a report as a timetable_run point.
func RunPoint(r coremetrics.RunReport) *write.Point {
	status := "ok"
	if !r.Succeeded {
		status = "failed"
	}
	p := write.NewPointWithMeasurement("timetable_run").
		AddTag("run_id", r.RunID).
		AddTag("status", status).
		AddField("files", r.Files).
		AddField("rows", r.Rows).
		AddField("descriptors", r.Descriptors).
		AddField("unique_sessions", r.UniqueSessions).
		AddField("parent_groups", r.ParentGroups).
		AddField("emitted", r.Emitted).
		AddField("destinations_ok", r.DestinationsOK).
		AddField("destinations_failed", r.DestinationsFailed).
		AddField("duration_ms", r.Duration.Milliseconds()).
		SetTime(r.Time)
	for reason, n := range r.Skipped {
		p.AddField("skipped_"+reason, n)
	}
	return p
}

// RecordRun writes the report.
func (s *InfluxSink) RecordRun(r coremetrics.RunReport) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, RunPoint(r))
}

// Close releases the HTTP client.
func (s *InfluxSink) Close() { s.client.Close() }
