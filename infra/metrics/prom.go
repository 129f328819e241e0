package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/timetable/core/metrics"
)

// PromSink exposes run reports as Prometheus metrics. When a textfile path is
// configured the registry is also written in node-exporter textfile format
// after every run, which is how batch jobs publish metrics.
type PromSink struct {
	runs     *prometheus.CounterVec
	rows     prometheus.Gauge
	skipped  *prometheus.GaugeVec
	sessions *prometheus.GaugeVec
	parents  prometheus.Gauge
	dests    *prometheus.GaugeVec
	duration prometheus.Gauge
	lastRun  prometheus.Gauge
	gatherer prometheus.Gatherer
	textfile string
}

// NewPromSink registers run metrics on the default Prometheus registry.
func NewPromSink(textfile string) (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer, prometheus.DefaultGatherer, textfile)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer. A nil
// registerer defaults to the global Prometheus registry.
func NewPromSinkWithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer, textfile string) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s := &PromSink{gatherer: gatherer, textfile: textfile}
	var err error
	if s.runs, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_runs_total",
		Help: "Number of conversion runs by outcome",
	}, []string{"succeeded"})); err != nil {
		return nil, err
	}
	if s.rows, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "timetable_last_run_rows",
		Help: "Rows read by the last conversion run",
	})); err != nil {
		return nil, err
	}
	if s.skipped, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "timetable_last_run_skipped_rows",
		Help: "Rows skipped by the last conversion run, by reason",
	}, []string{"reason"})); err != nil {
		return nil, err
	}
	if s.sessions, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "timetable_last_run_sessions",
		Help: "Sessions produced by the last conversion run, by stage",
	}, []string{"stage"})); err != nil {
		return nil, err
	}
	if s.parents, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "timetable_last_run_parent_groups",
		Help: "Parent groups propagated into child groups by the last run",
	})); err != nil {
		return nil, err
	}
	if s.dests, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "timetable_last_run_destinations",
		Help: "Destinations written by the last run, by result",
	}, []string{"result"})); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "timetable_last_run_duration_seconds",
		Help: "Wall time of the last conversion run",
	})); err != nil {
		return nil, err
	}
	if s.lastRun, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "timetable_last_run_timestamp_seconds",
		Help: "Unix time of the last conversion run",
	})); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordRun updates the gauges and writes the textfile when configured.
func (s *PromSink) RecordRun(r coremetrics.RunReport) error {
	s.runs.WithLabelValues(strconv.FormatBool(r.Succeeded)).Inc()
	s.rows.Set(float64(r.Rows))
	s.skipped.Reset()
	for reason, n := range r.Skipped {
		s.skipped.WithLabelValues(reason).Set(float64(n))
	}
	s.sessions.WithLabelValues("descriptors").Set(float64(r.Descriptors))
	s.sessions.WithLabelValues("unique").Set(float64(r.UniqueSessions))
	s.sessions.WithLabelValues("emitted").Set(float64(r.Emitted))
	s.parents.Set(float64(r.ParentGroups))
	s.dests.WithLabelValues("ok").Set(float64(r.DestinationsOK))
	s.dests.WithLabelValues("failed").Set(float64(r.DestinationsFailed))
	s.duration.Set(r.Duration.Seconds())
	s.lastRun.Set(float64(r.Time.Unix()))
	if s.textfile == "" {
		return nil
	}
	return prometheus.WriteToTextfile(s.textfile, s.gatherer)
}
