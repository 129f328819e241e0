package metrics

import (
	"errors"
	"time"

	"github.com/kilianp07/timetable/core/factory"
)

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
}

// RunReport summarises one conversion run.
type RunReport struct {
	RunID              string
	Time               time.Time
	Duration           time.Duration
	Files              int
	Rows               int
	Skipped            map[string]int
	Descriptors        int
	UniqueSessions     int
	ParentGroups       int
	Emitted            int
	DestinationsOK     int
	DestinationsFailed int
	Succeeded          bool
}

// MetricsSink records run reports for observability purposes.
type MetricsSink interface {
	RecordRun(r RunReport) error
}

// NopSink discards every report.
type NopSink struct{}

func (NopSink) RecordRun(RunReport) error { return nil }

// MultiSink fans a report out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards the report to every sink and joins their errors.
func (m *MultiSink) RecordRun(r RunReport) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordRun(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var sinkRegistry = factory.NewRegistry[MetricsSink]()

// RegisterMetricsSink adds a metrics sink factory identified by name.
func RegisterMetricsSink(name string, f factory.Factory[MetricsSink]) error {
	return sinkRegistry.Register(name, f)
}

// NewMetricsSink builds the configured sinks. No entry yields a NopSink and
// several entries are combined into a MultiSink.
func NewMetricsSink(cfgs []factory.ModuleConfig) (MetricsSink, error) {
	sinks, err := sinkRegistry.CreateAll(cfgs)
	if err != nil {
		return nil, err
	}
	switch len(sinks) {
	case 0:
		return NopSink{}, nil
	case 1:
		return sinks[0], nil
	default:
		return NewMultiSink(sinks...), nil
	}
}

func init() {
	_ = RegisterMetricsSink("nop", func(map[string]any) (MetricsSink, error) {
		return NopSink{}, nil
	})
}
