package metrics

import (
	"errors"
	"testing"

	"github.com/kilianp07/timetable/core/factory"
)

type recordSink struct {
	count int
	err   error
}

func (r *recordSink) RecordRun(RunReport) error {
	r.count++
	return r.err
}

// TestMultiSink ensures reports reach every sink even when one fails.
func TestMultiSink(t *testing.T) {
	a := &recordSink{err: errors.New("boom")}
	b := &recordSink{}
	m := NewMultiSink(a, b)
	if err := m.RecordRun(RunReport{RunID: "r"}); err == nil {
		t.Fatal("expected joined error")
	}
	if a.count != 1 || b.count != 1 {
		t.Fatalf("expected both sinks called, got %d %d", a.count, b.count)
	}
}

/*
TestNewMetricsSink validates NewMetricsSink behavior with zero, one, and multiple configs.
Cases:
  - no config -> NopSink
  - two configs -> MultiSink with two sub-sinks
  - unknown type -> error
*/
func TestNewMetricsSink(t *testing.T) {
	s, err := NewMetricsSink(nil)
	if err != nil {
		t.Fatalf("create nop default: %v", err)
	}
	if _, ok := s.(NopSink); !ok {
		t.Fatalf("expected NopSink, got %T", s)
	}

	s, err = NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}, {Type: "nop"}})
	if err != nil {
		t.Fatalf("create multi: %v", err)
	}
	m, ok := s.(*MultiSink)
	if !ok {
		t.Fatalf("expected MultiSink, got %T", s)
	}
	if len(m.Sinks) != 2 {
		t.Fatalf("expected 2 sinks, got %d", len(m.Sinks))
	}

	if _, err := NewMetricsSink([]factory.ModuleConfig{{Type: "missing"}}); err == nil {
		t.Fatal("expected error for unknown type")
	}
}
