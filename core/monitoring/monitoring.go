// Package monitoring exposes a process-wide error reporter.
package monitoring

import (
	"fmt"
	"sync"
	"time"
)

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	// CapturePanic records a recovered panic value.
	CapturePanic(v any)
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) CapturePanic(any)                          {}
func (NopMonitor) Flush(time.Duration)                       {}

var (
	mu      sync.RWMutex
	current Monitor = NopMonitor{}
)

// Init sets the global monitor implementation. A nil monitor is ignored.
func Init(m Monitor) {
	if m == nil {
		return
	}
	mu.Lock()
	current = m
	mu.Unlock()
}

func get() Monitor {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// CaptureException records the error with optional tags.
func CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	get().CaptureException(err, tags)
}

// Recover reports a panic to the monitor, flushes it and panics again. It
// must be deferred directly.
func Recover() {
	if r := recover(); r != nil {
		m := get()
		m.CapturePanic(r)
		m.Flush(2 * time.Second)
		panic(r)
	}
}

// Flush flushes buffered events.
func Flush(d time.Duration) {
	get().Flush(d)
}

// Captured is an error recorded by Recorder.
type Captured struct {
	Err  error
	Tags map[string]string
}

// Recorder keeps captured errors in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Captured
}

func (r *Recorder) CaptureException(err error, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Captured{Err: err, Tags: tags})
}

// CapturePanic records the panic value as an error tagged panic=true.
func (r *Recorder) CapturePanic(v any) {
	r.CaptureException(fmt.Errorf("panic: %v", v), map[string]string{"panic": "true"})
}

func (r *Recorder) Flush(time.Duration) {}

// Captured returns a copy of the recorded errors.
func (r *Recorder) Captured() []Captured {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Captured(nil), r.events...)
}
