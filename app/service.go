package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/timetable/config"
	"github.com/kilianp07/timetable/core/convert"
	"github.com/kilianp07/timetable/core/emit"
	"github.com/kilianp07/timetable/core/events"
	"github.com/kilianp07/timetable/core/history"
	coremetrics "github.com/kilianp07/timetable/core/metrics"
	coremon "github.com/kilianp07/timetable/core/monitoring"
	"github.com/kilianp07/timetable/infra/logger"
	_ "github.com/kilianp07/timetable/infra/metrics" // registers prometheus and influx sinks
	"github.com/kilianp07/timetable/infra/mqtt"
	"github.com/kilianp07/timetable/infra/source"
	"github.com/kilianp07/timetable/internal/eventbus"
)

// Result describes one pipeline run.
type Result struct {
	RunID     string
	Started   time.Time
	Duration  time.Duration
	Status    string
	Sources   []string
	Stats     convert.Stats
	Hierarchy convert.Hierarchy
	Payload   []byte
	Emit      emit.Result
}

// Service runs the conversion pipeline and keeps the latest payload.
type Service struct {
	cfg       *config.Config
	converter *convert.Converter
	emitter   *emit.Emitter
	sink      coremetrics.MetricsSink
	store     history.RunStore
	bus       *eventbus.Bus[events.RunCompleted]
	log       logger.Logger
	now       func() time.Time

	notifier *mqtt.Notifier
	notified chan struct{}

	mu     sync.RWMutex
	latest *emit.Snapshot
}

// Option customizes a Service.
type Option func(*Service)

// WithDestinations replaces the file destinations from the configuration.
func WithDestinations(dests ...emit.Destination) Option {
	return func(s *Service) { s.emitter = emit.NewEmitter(logger.New("emitter"), dests...) }
}

// WithMetricsSink replaces the configured metrics sinks.
func WithMetricsSink(sink coremetrics.MetricsSink) Option {
	return func(s *Service) { s.sink = sink }
}

// WithRunStore replaces the configured history store.
func WithRunStore(store history.RunStore) Option {
	return func(s *Service) { s.store = store }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a Service from the configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	log := logger.New("service")
	s := &Service{
		cfg: cfg,
		converter: convert.NewConverter(convert.Options{
			SemesterStart: cfg.Semester.StartDate(),
			Propagation:   cfg.Aggregation.Mode(),
		}, logger.New("convert")),
		emitter: emit.NewEmitter(logger.New("emitter"), emit.FileDestinations(cfg.Output.Paths)...),
		bus:     eventbus.New[events.RunCompleted](eventbus.DefaultBuffer),
		log:     log,
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	if s.sink == nil {
		sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
		if err != nil {
			return nil, fmt.Errorf("metrics sink: %w", err)
		}
		s.sink = sink
	}
	if s.store == nil {
		store, err := history.Open(cfg.History)
		if err != nil {
			return nil, fmt.Errorf("history store: %w", err)
		}
		s.store = store
	}
	if cfg.MQTT.Enabled() {
		n, err := mqtt.NewNotifier(cfg.MQTT)
		if err != nil {
			log.Warnf("mqtt notifications disabled: %v", err)
		} else {
			s.notifier = n
			s.notified = make(chan struct{})
			sub := s.bus.Subscribe()
			go func() {
				defer close(s.notified)
				n.Listen(context.Background(), sub)
			}()
		}
	}
	return s, nil
}

// Config returns the configuration the service was built from.
func (s *Service) Config() *config.Config { return s.cfg }

// Events returns a subscription to run outcomes.
func (s *Service) Events() <-chan events.RunCompleted { return s.bus.Subscribe() }

// Store exposes the run history.
func (s *Service) Store() history.RunStore { return s.store }

// Latest returns the snapshot of the last run that produced a payload.
func (s *Service) Latest() (emit.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return emit.Snapshot{}, false
	}
	return *s.latest, true
}

// Run discovers the exports, converts them and writes the payload to every
// destination. A missing source yields a Result with StatusNoInput and an
// error matching IsNoInput.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	res := &Result{RunID: uuid.NewString(), Started: s.now()}
	s.log.Infof("run %s started", res.RunID)
	err := s.run(ctx, res)
	switch {
	case err == nil:
		res.Status = history.StatusOK
	case IsNoInput(err):
		res.Status = history.StatusNoInput
		s.log.Warnf("run %s: %v", res.RunID, err)
	default:
		res.Status = history.StatusFailed
		s.log.Errorf("run %s failed: %v", res.RunID, err)
		coremon.CaptureException(err, map[string]string{"run_id": res.RunID, "module": "pipeline"})
	}
	res.Duration = s.now().Sub(res.Started)
	s.record(ctx, res, err)
	return res, err
}

// IsNoInput reports whether err means there was nothing to convert.
func IsNoInput(err error) bool {
	return errors.Is(err, source.ErrSourceMissing) || errors.Is(err, source.ErrNoSourceFiles)
}

func (s *Service) run(ctx context.Context, res *Result) error {
	files, err := source.Discover(s.cfg.Source)
	if err != nil {
		return err
	}
	res.Sources = files

	build := s.converter.NewContext()
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		recs, err := source.ReadFile(f)
		if err != nil {
			return err
		}
		for _, rec := range recs {
			if err := build.Add(rec); err != nil {
				res.Stats = build.Stats()
				return err
			}
		}
		s.log.Debugf("read %d rows from %s", len(recs), f)
	}
	sessions, hierarchy := build.Result()
	res.Stats = build.Stats()
	res.Hierarchy = hierarchy

	payload, err := emit.Encode(emit.NewPayload(sessions), s.cfg.Output.IndentWidth())
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	if s.cfg.Output.ValidateSchema() {
		if err := emit.Validate(payload); err != nil {
			return err
		}
	}
	res.Payload = payload
	s.mu.Lock()
	s.latest = &emit.Snapshot{RunID: res.RunID, Time: res.Started, Payload: payload, Sessions: sessions}
	s.mu.Unlock()

	emitted, err := s.emitter.Emit(ctx, payload)
	res.Emit = emitted
	if err != nil {
		return err
	}
	s.log.Infof("run %s: %d rows, %d sessions written to %d destinations",
		res.RunID, res.Stats.Rows, res.Stats.Emitted, len(emitted.Written))
	return nil
}

// record publishes the outcome. Failures here are logged only.
func (s *Service) record(ctx context.Context, res *Result, runErr error) {
	skipped := make(map[string]int, len(res.Stats.Skipped))
	for reason, n := range res.Stats.Skipped {
		skipped[string(reason)] = n
	}
	report := coremetrics.RunReport{
		RunID:              res.RunID,
		Time:               res.Started,
		Duration:           res.Duration,
		Files:              len(res.Sources),
		Rows:               res.Stats.Rows,
		Skipped:            skipped,
		Descriptors:        res.Stats.Descriptors,
		UniqueSessions:     res.Stats.UniqueSessions,
		ParentGroups:       res.Stats.ParentGroups,
		Emitted:            res.Stats.Emitted,
		DestinationsOK:     len(res.Emit.Written),
		DestinationsFailed: len(res.Emit.Failed),
		Succeeded:          runErr == nil,
	}
	if err := s.sink.RecordRun(report); err != nil {
		s.log.Warnf("record metrics: %v", err)
	}

	rec := history.RunRecord{
		ID:             res.RunID,
		Timestamp:      res.Started,
		DurationMS:     res.Duration.Milliseconds(),
		Sources:        res.Sources,
		Rows:           res.Stats.Rows,
		Skipped:        skipped,
		Descriptors:    res.Stats.Descriptors,
		UniqueSessions: res.Stats.UniqueSessions,
		ParentGroups:   res.Stats.ParentGroups,
		Emitted:        res.Stats.Emitted,
		Status:         res.Status,
	}
	if len(res.Emit.Written)+len(res.Emit.Failed) > 0 {
		rec.Destinations = make(map[string]string)
		for _, p := range res.Emit.Written {
			rec.Destinations[p] = ""
		}
		for _, f := range res.Emit.Failed {
			rec.Destinations[f.Destination] = f.Err.Error()
		}
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}
	if err := s.store.Append(ctx, rec); err != nil {
		s.log.Warnf("append history: %v", err)
	}

	s.bus.Publish(events.RunCompleted{
		RunID:    res.RunID,
		Time:     res.Started,
		Status:   res.Status,
		Sessions: res.Stats.Emitted,
		Written:  res.Emit.Written,
		Error:    rec.Error,
	})
}

// Close releases the history store and waits for pending notifications.
func (s *Service) Close() error {
	s.bus.Close()
	if s.notifier != nil {
		<-s.notified
		s.notifier.Close()
	}
	return s.store.Close()
}
