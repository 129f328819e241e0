package convert

import (
	"time"

	"github.com/kilianp07/timetable/core/logger"
	"github.com/kilianp07/timetable/core/model"
)

// Options configures a Converter.
type Options struct {
	SemesterStart time.Time
	Propagation   Propagation
}

// Converter creates BuildContexts sharing the same options.
type Converter struct {
	opts Options
	log  logger.Logger
}

// NewConverter returns a Converter. A nil logger discards output.
func NewConverter(opts Options, log logger.Logger) *Converter {
	if opts.Propagation == "" {
		opts.Propagation = PropagateFirst
	}
	if log == nil {
		log = nopLogger{}
	}
	return &Converter{opts: opts, log: log}
}

// NewContext starts a fresh conversion run.
func (c *Converter) NewContext() *BuildContext {
	return &BuildContext{
		normalizer: NewNormalizer(c.opts.SemesterStart),
		dedup:      NewDeduplicator(),
		aggregator: Aggregator{Mode: c.opts.Propagation},
		log:        c.log,
		stats:      Stats{Skipped: make(map[SkipReason]int)},
	}
}

// Convert runs records through a fresh context.
func (c *Converter) Convert(records []model.RawRecord) ([]*model.Session, Stats, error) {
	ctx := c.NewContext()
	for _, rec := range records {
		if err := ctx.Add(rec); err != nil {
			return nil, ctx.Stats(), err
		}
	}
	sessions, _ := ctx.Result()
	return sessions, ctx.Stats(), nil
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
