package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options controls the output of every logger created by New.
type Options struct {
	// Level is one of debug, info, warn or error.
	Level string
	// Format is json or console. APP_ENV=dev forces console.
	Format string
	// Out defaults to stderr so stdout stays free for command output.
	Out io.Writer
}

var (
	mu   sync.RWMutex
	opts = Options{Level: "info", Format: "json"}
)

// Configure sets the process wide logging options. It is called once by the
// CLI after the configuration is loaded.
func Configure(o Options) {
	mu.Lock()
	defer mu.Unlock()
	if o.Level == "" {
		o.Level = "info"
	}
	if o.Format == "" {
		o.Format = "json"
	}
	opts = o
	lvl, err := zerolog.ParseLevel(strings.ToLower(o.Level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger creates a ZerologLogger tagged with the provided component.
func NewZerologLogger(component string) Logger {
	mu.RLock()
	o := opts
	mu.RUnlock()
	out := o.Out
	if out == nil {
		out = os.Stderr
	}
	if o.Format == "console" || strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	z := zerolog.New(out).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	ev := l.log.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
