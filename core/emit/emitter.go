package emit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kilianp07/timetable/core/logger"
)

// Destination receives a copy of the encoded payload.
type Destination interface {
	Write(ctx context.Context, payload []byte) error
	String() string
}

// FileDestination writes the payload to a file, creating parent directories.
// The file is replaced atomically through a temporary sibling.
type FileDestination struct {
	Path string
}

func (d FileDestination) String() string { return d.Path }

func (d FileDestination) Write(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(d.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(d.Path)+".*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), d.Path)
}

// FileDestinations builds file destinations for paths.
func FileDestinations(paths []string) []Destination {
	out := make([]Destination, len(paths))
	for i, p := range paths {
		out[i] = FileDestination{Path: p}
	}
	return out
}

// DestinationError reports a failed write.
type DestinationError struct {
	Destination string
	Err         error
}

func (e *DestinationError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Destination, e.Err)
}

func (e *DestinationError) Unwrap() error { return e.Err }

// Result lists the outcome per destination.
type Result struct {
	Written []string
	Failed  []*DestinationError
}

// Emitter writes identical payload bytes to every destination.
type Emitter struct {
	dests []Destination
	log   logger.Logger
}

// NewEmitter returns an Emitter for dests.
func NewEmitter(log logger.Logger, dests ...Destination) *Emitter {
	return &Emitter{dests: dests, log: log}
}

// Emit attempts every destination even when earlier ones fail. The returned
// error joins all DestinationErrors.
func (e *Emitter) Emit(ctx context.Context, payload []byte) (Result, error) {
	var res Result
	var errs []error
	for _, d := range e.dests {
		if err := d.Write(ctx, payload); err != nil {
			de := &DestinationError{Destination: d.String(), Err: err}
			res.Failed = append(res.Failed, de)
			errs = append(errs, de)
			if e.log != nil {
				e.log.Errorf("write %s failed: %v", d, err)
			}
			continue
		}
		res.Written = append(res.Written, d.String())
		if e.log != nil {
			e.log.Infof("wrote %d bytes to %s", len(payload), d)
		}
	}
	return res, errors.Join(errs...)
}
