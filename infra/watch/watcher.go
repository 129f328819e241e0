// Package watch reruns conversions when timetable exports change on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/kilianp07/timetable/infra/logger"
	"github.com/kilianp07/timetable/infra/source"
)

// DefaultDebounce is the quiet period before a batch of changes is reported.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reports batches of changed CSV files in a source directory.
type Watcher struct {
	dir      string
	only     string
	debounce time.Duration
	ignore   *gitignore.GitIgnore
	fsw      *fsnotify.Watcher
	log      logger.Logger
}

// New starts watching the directory described by cfg. When cfg.File is set
// only that file is reported.
func New(cfg source.Config, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w := &Watcher{
		dir:      cfg.Dir,
		debounce: debounce,
		ignore:   gitignore.CompileIgnoreLines(cfg.Exclude...),
		log:      logger.New("watcher"),
	}
	if cfg.File != "" {
		w.dir = filepath.Dir(cfg.File)
		w.only = filepath.Base(cfg.File)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.fsw = fsw
	return w, nil
}

// Run delivers sorted batches of changed paths to onChange until ctx ends.
// onChange runs on the watcher goroutine; events arriving meanwhile are
// batched into the next call.
func (w *Watcher) Run(ctx context.Context, onChange func([]string)) error {
	defer func() { _ = w.fsw.Close() }()
	pending := make(map[string]bool)
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.log.Debugw("source changed", map[string]any{"path": ev.Name, "op": ev.Op.String()})
			pending[ev.Name] = true
			fire = time.After(w.debounce)
		case <-fire:
			fire = nil
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			pending = make(map[string]bool)
			onChange(changed)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warnf("watcher error: %v", err)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(ev.Name)
	if w.only != "" {
		return name == w.only
	}
	return source.IsCSV(name) && !w.ignore.MatchesPath(name)
}
