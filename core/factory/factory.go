package factory

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"
)

var (
	// ErrUnknownModule is returned by Create for an unregistered type.
	ErrUnknownModule = errors.New("unknown module type")
	// ErrDuplicateModule is returned when a type is registered twice.
	ErrDuplicateModule = errors.New("module type already registered")
)

// ModuleConfig selects a module by type and carries its settings, as in
//
//	sinks:
//	  - type: influx
//	    conf: {url: "http://influx:8086", bucket: timetable}
type ModuleConfig struct {
	Type string         `json:"type"`
	Conf map[string]any `json:"conf"`
}

// Factory builds a T from the conf map of a ModuleConfig.
type Factory[T any] func(conf map[string]any) (T, error)

// Registry maps type names to factories. Names are case-insensitive.
type Registry[T any] struct {
	mu        sync.RWMutex
	factories map[string]Factory[T]
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{factories: make(map[string]Factory[T])}
}

func normalize(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

// Register adds f under name.
func (r *Registry[T]) Register(name string, f Factory[T]) error {
	key := normalize(name)
	if key == "" || f == nil {
		return fmt.Errorf("register %q: empty name or nil factory", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.factories[key]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateModule, key)
	}
	r.factories[key] = f
	return nil
}

// Names lists the registered types, sorted.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Create builds the module named by cfg.Type. Factory errors are prefixed
// with the type so a bad sink entry is easy to find in the config.
func (r *Registry[T]) Create(cfg ModuleConfig) (T, error) {
	var zero T
	key := normalize(cfg.Type)
	r.mu.RLock()
	f, ok := r.factories[key]
	r.mu.RUnlock()
	if !ok {
		return zero, fmt.Errorf("%w %q (known: %s)", ErrUnknownModule, cfg.Type, strings.Join(r.Names(), ", "))
	}
	m, err := f(cfg.Conf)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", key, err)
	}
	return m, nil
}

// CreateAll builds every entry of cfgs in order and stops at the first error.
func (r *Registry[T]) CreateAll(cfgs []ModuleConfig) ([]T, error) {
	out := make([]T, 0, len(cfgs))
	for i, c := range cfgs {
		m, err := r.Create(c)
		if err != nil {
			return nil, fmt.Errorf("module %d: %w", i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// Decode copies conf into out using json tags. String values are converted
// to the field type, and keys without a matching field are rejected.
func Decode(conf map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(conf)
}
