package history

import (
	"context"
	"fmt"
	"time"
)

// Run outcomes.
const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusNoInput = "no_input"
)

// RunRecord captures one conversion run and its outcome.
type RunRecord struct {
	ID             string            `json:"id"`
	Timestamp      time.Time         `json:"timestamp"`
	DurationMS     int64             `json:"duration_ms"`
	Sources        []string          `json:"sources"`
	Rows           int               `json:"rows"`
	Skipped        map[string]int    `json:"skipped,omitempty"`
	Descriptors    int               `json:"descriptors"`
	UniqueSessions int               `json:"unique_sessions"`
	ParentGroups   int               `json:"parent_groups"`
	Emitted        int               `json:"emitted"`
	Destinations   map[string]string `json:"destinations,omitempty"` // path -> error, empty when written
	Status         string            `json:"status"`
	Error          string            `json:"error,omitempty"`
}

// RunQuery defines filters for retrieving records. Zero values match all.
type RunQuery struct {
	Start  time.Time
	End    time.Time
	Status string
	Limit  int
}

func (q RunQuery) match(r RunRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Status != "" && r.Status != q.Status {
		return false
	}
	return true
}

// limit keeps the most recent q.Limit records of a chronological slice.
func (q RunQuery) limit(res []RunRecord) []RunRecord {
	if q.Limit > 0 && len(res) > q.Limit {
		return res[len(res)-q.Limit:]
	}
	return res
}

// RunStore persists RunRecords and supports querying.
type RunStore interface {
	Append(ctx context.Context, rec RunRecord) error
	Query(ctx context.Context, q RunQuery) ([]RunRecord, error)
	Close() error
}

// NopStore drops every record.
type NopStore struct{}

func (NopStore) Append(context.Context, RunRecord) error              { return nil }
func (NopStore) Query(context.Context, RunQuery) ([]RunRecord, error) { return nil, nil }
func (NopStore) Close() error                                         { return nil }

// Config defines settings for run history storage and rotation.
type Config struct {
	// Backend selects the store type: "none", "jsonl", "jsonl_rotating" or "sqlite".
	Backend string `json:"backend"`
	// Path is the file location of the store.
	Path string `json:"path"`
	// MaxSizeMB triggers rotation when the file exceeds this size in megabytes.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "none"
	}
	if c.Path == "" {
		switch c.Backend {
		case "sqlite":
			c.Path = "timetable-runs.db"
		case "jsonl", "jsonl_rotating":
			c.Path = "timetable-runs.jsonl"
		}
	}
	if c.Backend == "jsonl_rotating" && c.MaxSizeMB == 0 {
		c.MaxSizeMB = 10
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	switch c.Backend {
	case "none":
		return nil
	case "jsonl", "jsonl_rotating", "sqlite":
	default:
		return fmt.Errorf("unknown history backend %s", c.Backend)
	}
	if c.Path == "" {
		return fmt.Errorf("history path is required")
	}
	return nil
}

// Open creates the store selected by cfg.
func Open(cfg Config) (RunStore, error) {
	switch cfg.Backend {
	case "", "none":
		return NopStore{}, nil
	case "jsonl":
		return NewJSONLStore(cfg.Path)
	case "jsonl_rotating":
		return NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown history backend %s", cfg.Backend)
	}
}
