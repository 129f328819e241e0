package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kilianp07/timetable/core/convert"
)

// DefaultSemesterStart is the Monday of week 1 of the spring 2026 semester.
const DefaultSemesterStart = "2026-02-16"

const semesterLayout = "2006-01-02"

// SemesterConfig anchors week numbering.
type SemesterConfig struct {
	// Start is the Monday of week 1, formatted YYYY-MM-DD.
	Start string `json:"start"`
}

func (c *SemesterConfig) SetDefaults() {
	if c.Start == "" {
		c.Start = DefaultSemesterStart
	}
}

func (c SemesterConfig) Validate() error {
	d, err := time.Parse(semesterLayout, c.Start)
	if err != nil {
		return fmt.Errorf("start %q: %w", c.Start, err)
	}
	if d.Weekday() != time.Monday {
		return fmt.Errorf("start %s is a %s, want Monday", c.Start, d.Weekday())
	}
	return nil
}

// StartDate returns the parsed anchor. Call after Validate.
func (c SemesterConfig) StartDate() time.Time {
	d, _ := time.Parse(semesterLayout, c.Start)
	return d
}

// OutputConfig lists the payload destinations.
type OutputConfig struct {
	Paths []string `json:"paths"`
	// Indent is the number of spaces per level; 0 writes compact JSON.
	Indent *int `json:"indent"`
	// Schema checks the payload against the JSON schema before writing.
	Schema *bool `json:"validate"`
}

// DefaultOutputPaths mirrors the legacy text export and the app bundle.
var DefaultOutputPaths = []string{"schedule_data.txt", "src/data.json"}

func (c *OutputConfig) SetDefaults() {
	if len(c.Paths) == 0 {
		c.Paths = append([]string(nil), DefaultOutputPaths...)
	}
	if c.Indent == nil {
		n := 2
		c.Indent = &n
	}
	if c.Schema == nil {
		v := true
		c.Schema = &v
	}
}

func (c OutputConfig) Validate() error {
	for _, p := range c.Paths {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("empty output path")
		}
	}
	if c.Indent != nil && *c.Indent < 0 {
		return fmt.Errorf("indent must be >= 0")
	}
	return nil
}

// IndentWidth returns the configured indent, defaulting to 2.
func (c OutputConfig) IndentWidth() int {
	if c.Indent == nil {
		return 2
	}
	return *c.Indent
}

// ValidateSchema reports whether schema validation is enabled.
func (c OutputConfig) ValidateSchema() bool {
	return c.Schema == nil || *c.Schema
}

// AggregationConfig controls group hierarchy propagation.
type AggregationConfig struct {
	// Propagation is "first" or "all".
	Propagation string `json:"propagation"`
}

func (c *AggregationConfig) SetDefaults() {
	if c.Propagation == "" {
		c.Propagation = string(convert.PropagateFirst)
	}
}

func (c AggregationConfig) Validate() error {
	_, err := convert.ParsePropagation(c.Propagation)
	return err
}

// Mode returns the parsed propagation mode. Call after Validate.
func (c AggregationConfig) Mode() convert.Propagation {
	p, _ := convert.ParsePropagation(c.Propagation)
	return p
}

// ServerConfig configures the read-only HTTP API.
type ServerConfig struct {
	Address string `json:"address"`
	// Token, when set, is required as a bearer token on /api routes.
	Token string `json:"token"`
}

func (c *ServerConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
}

// LogConfig selects the global log level and output format.
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

func (c *LogConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "json"
	}
}

func (c LogConfig) Validate() error {
	switch strings.ToLower(c.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown level %s", c.Level)
	}
	switch c.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown format %s", c.Format)
	}
	return nil
}
