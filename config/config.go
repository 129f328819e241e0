package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/timetable/core/history"
	"github.com/kilianp07/timetable/core/metrics"
	"github.com/kilianp07/timetable/infra/mqtt"
	"github.com/kilianp07/timetable/infra/source"
)

// EnvPrefix marks environment variables that override file settings.
const EnvPrefix = "K_"

// Config is the full application configuration.
type Config struct {
	Semester    SemesterConfig    `json:"semester"`
	Source      source.Config     `json:"source"`
	Output      OutputConfig      `json:"output"`
	Aggregation AggregationConfig `json:"aggregation"`
	History     history.Config    `json:"history"`
	Metrics     metrics.Config    `json:"metrics"`
	MQTT        mqtt.Config       `json:"mqtt"`
	Server      ServerConfig      `json:"server"`
	Sentry      SentryConfig      `json:"sentry"`
	Log         LogConfig         `json:"log"`
}

// Load reads the config file at path, applies environment overrides and
// validates the result. An empty path skips the file provider.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// A .env file only seeds the environment; it never overrides it.
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault behaves like Load but tolerates a missing file.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			path = ""
		}
	}
	return Load(path)
}

func parserFor(path string) (koanf.Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
}

// SetDefaults applies defaults to every section.
func (c *Config) SetDefaults() {
	c.Semester.SetDefaults()
	c.Source.SetDefaults()
	c.Output.SetDefaults()
	c.Aggregation.SetDefaults()
	c.History.SetDefaults()
	c.Server.SetDefaults()
	c.Log.SetDefaults()
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = "timetable"
	}
	if c.MQTT.Topic == "" {
		c.MQTT.Topic = "timetable/runs"
	}
}

// Validate checks every section and reports the first invalid one.
func (c Config) Validate() error {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"semester", c.Semester.Validate},
		{"source", c.Source.Validate},
		{"output", c.Output.Validate},
		{"aggregation", c.Aggregation.Validate},
		{"history", c.History.Validate},
		{"sentry", c.Sentry.Validate},
		{"log", c.Log.Validate},
	}
	for _, ch := range checks {
		if err := ch.fn(); err != nil {
			return fmt.Errorf("%s: %w", ch.name, err)
		}
	}
	return nil
}
