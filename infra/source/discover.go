package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

var (
	// ErrSourceMissing is returned when the configured file or directory does not exist.
	ErrSourceMissing = errors.New("source not found")
	// ErrNoSourceFiles is returned when the source directory holds no CSV file.
	ErrNoSourceFiles = errors.New("no csv files in source directory")
)

// Config selects the timetable exports to read.
type Config struct {
	// Dir is scanned for *.csv files.
	Dir string `json:"dir"`
	// File is a single export; when set it takes precedence over Dir.
	File string `json:"file"`
	// Exclude lists gitignore-style patterns matched against file names in Dir.
	Exclude []string `json:"exclude"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Dir == "" && c.File == "" {
		c.Dir = "data"
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Dir == "" && c.File == "" {
		return fmt.Errorf("source dir or file is required")
	}
	return nil
}

// Discover lists the CSV files to convert in directory listing order.
func Discover(cfg Config) ([]string, error) {
	if cfg.File != "" {
		st, err := os.Stat(cfg.File)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrSourceMissing, cfg.File)
			}
			return nil, err
		}
		if st.IsDir() {
			return nil, fmt.Errorf("source file %s is a directory", cfg.File)
		}
		return []string{cfg.File}, nil
	}

	entries, err := os.ReadDir(cfg.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSourceMissing, cfg.Dir)
		}
		return nil, err
	}
	ignore := gitignore.CompileIgnoreLines(cfg.Exclude...)
	var files []string
	for _, e := range entries {
		if e.IsDir() || !IsCSV(e.Name()) {
			continue
		}
		if ignore.MatchesPath(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(cfg.Dir, e.Name()))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSourceFiles, cfg.Dir)
	}
	return files, nil
}

// IsCSV reports whether name has a .csv extension.
func IsCSV(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv")
}
