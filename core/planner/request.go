package planner

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Preference biases the score toward a part of the day.
type Preference string

const (
	PreferMorning   Preference = "morning"
	PreferAfternoon Preference = "afternoon"
	DontCare        Preference = "dontcare"
)

// Request describes which subjects to combine and how to rank the results.
type Request struct {
	Subjects     []string   `json:"subjects" yaml:"subjects"`
	Preference   Preference `json:"preference" yaml:"preference"`
	AllowOverlap bool       `json:"allow_overlap" yaml:"allow_overlap"`
	// Limit caps the number of returned schedules; 0 returns all.
	Limit int `json:"limit" yaml:"limit"`
}

// Validate normalizes the request in place and checks its fields.
func (r *Request) Validate() error {
	seen := make(map[string]bool, len(r.Subjects))
	subjects := make([]string, 0, len(r.Subjects))
	for _, s := range r.Subjects {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		subjects = append(subjects, s)
	}
	r.Subjects = subjects
	if len(r.Subjects) == 0 {
		return fmt.Errorf("at least one subject is required")
	}
	r.Preference = Preference(strings.ToLower(string(r.Preference)))
	switch r.Preference {
	case "":
		r.Preference = DontCare
	case PreferMorning, PreferAfternoon, DontCare:
	default:
		return fmt.Errorf("unknown preference %q", r.Preference)
	}
	if r.Limit < 0 {
		return fmt.Errorf("limit must be >= 0")
	}
	return nil
}

// LoadRequest loads a Request from a JSON or YAML file.
func LoadRequest(path string) (Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return Request{}, err
	}
	defer func() { _ = f.Close() }()
	return DecodeRequest(f, strings.TrimPrefix(filepath.Ext(path), "."))
}

// DecodeRequest reads a Request in the given format from r.
func DecodeRequest(r io.Reader, format string) (Request, error) {
	var req Request
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&req); err != nil {
			return req, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&req); err != nil {
			return req, err
		}
	default:
		return req, fmt.Errorf("unsupported format: %s", format)
	}
	return req, nil
}
