// Package scenarios runs YAML described conversion scenarios against the
// converter and checks the published sessions.
package scenarios

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/timetable/core/convert"
	"github.com/kilianp07/timetable/core/model"
)

// RowDef is one CSV row of a scenario. File names the export it came from.
type RowDef struct {
	File    string `yaml:"file,omitempty"`
	Subject string `yaml:"subject"`
	Date    string `yaml:"date"`
	Start   string `yaml:"start"`
	End     string `yaml:"end"`
}

func (r RowDef) ToModel(line int) model.RawRecord {
	file := r.File
	if file == "" {
		file = "scenario.csv"
	}
	return model.RawRecord{Subject: r.Subject, StartDate: r.Date, StartTime: r.Start, EndTime: r.End, File: file, Line: line}
}

// SessionDef is an expected published session.
type SessionDef struct {
	Subject  string `yaml:"subject"`
	Group    string `yaml:"group"`
	Weekday  int    `yaml:"weekday"`
	Start    string `yaml:"start"`
	Duration int    `yaml:"duration"`
	Type     string `yaml:"type"`
	Weeks    []int  `yaml:"weeks"`
}

// Expected lists the outcome of a scenario. Error, when set, must be
// contained in the conversion error and no sessions are checked.
type Expected struct {
	Sessions []SessionDef  `yaml:"sessions"`
	Skipped  map[string]int `yaml:"skipped,omitempty"`
	Error    string         `yaml:"error,omitempty"`
}

type Scenario struct {
	Name          string   `yaml:"name"`
	Description   string   `yaml:"description,omitempty"`
	SemesterStart string   `yaml:"semester_start,omitempty"`
	Propagation   string   `yaml:"propagation,omitempty"`
	Rows          []RowDef `yaml:"rows"`
	Expected      Expected `yaml:"expected"`
}

// Options returns the converter options of the scenario.
func (s *Scenario) Options() (convert.Options, error) {
	start := s.SemesterStart
	if start == "" {
		start = "2026-02-16"
	}
	d, err := time.Parse("2006-01-02", start)
	if err != nil {
		return convert.Options{}, fmt.Errorf("semester_start: %w", err)
	}
	mode, err := convert.ParsePropagation(s.Propagation)
	if err != nil {
		return convert.Options{}, err
	}
	return convert.Options{SemesterStart: d, Propagation: mode}, nil
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("%s: scenario name is required", path)
	}
	return &sc, nil
}
