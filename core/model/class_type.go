package model

import "fmt"

// ClassType defines the kind of class meeting a session represents.
type ClassType int

const (
	Practical ClassType = iota
	Theory
	Laboratory
)

// ClassTypeFromCode maps the type code found in a timetable subject label
// to a ClassType. G is a theory (whole group) class, L a laboratory, and any
// other code falls back to Practical.
func ClassTypeFromCode(code string) ClassType {
	switch code {
	case "G":
		return Theory
	case "L":
		return Laboratory
	default:
		return Practical
	}
}

// String returns the single letter code used in the published schedule.
func (t ClassType) String() string {
	switch t {
	case Theory:
		return "T"
	case Laboratory:
		return "L"
	default:
		return "P"
	}
}

// MarshalText encodes the class type as its published letter.
func (t ClassType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts the published letters. G is accepted as an alias of
// T since older schedule files carried the raw export code.
func (t *ClassType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "T", "G":
		*t = Theory
	case "L":
		*t = Laboratory
	case "P":
		*t = Practical
	default:
		return fmt.Errorf("unknown class type %q", string(b))
	}
	return nil
}
