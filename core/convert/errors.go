package convert

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedDate is returned when a start date is present but cannot be parsed.
	ErrMalformedDate = errors.New("malformed date")
	// ErrMalformedTime is returned when a start or end time is present but cannot be parsed.
	ErrMalformedTime = errors.New("malformed time")
)

// RowError locates a hard failure in the source data.
type RowError struct {
	File string
	Line int
	Err  error
}

func (e *RowError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// SkipReason explains why a row produced no session. Skipped rows are not
// errors.
type SkipReason string

const (
	SkipNone           SkipReason = ""
	SkipEmptySubject   SkipReason = "empty_subject"
	SkipHoliday        SkipReason = "holiday"
	SkipUnmatched      SkipReason = "unmatched_subject"
	SkipWeekend        SkipReason = "weekend"
	SkipMissingEndTime SkipReason = "missing_end_time"
)
