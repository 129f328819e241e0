package convert

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/kilianp07/timetable/core/model"
)

// HolidaySentinel is the subject value the export uses for non-teaching days.
const HolidaySentinel = "NO LECTIU"

const (
	dateLayout  = "2/1/2006"
	hoursPerDay = 24
)

var (
	subjectPattern = regexp.MustCompile(`^([^(]+)\(([^)]+)\)\s*-\s*(.*)`)
	timeLayouts    = []string{"15:04:05", "15:04"}
)

// Normalizer parses raw rows into descriptors relative to a semester anchor.
type Normalizer struct {
	semesterStart time.Time
}

// NewNormalizer returns a Normalizer whose week 1 starts on semesterStart.
func NewNormalizer(semesterStart time.Time) *Normalizer {
	y, m, d := semesterStart.Date()
	return &Normalizer{semesterStart: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// SemesterStart returns the anchor date.
func (n *Normalizer) SemesterStart() time.Time { return n.semesterStart }

// Normalize converts rec into a descriptor. A non-empty SkipReason means the
// row carries no schedulable class. Unparseable dates and times are errors
// wrapping ErrMalformedDate or ErrMalformedTime. An end time earlier than the
// start time also yields ErrMalformedTime, since no duration can be derived.
func (n *Normalizer) Normalize(rec model.RawRecord) (model.Descriptor, SkipReason, error) {
	subject := strings.TrimSpace(rec.Subject)
	if subject == "" {
		return model.Descriptor{}, SkipEmptySubject, nil
	}
	if subject == HolidaySentinel {
		return model.Descriptor{}, SkipHoliday, nil
	}
	code, typeCode, group, ok := parseSubject(subject)
	if !ok {
		return model.Descriptor{}, SkipUnmatched, nil
	}

	date, err := time.Parse(dateLayout, strings.TrimSpace(rec.StartDate))
	if err != nil {
		return model.Descriptor{}, SkipNone, fmt.Errorf("%w: start date %q", ErrMalformedDate, rec.StartDate)
	}
	weekday := isoWeekday(date)
	if weekday > 5 {
		return model.Descriptor{}, SkipWeekend, nil
	}

	start, err := parseClock(rec.StartTime)
	if err != nil {
		return model.Descriptor{}, SkipNone, fmt.Errorf("%w: start time %q", ErrMalformedTime, rec.StartTime)
	}
	if strings.TrimSpace(rec.EndTime) == "" {
		return model.Descriptor{}, SkipMissingEndTime, nil
	}
	end, err := parseClock(rec.EndTime)
	if err != nil {
		return model.Descriptor{}, SkipNone, fmt.Errorf("%w: end time %q", ErrMalformedTime, rec.EndTime)
	}
	if end.Before(start) {
		return model.Descriptor{}, SkipNone, fmt.Errorf("%w: end time %q before start time %q", ErrMalformedTime, rec.EndTime, rec.StartTime)
	}

	return model.Descriptor{
		Subject:  code,
		Type:     model.ClassTypeFromCode(typeCode),
		Group:    group,
		Weekday:  weekday,
		Start:    fmt.Sprintf("%02d:%02d", start.Hour(), start.Minute()),
		Duration: int(end.Sub(start).Seconds()) / 3600,
		Week:     n.WeekNumber(date),
	}, SkipNone, nil
}

// WeekNumber returns the 1-based semester week date falls in. Dates before
// the anchor yield zero or negative weeks.
func (n *Normalizer) WeekNumber(date time.Time) int {
	y, m, d := date.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	days := int(day.Sub(n.semesterStart).Hours()) / hoursPerDay
	return floorDiv(days, 7) + 1
}

func parseSubject(s string) (code, typeCode, group string, ok bool) {
	m := subjectPattern.FindStringSubmatch(s)
	if m == nil {
		return "", "", "", false
	}
	code = strings.TrimSpace(m[1])
	if code == "" {
		return "", "", "", false
	}
	return code, strings.TrimSpace(m[2]), strings.TrimSpace(m[3]), true
}

func parseClock(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var err error
	for _, layout := range timeLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// isoWeekday maps Monday..Sunday to 1..7.
func isoWeekday(t time.Time) int {
	if t.Weekday() == time.Sunday {
		return 7
	}
	return int(t.Weekday())
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
