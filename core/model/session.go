package model

import "sort"

// Descriptor is a single normalized timetable row. It describes one dated
// class meeting reduced to its weekly recurrence plus the week it occurred in.
type Descriptor struct {
	Subject  string
	Type     ClassType
	Group    string
	Weekday  int    // ISO weekday, 1=Monday..5=Friday
	Start    string // HH:MM
	Duration int    // whole hours
	Week     int
}

// Key returns the recurrence identity of the descriptor.
func (d Descriptor) Key() SessionKey {
	return SessionKey{
		Subject:  d.Subject,
		Group:    d.Group,
		Type:     d.Type,
		Weekday:  d.Weekday,
		Start:    d.Start,
		Duration: d.Duration,
	}
}

// SessionKey identifies a weekly recurring class meeting. Rows sharing a key
// are the same meeting on different calendar weeks.
type SessionKey struct {
	Subject  string
	Group    string
	Type     ClassType
	Weekday  int
	Start    string
	Duration int
}

// Session is a deduplicated weekly class meeting with the weeks it is active.
// Field order is the published key order.
type Session struct {
	Subject  string    `json:"codi_assig"`
	Group    string    `json:"grup"`
	Weekday  int       `json:"dia_setmana"`
	Start    string    `json:"inici"`
	Duration int       `json:"durada"`
	Type     ClassType `json:"tipus"`
	Weeks    []int     `json:"setmanes"`
}

// NewSession creates a session from a descriptor with a single active week.
func NewSession(d Descriptor) *Session {
	return &Session{
		Subject:  d.Subject,
		Group:    d.Group,
		Weekday:  d.Weekday,
		Start:    d.Start,
		Duration: d.Duration,
		Type:     d.Type,
		Weeks:    []int{d.Week},
	}
}

// Key returns the recurrence identity of the session.
func (s *Session) Key() SessionKey {
	return SessionKey{
		Subject:  s.Subject,
		Group:    s.Group,
		Type:     s.Type,
		Weekday:  s.Weekday,
		Start:    s.Start,
		Duration: s.Duration,
	}
}

// AddWeek records week as active. It reports false when the week was
// already present.
func (s *Session) AddWeek(week int) bool {
	for _, w := range s.Weeks {
		if w == week {
			return false
		}
	}
	s.Weeks = append(s.Weeks, week)
	return true
}

// SortWeeks orders the active weeks ascending.
func (s *Session) SortWeeks() { sort.Ints(s.Weeks) }

// CloneInto returns a copy of the session relabelled to group. The week list
// is copied so the clone never aliases the template.
func (s *Session) CloneInto(group string) *Session {
	c := *s
	c.Group = group
	c.Weeks = append([]int(nil), s.Weeks...)
	return &c
}

// Less reports whether a sorts before b in the canonical published order:
// subject, group, weekday, start, type letter, duration.
func Less(a, b *Session) bool {
	if a.Subject != b.Subject {
		return a.Subject < b.Subject
	}
	if a.Group != b.Group {
		return a.Group < b.Group
	}
	if a.Weekday != b.Weekday {
		return a.Weekday < b.Weekday
	}
	if a.Start != b.Start {
		return a.Start < b.Start
	}
	if a.Type != b.Type {
		return a.Type.String() < b.Type.String()
	}
	return a.Duration < b.Duration
}

// SortSessions sorts sessions in canonical order.
func SortSessions(sessions []*Session) {
	sort.SliceStable(sessions, func(i, j int) bool { return Less(sessions[i], sessions[j]) })
}
