package convert

import "github.com/kilianp07/timetable/core/model"

// Deduplicator folds descriptors into sessions keyed by SessionKey.
type Deduplicator struct {
	sessions map[model.SessionKey]*model.Session
	order    []model.SessionKey
}

// NewDeduplicator returns an empty Deduplicator.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{sessions: make(map[model.SessionKey]*model.Session)}
}

// Add records d. It reports true when d opened a new session.
func (d *Deduplicator) Add(desc model.Descriptor) bool {
	key := desc.Key()
	if s, ok := d.sessions[key]; ok {
		s.AddWeek(desc.Week)
		return false
	}
	d.sessions[key] = model.NewSession(desc)
	d.order = append(d.order, key)
	return true
}

// Len returns the number of unique sessions seen so far.
func (d *Deduplicator) Len() int { return len(d.sessions) }

// Sessions returns the sessions in first-seen order with their weeks sorted.
func (d *Deduplicator) Sessions() []*model.Session {
	out := make([]*model.Session, 0, len(d.order))
	for _, k := range d.order {
		s := d.sessions[k]
		s.SortWeeks()
		out = append(out, s)
	}
	return out
}
