package emit

import (
	"time"

	"github.com/kilianp07/timetable/core/model"
)

// Snapshot is the latest payload produced by a run, kept for readers that
// serve it without touching the destinations.
type Snapshot struct {
	RunID    string
	Time     time.Time
	Payload  []byte
	Sessions []*model.Session
}
