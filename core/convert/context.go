package convert

import (
	"github.com/kilianp07/timetable/core/logger"
	"github.com/kilianp07/timetable/core/model"
)

// Stats summarises one conversion.
type Stats struct {
	Rows           int                `json:"rows"`
	Skipped        map[SkipReason]int `json:"skipped"`
	Descriptors    int                `json:"descriptors"`
	UniqueSessions int                `json:"unique_sessions"`
	ParentGroups   int                `json:"parent_groups"`
	Emitted        int                `json:"emitted"`
}

// SkippedTotal returns the number of skipped rows.
func (s Stats) SkippedTotal() int {
	n := 0
	for _, v := range s.Skipped {
		n += v
	}
	return n
}

// BuildContext owns the state of a single conversion run. It is created by
// Converter.NewContext and must not be shared between runs.
type BuildContext struct {
	normalizer *Normalizer
	dedup      *Deduplicator
	aggregator Aggregator
	log        logger.Logger
	stats      Stats
}

// Add normalizes rec and folds it into the run. Skipped rows are counted;
// malformed dates and times abort the run with a *RowError.
func (c *BuildContext) Add(rec model.RawRecord) error {
	c.stats.Rows++
	desc, reason, err := c.normalizer.Normalize(rec)
	if err != nil {
		return &RowError{File: rec.File, Line: rec.Line, Err: err}
	}
	if reason != SkipNone {
		c.stats.Skipped[reason]++
		c.log.Debugw("row skipped", map[string]any{"file": rec.File, "line": rec.Line, "reason": string(reason)})
		return nil
	}
	c.stats.Descriptors++
	c.dedup.Add(desc)
	return nil
}

// Result finishes the run and returns the sessions to publish in canonical
// order together with the inferred group hierarchy.
func (c *BuildContext) Result() ([]*model.Session, Hierarchy) {
	sessions := c.dedup.Sessions()
	c.stats.UniqueSessions = len(sessions)
	out, hierarchy := c.aggregator.Aggregate(sessions)
	model.SortSessions(out)
	c.stats.ParentGroups = hierarchy.Parents()
	c.stats.Emitted = len(out)
	for subject, parents := range hierarchy {
		for parent, children := range parents {
			c.log.Debugw("parent group propagated", map[string]any{"subject": subject, "group": parent, "children": children})
		}
	}
	return out, hierarchy
}

// Stats returns the counters collected so far.
func (c *BuildContext) Stats() Stats { return c.stats }
