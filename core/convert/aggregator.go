package convert

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kilianp07/timetable/core/model"
)

// Propagation selects how many children a parent group feeds.
type Propagation string

const (
	// PropagateFirst clones a parent's sessions into the first matching child
	// only, in length order. This reproduces the published schedules.
	PropagateFirst Propagation = "first"
	// PropagateAll clones a parent's sessions into every matching child.
	PropagateAll Propagation = "all"
)

// ParsePropagation validates a configured propagation mode.
func ParsePropagation(s string) (Propagation, error) {
	switch p := Propagation(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PropagateFirst, nil
	case PropagateFirst, PropagateAll:
		return p, nil
	default:
		return "", fmt.Errorf("unknown propagation mode %q", s)
	}
}

// Hierarchy lists, per subject, each parent group and the children it fed.
type Hierarchy map[string]map[string][]string

// Parents returns the number of parent groups across all subjects.
func (h Hierarchy) Parents() int {
	n := 0
	for _, parents := range h {
		n += len(parents)
	}
	return n
}

// Aggregator propagates parent group sessions into child groups.
type Aggregator struct {
	Mode Propagation
}

type subjectGroups struct {
	names    []string
	sessions map[string][]*model.Session
}

// Aggregate returns the sessions to publish: every session of a group that is
// not a parent, plus relabelled clones of parent sessions. Parent groups are
// never returned on their own.
func (a Aggregator) Aggregate(sessions []*model.Session) ([]*model.Session, Hierarchy) {
	var subjects []string
	bySubject := make(map[string]*subjectGroups)
	for _, s := range sessions {
		sg, ok := bySubject[s.Subject]
		if !ok {
			sg = &subjectGroups{sessions: make(map[string][]*model.Session)}
			bySubject[s.Subject] = sg
			subjects = append(subjects, s.Subject)
		}
		if _, ok := sg.sessions[s.Group]; !ok {
			sg.names = append(sg.names, s.Group)
		}
		sg.sessions[s.Group] = append(sg.sessions[s.Group], s)
	}

	hierarchy := make(Hierarchy)
	var out []*model.Session
	for _, subject := range subjects {
		sg := bySubject[subject]
		parents := a.propagate(sg)
		if len(parents) > 0 {
			hierarchy[subject] = parents
		}
		for _, g := range sg.names {
			if _, isParent := parents[g]; isParent {
				continue
			}
			out = append(out, sg.sessions[g]...)
		}
	}
	return out, hierarchy
}

// propagate walks groups shortest name first and copies a group's current
// sessions into each later group it prefixes. Children are processed after
// their parents, so sessions flow down chains like 2 -> 2A -> 2A1.
func (a Aggregator) propagate(sg *subjectGroups) map[string][]string {
	names := append([]string(nil), sg.names...)
	sort.SliceStable(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) < len(names[j])
		}
		return names[i] < names[j]
	})

	parents := make(map[string][]string)
	for i, g1 := range names {
		for _, g2 := range names[i+1:] {
			if !strings.HasPrefix(g2, g1) {
				continue
			}
			parents[g1] = append(parents[g1], g2)
			for _, s := range sg.sessions[g1] {
				sg.sessions[g2] = mergeInto(sg.sessions[g2], s.CloneInto(g2))
			}
			if a.Mode != PropagateAll {
				break
			}
		}
	}
	return parents
}

// mergeInto appends clone to list unless a session with the same key is
// already there, in which case the weeks are unioned.
func mergeInto(list []*model.Session, clone *model.Session) []*model.Session {
	key := clone.Key()
	for _, s := range list {
		if s.Key() != key {
			continue
		}
		for _, w := range clone.Weeks {
			s.AddWeek(w)
		}
		s.SortWeeks()
		return list
	}
	return append(list, clone)
}
