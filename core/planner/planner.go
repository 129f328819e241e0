package planner

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat/combin"

	"github.com/kilianp07/timetable/core/model"
)

// MaxCombinations bounds the cartesian product explored by Plan.
const MaxCombinations = 1 << 20

var (
	ErrUnknownSubject      = errors.New("unknown subject")
	ErrTooManyCombinations = errors.New("too many group combinations")
)

// Schedule is one ranked combination.
type Schedule struct {
	Score int `json:"score"`
	// Groups maps each requested subject to its chosen group.
	Groups   map[string]string `json:"groups"`
	Sessions []*model.Session  `json:"sessions"`
}

type slot struct {
	session *model.Session
	hours   []int
}

type option struct {
	group string
	slots []slot
}

// Planner indexes a converted timetable by subject and group.
type Planner struct {
	options map[string][]option
}

// New indexes sessions. Group options per subject are ordered by name.
func New(sessions []*model.Session) *Planner {
	byGroup := make(map[string]map[string][]slot)
	for _, s := range sessions {
		if byGroup[s.Subject] == nil {
			byGroup[s.Subject] = make(map[string][]slot)
		}
		byGroup[s.Subject][s.Group] = append(byGroup[s.Subject][s.Group], slot{session: s, hours: hoursOf(s)})
	}
	p := &Planner{options: make(map[string][]option, len(byGroup))}
	for subject, groups := range byGroup {
		names := make([]string, 0, len(groups))
		for g := range groups {
			names = append(names, g)
		}
		sort.Strings(names)
		for _, g := range names {
			p.options[subject] = append(p.options[subject], option{group: g, slots: groups[g]})
		}
	}
	return p
}

// Subjects returns the sorted subject codes.
func (p *Planner) Subjects() []string {
	out := make([]string, 0, len(p.options))
	for s := range p.options {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Groups returns the sorted group names of subject, or nil when unknown.
func (p *Planner) Groups(subject string) []string {
	opts := p.options[subject]
	if len(opts) == 0 {
		return nil
	}
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.group
	}
	return out
}

// Plan enumerates one group per requested subject, drops colliding
// combinations unless overlap is allowed, and ranks the rest by score.
func (p *Planner) Plan(req Request) ([]Schedule, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	lens := make([]int, len(req.Subjects))
	total := 1
	for i, s := range req.Subjects {
		n := len(p.options[s])
		if n == 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSubject, s)
		}
		lens[i] = n
		if total > MaxCombinations/n {
			return nil, fmt.Errorf("%w: more than %d", ErrTooManyCombinations, MaxCombinations)
		}
		total *= n
	}

	var schedules []Schedule
	gen := combin.NewCartesianGenerator(lens)
	pick := make([]int, len(lens))
	for gen.Next() {
		pick = gen.Product(pick)
		var slots []slot
		groups := make(map[string]string, len(pick))
		for i, idx := range pick {
			o := p.options[req.Subjects[i]][idx]
			groups[req.Subjects[i]] = o.group
			slots = append(slots, o.slots...)
		}
		if !req.AllowOverlap && hasCollision(slots) {
			continue
		}
		sched := Schedule{Score: score(slots, req.Preference), Groups: groups}
		for _, s := range slots {
			sched.Sessions = append(sched.Sessions, s.session)
		}
		schedules = append(schedules, sched)
	}
	sort.SliceStable(schedules, func(i, j int) bool { return schedules[i].Score > schedules[j].Score })
	if req.Limit > 0 && len(schedules) > req.Limit {
		schedules = schedules[:req.Limit]
	}
	return schedules, nil
}

func hasCollision(slots []slot) bool {
	for i := 0; i < len(slots); i++ {
		for j := i + 1; j < len(slots); j++ {
			if collide(slots[i], slots[j]) {
				return true
			}
		}
	}
	return false
}

func collide(a, b slot) bool {
	if a.session.Weekday != b.session.Weekday {
		return false
	}
	return intersects(a.hours, b.hours) && intersects(a.session.Weeks, b.session.Weeks)
}

func intersects(a, b []int) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

func score(slots []slot, pref Preference) int {
	total := 0
	for _, s := range slots {
		for _, h := range s.hours {
			switch {
			case pref == PreferMorning && h < 14:
				total += 22 - h
			case pref == PreferAfternoon && h >= 14:
				total += h
			}
		}
	}
	return total
}

// hoursOf lists the clock hours a session occupies, starting at its start hour.
func hoursOf(s *model.Session) []int {
	h, err := strconv.Atoi(strings.SplitN(s.Start, ":", 2)[0])
	if err != nil || s.Duration <= 0 {
		return nil
	}
	hours := make([]int, s.Duration)
	for i := range hours {
		hours[i] = h + i
	}
	return hours
}
