// Package planner ranks conflict-free timetables for a set of subjects.
//
// Each subject contributes exactly one group; a combination is rejected when
// two of its sessions fall on the same weekday, share a clock hour and share
// a teaching week.
package planner
