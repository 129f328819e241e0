// Package export writes ranked timetables for spreadsheets and scripts.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/kilianp07/timetable/core/planner"
)

// Row is one session of a ranked schedule in CSV form.
type Row struct {
	Rank     int    `csv:"rank"`
	Score    int    `csv:"score"`
	Subject  string `csv:"subject"`
	Group    string `csv:"group"`
	Type     string `csv:"type"`
	Weekday  int    `csv:"weekday"`
	Start    string `csv:"start"`
	Duration int    `csv:"duration"`
	Weeks    string `csv:"weeks"`
}

// WriteJSON writes the schedules to w as an indented JSON array.
func WriteJSON(w io.Writer, schedules []planner.Schedule) error {
	if schedules == nil {
		schedules = []planner.Schedule{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(schedules)
}

// Rows flattens schedules into one row per session. Rank starts at 1.
func Rows(schedules []planner.Schedule) []Row {
	var rows []Row
	for i, s := range schedules {
		for _, sess := range s.Sessions {
			weeks := make([]string, len(sess.Weeks))
			for j, wk := range sess.Weeks {
				weeks[j] = fmt.Sprint(wk)
			}
			rows = append(rows, Row{
				Rank:     i + 1,
				Score:    s.Score,
				Subject:  sess.Subject,
				Group:    sess.Group,
				Type:     sess.Type.String(),
				Weekday:  sess.Weekday,
				Start:    sess.Start,
				Duration: sess.Duration,
				Weeks:    strings.Join(weeks, " "),
			})
		}
	}
	return rows
}

// WriteCSV writes one line per session with a header row.
func WriteCSV(w io.Writer, schedules []planner.Schedule) error {
	rows := Rows(schedules)
	if len(rows) == 0 {
		_, err := io.WriteString(w, "rank,score,subject,group,type,weekday,start,duration,weeks\n")
		return err
	}
	return gocsv.Marshal(rows, w)
}
