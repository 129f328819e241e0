package model

// RawRecord is one row of a timetable export. Only the columns the converter
// reads are bound; File and Line locate the row for error reporting.
type RawRecord struct {
	Subject   string `csv:"Subject"`
	StartDate string `csv:"Start Date"`
	StartTime string `csv:"Start Time"`
	EndTime   string `csv:"End Time"`

	File string `csv:"-"`
	Line int    `csv:"-"`
}
