package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/kilianp07/timetable/core/model"
)

// RequiredColumns are the export columns the converter reads.
var RequiredColumns = []string{"Subject", "Start Date", "Start Time", "End Time"}

// ReadFile decodes every row of a timetable export.
func ReadFile(path string) ([]model.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	recs, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	for i := range recs {
		recs[i].File = path
	}
	return recs, nil
}

// Read decodes rows from r. Headers and values are trimmed and a leading
// byte order mark is dropped. Line is the physical line a row starts on,
// counting the header as line 1. An empty input yields no records.
func Read(r io.Reader) ([]model.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	tr := &trimmingReader{r: cr}
	rows, err := tr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	var recs []model.RawRecord
	if err := gocsv.UnmarshalCSV(&rowsReader{rows: rows}, &recs); err != nil {
		return nil, err
	}
	for i := range recs {
		recs[i].Line = tr.lines[i+1]
	}
	return recs, nil
}

// trimmingReader cleans fields and remembers the line each row starts on.
type trimmingReader struct {
	r     *csv.Reader
	lines []int
}

func (t *trimmingReader) Read() ([]string, error) {
	row, err := t.r.Read()
	if err != nil {
		return nil, err
	}
	line, _ := t.r.FieldPos(0)
	for i, v := range row {
		row[i] = strings.TrimSpace(v)
	}
	if len(t.lines) == 0 {
		if len(row) > 0 {
			row[0] = strings.TrimSpace(strings.TrimPrefix(row[0], "\uFEFF"))
		}
		if err := checkHeader(row); err != nil {
			return nil, err
		}
	}
	t.lines = append(t.lines, line)
	return row, nil
}

func (t *trimmingReader) ReadAll() ([][]string, error) {
	var rows [][]string
	for {
		row, err := t.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

// rowsReader replays rows already read to gocsv.
type rowsReader struct {
	rows [][]string
}

func (r *rowsReader) Read() ([]string, error) {
	if len(r.rows) == 0 {
		return nil, io.EOF
	}
	row := r.rows[0]
	r.rows = r.rows[1:]
	return row, nil
}

func (r *rowsReader) ReadAll() ([][]string, error) {
	rows := r.rows
	r.rows = nil
	return rows, nil
}

func checkHeader(header []string) error {
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[h] = true
	}
	var missing []string
	for _, c := range RequiredColumns {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}
