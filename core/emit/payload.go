package emit

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/kilianp07/timetable/core/model"
)

// Payload is the published schedule document.
type Payload struct {
	Count   int              `json:"count"`
	Results []*model.Session `json:"results"`
}

// NewPayload wraps sessions. Count always equals len(Results).
func NewPayload(sessions []*model.Session) Payload {
	if sessions == nil {
		sessions = []*model.Session{}
	}
	return Payload{Count: len(sessions), Results: sessions}
}

// Encode renders p as JSON. indent is the number of spaces per level; zero
// produces compact output. The output ends with a newline.
func Encode(p Payload, indent int) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", indent))
	}
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses a published schedule document.
func Decode(b []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(b, &p); err != nil {
		return Payload{}, err
	}
	return p, nil
}
