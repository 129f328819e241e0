package emit

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema describes the document consumed by the calendar application.
const Schema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["count", "results"],
  "additionalProperties": false,
  "properties": {
    "count": {"type": "integer", "minimum": 0},
    "results": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["codi_assig", "grup", "dia_setmana", "inici", "durada", "tipus", "setmanes"],
        "additionalProperties": false,
        "properties": {
          "codi_assig": {"type": "string", "minLength": 1},
          "grup": {"type": "string"},
          "dia_setmana": {"type": "integer", "minimum": 1, "maximum": 5},
          "inici": {"type": "string", "pattern": "^[0-2][0-9]:[0-5][0-9]$"},
          "durada": {"type": "integer", "minimum": 0},
          "tipus": {"enum": ["P", "T", "L"]},
          "setmanes": {"type": "array", "items": {"type": "integer"}, "uniqueItems": true}
        }
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(Schema)

// Validate checks an encoded payload against Schema, that count matches the
// number of results and that every week list is ascending.
func Validate(b []byte) error {
	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(b))
	if err != nil {
		return fmt.Errorf("validate payload: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("invalid payload: %s", strings.Join(msgs, "; "))
	}
	var p struct {
		Count   int `json:"count"`
		Results []struct {
			Weeks []int `json:"setmanes"`
		} `json:"results"`
	}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	if p.Count != len(p.Results) {
		return fmt.Errorf("invalid payload: count %d does not match %d results", p.Count, len(p.Results))
	}
	for i, r := range p.Results {
		for j := 1; j < len(r.Weeks); j++ {
			if r.Weeks[j] <= r.Weeks[j-1] {
				return fmt.Errorf("invalid payload: results[%d] weeks not ascending", i)
			}
		}
	}
	return nil
}
