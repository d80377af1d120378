package query

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// ToRecord converts v to its JSON object form.
func ToRecord(v any) (Record, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("not a JSON object: %w", err)
	}
	return rec, nil
}

// Decode fills v from rec through JSON.
func Decode(rec Record, v any) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// Match reports whether rec satisfies every filter. Values are compared
// in their JSON form, so 5 matches 5.0 and a string matches a string.
func Match(rec Record, filters []Filter) bool {
	for _, f := range filters {
		got, ok := rec[f.Column]
		if !ok {
			return false
		}
		if !reflect.DeepEqual(normalize(got), normalize(f.Value)) {
			return false
		}
	}
	return true
}

// Project keeps only columns of rec. Empty columns returns rec unchanged.
func Project(rec Record, columns []string) Record {
	if len(columns) == 0 {
		return rec
	}
	out := make(Record, len(columns))
	for _, c := range columns {
		if v, ok := rec[c]; ok {
			out[c] = v
		}
	}
	return out
}

func normalize(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return v
	}
	return out
}
