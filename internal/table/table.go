// Package table models rectangular query results: an ordered list of
// columns and a sequence of column→value records. Chart planning and
// the analytics engine both consume this shape.
package table

import (
	"encoding/json"
	"fmt"
	"time"
)

// Rows is an ordered, rectangular result set.
type Rows struct {
	Columns []string         `json:"columns"`
	Records []map[string]any `json:"records"`
}

// Empty reports whether the result set has no records.
func (r Rows) Empty() bool {
	return len(r.Records) == 0
}

// HasColumn reports whether name is one of the result columns.
func (r Rows) HasColumn(name string) bool {
	for _, c := range r.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Sample returns at most n leading records.
func (r Rows) Sample(n int) []map[string]any {
	if n > len(r.Records) {
		n = len(r.Records)
	}
	return r.Records[:n]
}

// Float coerces a cell value to float64. Booleans count as numeric
// (true=1) to mirror how the executor surfaces them; json.Number
// covers rows that round-tripped through a decoder using UseNumber.
func Float(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"2006-01",
	"Jan 2006",
	"January 2006",
}

// ParseTime coerces a cell value to a timestamp. Strings are tried
// against the common layouts SQLite and CSV sources produce.
func ParseTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, x); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// FormatCell renders a cell value for prompts and samples.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		return x.Format("2006-01-02")
	case string:
		return x
	default:
		return fmt.Sprintf("%v", x)
	}
}
