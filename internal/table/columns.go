package table

// Column kinds as surfaced to the chart planner and prompts.
const (
	KindNumeric  = "numeric"
	KindText     = "text"
	KindDatetime = "datetime"
	KindOther    = "other"
)

// ColumnMeta summarizes one column for chart refinement prompts:
// name, inferred kind, numeric flag, distinct-value count, and up to
// three sample values.
type ColumnMeta struct {
	Name          string   `json:"name"`
	Kind          string   `json:"dtype"`
	Numeric       bool     `json:"numeric"`
	DistinctCount int      `json:"unique_count"`
	SampleValues  []string `json:"sample_values"`
}

// Describe classifies every column and gathers its metadata.
func Describe(r Rows) []ColumnMeta {
	metas := make([]ColumnMeta, 0, len(r.Columns))
	for _, col := range r.Columns {
		metas = append(metas, describeColumn(r, col))
	}
	return metas
}

func describeColumn(r Rows, col string) ColumnMeta {
	meta := ColumnMeta{Name: col, Kind: KindOther}
	seen := make(map[string]bool)

	for _, rec := range r.Records {
		v, ok := rec[col]
		if !ok || v == nil {
			continue
		}
		if meta.Kind == KindOther {
			meta.Kind = kindOf(v)
		}
		s := FormatCell(v)
		if !seen[s] {
			seen[s] = true
			if len(meta.SampleValues) < 3 {
				meta.SampleValues = append(meta.SampleValues, s)
			}
		}
	}

	meta.DistinctCount = len(seen)
	meta.Numeric = meta.Kind == KindNumeric
	return meta
}

func kindOf(v any) string {
	if _, ok := Float(v); ok {
		return KindNumeric
	}
	switch v.(type) {
	case string:
		return KindText
	}
	if _, ok := ParseTime(v); ok {
		return KindDatetime
	}
	return KindOther
}

// NumericColumns returns column names classified numeric, in column order.
func NumericColumns(r Rows) []string {
	return columnsOfKind(r, KindNumeric)
}

// CategoricalColumns returns column names classified text, in column order.
func CategoricalColumns(r Rows) []string {
	return columnsOfKind(r, KindText)
}

func columnsOfKind(r Rows, kind string) []string {
	var out []string
	for _, m := range Describe(r) {
		if m.Kind == kind {
			out = append(out, m.Name)
		}
	}
	return out
}

// IsNumericColumn reports whether the column's first non-null value is numeric.
func IsNumericColumn(r Rows, col string) bool {
	for _, rec := range r.Records {
		v, ok := rec[col]
		if !ok || v == nil {
			continue
		}
		_, numeric := Float(v)
		return numeric
	}
	return false
}
