// Package chart turns a query result set and question into a
// validated chart recommendation and its aggregated data series.
package chart

import (
	"fmt"
	"strings"

	"github.com/insightpilot/insightpilot/internal/table"
)

// Chart types the planner may emit.
const (
	TypeBar     = "bar"
	TypeLine    = "line"
	TypeArea    = "area"
	TypeScatter = "scatter"
	TypePie     = "pie"
	TypeTable   = "table"
)

var allowedTypes = map[string]bool{
	TypeBar:     true,
	TypeLine:    true,
	TypeArea:    true,
	TypeScatter: true,
	TypePie:     true,
	TypeTable:   true,
}

// Plan describes what to visualize. It may only reference fields
// present in the row set it was planned for.
type Plan struct {
	ChartType   string `json:"chart_type"`
	XField      string `json:"x_field"`
	YField      string `json:"y_field,omitempty"`
	Aggregation string `json:"aggregation"`
	TopN        int    `json:"top_n"`
	Explanation string `json:"explanation"`
}

// Validate rejects plans with unknown chart types or field references
// absent from the row set. Refined plans that fail validation are
// discarded in favor of the fallback.
func Validate(p Plan, rows table.Rows) error {
	if !allowedTypes[strings.ToLower(p.ChartType)] {
		return fmt.Errorf("unknown chart type %q", p.ChartType)
	}
	if p.XField != "" && !rows.HasColumn(p.XField) {
		return fmt.Errorf("x_field %q not in result set", p.XField)
	}
	if p.YField != "" && !rows.HasColumn(p.YField) {
		return fmt.Errorf("y_field %q not in result set", p.YField)
	}
	return nil
}

// Fallback is the deterministic chart heuristic, always available:
// categorical+numeric → bar, two numerics → line, else table.
func Fallback(rows table.Rows) Plan {
	numeric := table.NumericColumns(rows)
	categorical := table.CategoricalColumns(rows)

	if len(categorical) > 0 && len(numeric) > 0 {
		return Plan{
			ChartType:   TypeBar,
			XField:      categorical[0],
			YField:      numeric[0],
			Aggregation: "sum",
			TopN:        10,
			Explanation: fmt.Sprintf("Bar chart of %s by %s", numeric[0], categorical[0]),
		}
	}

	if len(numeric) >= 2 {
		return Plan{
			ChartType:   TypeLine,
			XField:      numeric[0],
			YField:      numeric[1],
			Aggregation: "none",
			TopN:        50,
			Explanation: fmt.Sprintf("Line plot of %s vs %s", numeric[1], numeric[0]),
		}
	}

	return Plan{
		ChartType:   TypeTable,
		Aggregation: "none",
		TopN:        0,
		Explanation: "No suitable numeric/categorical combination for chart",
	}
}
