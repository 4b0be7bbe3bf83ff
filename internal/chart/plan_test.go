package chart

import (
	"testing"

	"github.com/insightpilot/insightpilot/internal/table"
)

func catNumRows() table.Rows {
	return table.Rows{
		Columns: []string{"C", "N"},
		Records: []map[string]any{
			{"C": "A", "N": 10.0},
			{"C": "A", "N": 20.0},
			{"C": "B", "N": 5.0},
		},
	}
}

func TestFallbackCategoricalNumeric(t *testing.T) {
	plan := Fallback(catNumRows())
	if plan.ChartType != TypeBar {
		t.Errorf("chart type = %q, want bar", plan.ChartType)
	}
	if plan.XField != "C" || plan.YField != "N" {
		t.Errorf("axes = (%q, %q), want (C, N)", plan.XField, plan.YField)
	}
	if plan.Aggregation != "sum" || plan.TopN != 10 {
		t.Errorf("agg=%q topN=%d, want sum/10", plan.Aggregation, plan.TopN)
	}
}

func TestFallbackTwoNumerics(t *testing.T) {
	rows := table.Rows{
		Columns: []string{"x", "y"},
		Records: []map[string]any{{"x": 1.0, "y": 2.0}},
	}
	plan := Fallback(rows)
	if plan.ChartType != TypeLine {
		t.Errorf("chart type = %q, want line", plan.ChartType)
	}
	if plan.XField != "x" || plan.YField != "y" {
		t.Errorf("axes = (%q, %q), want (x, y)", plan.XField, plan.YField)
	}
	if plan.TopN != 50 {
		t.Errorf("topN = %d, want 50", plan.TopN)
	}
}

func TestFallbackTable(t *testing.T) {
	rows := table.Rows{
		Columns: []string{"name"},
		Records: []map[string]any{{"name": "only text"}},
	}
	plan := Fallback(rows)
	if plan.ChartType != TypeTable {
		t.Errorf("chart type = %q, want table", plan.ChartType)
	}
	if plan.TopN != 0 {
		t.Errorf("topN = %d, want 0", plan.TopN)
	}
}

func TestValidateRejectsUnknownType(t *testing.T) {
	plan := Plan{ChartType: "sparkline", XField: "C"}
	if err := Validate(plan, catNumRows()); err == nil {
		t.Error("expected error for unknown chart type")
	}
}

func TestValidateRejectsAbsentFields(t *testing.T) {
	plan := Plan{ChartType: TypeBar, XField: "missing"}
	if err := Validate(plan, catNumRows()); err == nil {
		t.Error("expected error for absent x_field")
	}
	plan = Plan{ChartType: TypeBar, XField: "C", YField: "missing"}
	if err := Validate(plan, catNumRows()); err == nil {
		t.Error("expected error for absent y_field")
	}
}
