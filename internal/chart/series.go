package chart

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/insightpilot/insightpilot/internal/table"
)

// SeriesPoint is one chart data point. For scatter charts Label holds
// the formatted x value.
type SeriesPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Result is the terminal outcome of chart planning. Skipped means no
// visualization could be built, which is a valid result, not an error.
type Result struct {
	Plan     Plan          `json:"plan"`
	Points   []SeriesPoint `json:"points,omitempty"`
	Summary  string        `json:"summary"`
	Artifact string        `json:"artifact,omitempty"`
	Skipped  bool          `json:"skipped,omitempty"`
}

// BuildSeries evaluates the plan against the row set and produces the
// chart's data series plus a symbolic artifact reference. Byte
// rendering is delegated externally.
func BuildSeries(rows table.Rows, plan Plan) Result {
	res := Result{Plan: plan, Summary: plan.Explanation}

	if plan.ChartType == TypeTable || rows.Empty() {
		res.Skipped = true
		if res.Summary == "" {
			res.Summary = "No data to visualize."
		}
		return res
	}

	if plan.ChartType == TypeScatter {
		return scatterSeries(rows, plan, res)
	}

	if plan.XField == "" || !rows.HasColumn(plan.XField) {
		res.Skipped = true
		res.Summary = "No usable x-axis field for chart"
		return res
	}

	points := aggregate(rows, plan)
	if len(points) == 0 {
		res.Skipped = true
		if res.Summary == "" {
			res.Summary = "No aggregatable values for chart"
		}
		return res
	}

	// Grouped series: sort descending by value, then truncate.
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Value > points[j].Value
	})
	if plan.TopN > 0 && len(points) > plan.TopN {
		points = points[:plan.TopN]
	}

	res.Points = points
	res.Artifact = fmt.Sprintf("chart_%s.json", uuid.NewString())
	return res
}

// scatterSeries requires both axes numeric; rows with a missing value
// on either axis are dropped, then truncated to top-N without sorting.
func scatterSeries(rows table.Rows, plan Plan, res Result) Result {
	if plan.XField == "" || plan.YField == "" ||
		!rows.HasColumn(plan.XField) || !rows.HasColumn(plan.YField) ||
		!table.IsNumericColumn(rows, plan.XField) || !table.IsNumericColumn(rows, plan.YField) {
		res.Skipped = true
		res.Summary = "Scatter chart requires two numeric axes"
		return res
	}

	var points []SeriesPoint
	for _, rec := range rows.Records {
		x, okX := table.Float(rec[plan.XField])
		y, okY := table.Float(rec[plan.YField])
		if !okX || !okY {
			continue
		}
		points = append(points, SeriesPoint{Label: table.FormatCell(x), Value: y})
	}
	if len(points) == 0 {
		res.Skipped = true
		res.Summary = "No complete point pairs for scatter chart"
		return res
	}

	if plan.TopN > 0 && len(points) > plan.TopN {
		points = points[:plan.TopN]
	}

	res.Points = points
	res.Artifact = fmt.Sprintf("chart_%s.json", uuid.NewString())
	return res
}

// aggregate groups rows by the x-field and reduces the target metric.
// Sum and mean resolve the target to the y-field, or the first numeric
// column when the y-field is unusable; count needs no metric; none
// passes the y-field through when numeric. Unknown verbs default to
// sum. The numeric check happens once at target resolution; individual
// values are not re-checked.
func aggregate(rows table.Rows, plan Plan) []SeriesPoint {
	switch normalizeAgg(plan.Aggregation) {
	case "count":
		return groupCount(rows, plan.XField)
	case "mean":
		return groupReduce(rows, plan.XField, resolveTarget(rows, plan.YField), true)
	case "none":
		if plan.YField != "" && rows.HasColumn(plan.YField) && table.IsNumericColumn(rows, plan.YField) {
			return passthrough(rows, plan.XField, plan.YField)
		}
		return nil
	default: // sum
		return groupReduce(rows, plan.XField, resolveTarget(rows, plan.YField), false)
	}
}

func normalizeAgg(agg string) string {
	switch agg {
	case "mean", "avg", "average":
		return "mean"
	case "count":
		return "count"
	case "none":
		return "none"
	default:
		return "sum"
	}
}

func resolveTarget(rows table.Rows, yField string) string {
	if yField != "" && rows.HasColumn(yField) && table.IsNumericColumn(rows, yField) {
		return yField
	}
	numeric := table.NumericColumns(rows)
	if len(numeric) > 0 {
		return numeric[0]
	}
	return ""
}

func groupReduce(rows table.Rows, xField, target string, mean bool) []SeriesPoint {
	if target == "" {
		return nil
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	var order []string
	for _, rec := range rows.Records {
		key := table.FormatCell(rec[xField])
		v, ok := table.Float(rec[target])
		if !ok {
			continue
		}
		if _, seen := sums[key]; !seen {
			order = append(order, key)
		}
		sums[key] += v
		counts[key]++
	}

	points := make([]SeriesPoint, 0, len(order))
	for _, key := range order {
		v := sums[key]
		if mean {
			v /= float64(counts[key])
		}
		points = append(points, SeriesPoint{Label: key, Value: v})
	}
	return points
}

func groupCount(rows table.Rows, xField string) []SeriesPoint {
	counts := make(map[string]int)
	var order []string
	for _, rec := range rows.Records {
		key := table.FormatCell(rec[xField])
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}

	points := make([]SeriesPoint, 0, len(order))
	for _, key := range order {
		points = append(points, SeriesPoint{Label: key, Value: float64(counts[key])})
	}
	return points
}

func passthrough(rows table.Rows, xField, yField string) []SeriesPoint {
	var points []SeriesPoint
	for _, rec := range rows.Records {
		v, ok := table.Float(rec[yField])
		if !ok {
			continue
		}
		points = append(points, SeriesPoint{Label: table.FormatCell(rec[xField]), Value: v})
	}
	return points
}
