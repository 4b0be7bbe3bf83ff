// Package stats derives a monthly time series from a query result set
// and computes trend, anomaly, forecast, and hypothesis-test analyses
// over it.
package stats

import (
	"sort"
	"strings"
	"time"

	"github.com/insightpilot/insightpilot/internal/table"
)

var dateHints = []string{"date", "time", "month", "year", "period"}
var metricHints = []string{"sale", "amount", "revenue", "profit", "price", "total"}

// maxPoints caps the derived series at the most recent five years of months.
const maxPoints = 60

// Point is one monthly observation: a month-start timestamp and the
// summed metric value for that month.
type Point struct {
	Period time.Time `json:"period"`
	Value  float64   `json:"value"`
}

// Series is a chronologically ordered monthly time series.
type Series []Point

// Values returns the series values in order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// DeriveSeries builds the monthly series feeding all analyses. It
// returns nil when no datetime-like or numeric metric column can be
// identified: insufficient data, not an error.
func DeriveSeries(rows table.Rows) Series {
	if rows.Empty() {
		return nil
	}

	dateCol := detectDatetimeColumn(rows)
	metricCol := detectMetricColumn(rows)
	if dateCol == "" || metricCol == "" {
		return nil
	}

	buckets := make(map[time.Time]float64)
	for _, rec := range rows.Records {
		ts, ok := table.ParseTime(rec[dateCol])
		if !ok {
			continue
		}
		val, ok := table.Float(rec[metricCol])
		if !ok {
			continue
		}
		month := time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, time.UTC)
		buckets[month] += val
	}
	if len(buckets) == 0 {
		return nil
	}

	series := make(Series, 0, len(buckets))
	for month, sum := range buckets {
		series = append(series, Point{Period: month, Value: sum})
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Period.Before(series[j].Period)
	})

	if len(series) > maxPoints {
		series = series[len(series)-maxPoints:]
	}
	return series
}

// detectDatetimeColumn prefers columns already carrying timestamps,
// falling back to name-hinted columns whose values actually parse.
func detectDatetimeColumn(rows table.Rows) string {
	for _, col := range rows.Columns {
		if firstValueIsTime(rows, col) {
			return col
		}
	}
	for _, col := range rows.Columns {
		low := strings.ToLower(col)
		for _, hint := range dateHints {
			if strings.Contains(low, hint) && columnParsesAsTime(rows, col) {
				return col
			}
		}
	}
	return ""
}

func firstValueIsTime(rows table.Rows, col string) bool {
	for _, rec := range rows.Records {
		v := rec[col]
		if v == nil {
			continue
		}
		_, ok := v.(time.Time)
		return ok
	}
	return false
}

func columnParsesAsTime(rows table.Rows, col string) bool {
	for _, rec := range rows.Records {
		v := rec[col]
		if v == nil {
			continue
		}
		_, ok := table.ParseTime(v)
		return ok
	}
	return false
}

// detectMetricColumn picks the numeric column to analyze: name-hinted
// first, else the first numeric column.
func detectMetricColumn(rows table.Rows) string {
	numeric := table.NumericColumns(rows)
	if len(numeric) == 0 {
		return ""
	}
	for _, col := range numeric {
		low := strings.ToLower(col)
		for _, hint := range metricHints {
			if strings.Contains(low, hint) {
				return col
			}
		}
	}
	return numeric[0]
}
