package pipeline

import (
	"github.com/insightpilot/insightpilot/internal/chart"
	"github.com/insightpilot/insightpilot/internal/stats"
	"github.com/insightpilot/insightpilot/internal/table"
)

// ErrorKind classifies pipeline-level failures. Only failures that
// halt downstream stages get a kind; recoverable outcomes (skipped
// charts, insufficient data) are expressed as absent results instead.
type ErrorKind string

const (
	KindTranslationUnavailable ErrorKind = "translation_unavailable"
	KindExecutionFailure       ErrorKind = "execution_failure"
	KindReportFailure          ErrorKind = "report_failure"
)

// StageError is the single pipeline-level error slot. Once set it is
// never cleared within an invocation.
type StageError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// State is the shared record stages read from and write into. Stages
// never mutate it directly; each returns an Update that the runner
// merges, so short-circuiting is observable as state equality.
type State struct {
	Question  string
	History   string
	Schema    string
	Query     string
	Rows      table.Rows
	Chart     *chart.Result
	Analysis  stats.Analysis
	Narrative string
	Report    string
	Err       *StageError
}

// Update is a partial write-back from one stage. Nil fields leave the
// state untouched. Err is write-once: a later update cannot overwrite
// an error already recorded.
type Update struct {
	Schema    *string
	Query     *string
	Rows      *table.Rows
	Chart     *chart.Result
	Analysis  *stats.Analysis
	Narrative *string
	Report    *string
	Err       *StageError
}

func (s State) apply(u Update) State {
	if u.Schema != nil {
		s.Schema = *u.Schema
	}
	if u.Query != nil {
		s.Query = *u.Query
	}
	if u.Rows != nil {
		s.Rows = *u.Rows
	}
	if u.Chart != nil {
		s.Chart = u.Chart
	}
	if u.Analysis != nil {
		s.Analysis = *u.Analysis
	}
	if u.Narrative != nil {
		s.Narrative = *u.Narrative
	}
	if u.Report != nil {
		s.Report = *u.Report
	}
	if u.Err != nil && s.Err == nil {
		s.Err = u.Err
	}
	return s
}

// Result is the bundle handed to the transport layer. It is always
// produced, even on failure; the error travels inside it.
type Result struct {
	Question       string                `json:"question"`
	GeneratedQuery string                `json:"generated_query"`
	ResultRows     []map[string]any      `json:"result_rows"`
	Narrative      string                `json:"narrative"`
	ChartPlan      *chart.Plan           `json:"chart_plan,omitempty"`
	ChartSummary   string                `json:"chart_summary,omitempty"`
	ChartArtifact  string                `json:"chart_artifact,omitempty"`
	Trend          *stats.TrendResult    `json:"trend_analysis,omitempty"`
	Anomaly        *stats.AnomalyResult  `json:"anomaly_analysis,omitempty"`
	Forecast       *stats.ForecastResult `json:"forecast_analysis,omitempty"`
	Tests          *stats.TestsResult    `json:"statistical_tests,omitempty"`
	Report         string                `json:"report,omitempty"`
	Error          *StageError           `json:"error"`
}

func (s State) bundle() Result {
	res := Result{
		Question:       s.Question,
		GeneratedQuery: s.Query,
		ResultRows:     s.Rows.Records,
		Narrative:      s.Narrative,
		Trend:          s.Analysis.Trend,
		Anomaly:        s.Analysis.Anomaly,
		Forecast:       s.Analysis.Forecast,
		Tests:          s.Analysis.Tests,
		Report:         s.Report,
		Error:          s.Err,
	}
	if s.Chart != nil {
		res.ChartSummary = s.Chart.Summary
		if !s.Chart.Skipped {
			plan := s.Chart.Plan
			res.ChartPlan = &plan
			res.ChartArtifact = s.Chart.Artifact
		}
	}
	return res
}
