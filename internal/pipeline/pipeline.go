// Package pipeline orchestrates one analysis request as a fixed
// sequence of stages over a shared state record: schema fetch, query
// translation, execution, visualization planning and statistics (run
// concurrently), insight synthesis, and report assembly.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/insightpilot/insightpilot/internal/chart"
	"github.com/insightpilot/insightpilot/internal/report"
	"github.com/insightpilot/insightpilot/internal/stats"
	"github.com/insightpilot/insightpilot/internal/table"
	"github.com/insightpilot/insightpilot/internal/translate"
)

// SchemaIntrospector describes the queryable datasets as opaque text
// consumed verbatim in prompts.
type SchemaIntrospector interface {
	Schema() (string, error)
}

// Translator turns a natural-language question into query text.
type Translator interface {
	Translate(ctx context.Context, schema, renderedHistory, question string) (string, error)
}

// Executor runs query text against the datasets.
type Executor interface {
	Query(ctx context.Context, query string) (table.Rows, error)
}

// Planner recommends a chart for a row set. It never fails: invalid
// recommendations collapse to a deterministic fallback internally.
type Planner interface {
	Plan(ctx context.Context, rows table.Rows, question string) chart.Plan
}

// Analytics runs the statistical analyses over a row set.
type Analytics interface {
	Analyze(rows table.Rows) stats.Analysis
}

// Narrator synthesizes the insight text. Failures degrade to an
// explanatory string rather than an error.
type Narrator interface {
	Synthesize(ctx context.Context, question, renderedHistory, chartSummary string, rows table.Rows) string
}

// Assembler persists the final report document.
type Assembler interface {
	Assemble(in report.Input) (string, error)
}

type stage struct {
	name string
	run  func(ctx context.Context, st State) Update
}

// Pipeline wires the collaborators into the stage sequence. The
// assembler is optional; without one the report stage is a no-op.
type Pipeline struct {
	introspector SchemaIntrospector
	translator   Translator
	executor     Executor
	planner      Planner
	analytics    Analytics
	narrator     Narrator
	assembler    Assembler

	stages []stage
}

// New creates a Pipeline. introspector, translator, executor, planner,
// analytics and narrator are required; assembler may be nil.
func New(
	introspector SchemaIntrospector,
	translator Translator,
	executor Executor,
	planner Planner,
	analytics Analytics,
	narrator Narrator,
	assembler Assembler,
) *Pipeline {
	p := &Pipeline{
		introspector: introspector,
		translator:   translator,
		executor:     executor,
		planner:      planner,
		analytics:    analytics,
		narrator:     narrator,
		assembler:    assembler,
	}
	p.stages = []stage{
		{"FetchSchema", p.fetchSchema},
		{"TranslateQuery", p.translateQuery},
		{"ExecuteQuery", p.executeQuery},
		{"Visualize", p.visualizeAndAnalyze},
		{"SynthesizeInsight", p.synthesizeInsight},
		{"AssembleReport", p.assembleReport},
	}
	return p
}

// Run processes one question and always returns a result bundle.
// renderedHistory is the prompt-ready conversation context for the
// owning session. Once a stage records an error, remaining stages are
// skipped and the state passes through unchanged.
func (p *Pipeline) Run(ctx context.Context, question, renderedHistory string) Result {
	st := State{Question: question, History: renderedHistory}

	for _, sg := range p.stages {
		if st.Err != nil {
			break
		}
		st = st.apply(sg.run(ctx, st))
		if st.Err != nil {
			slog.Warn("pipeline stage failed",
				"stage", sg.name,
				"kind", st.Err.Kind,
				"error", st.Err.Message,
			)
		}
	}

	return st.bundle()
}

func (p *Pipeline) fetchSchema(_ context.Context, _ State) Update {
	schema, err := p.introspector.Schema()
	if err != nil {
		return Update{Err: &StageError{
			Kind:    KindExecutionFailure,
			Message: fmt.Sprintf("schema introspection failed: %v", err),
		}}
	}
	return Update{Schema: &schema}
}

func (p *Pipeline) translateQuery(ctx context.Context, st State) Update {
	if p.translator == nil {
		return Update{Err: &StageError{
			Kind:    KindTranslationUnavailable,
			Message: translate.ErrUnavailable.Error(),
		}}
	}
	query, err := p.translator.Translate(ctx, st.Schema, st.History, st.Question)
	if err != nil {
		return Update{Err: &StageError{
			Kind:    KindTranslationUnavailable,
			Message: fmt.Sprintf("query translation failed: %v", err),
		}}
	}
	return Update{Query: &query}
}

func (p *Pipeline) executeQuery(ctx context.Context, st State) Update {
	rows, err := p.executor.Query(ctx, st.Query)
	if err != nil {
		return Update{Err: &StageError{
			Kind:    KindExecutionFailure,
			Message: err.Error(),
		}}
	}
	return Update{Rows: &rows}
}

// visualizeAndAnalyze runs chart planning and statistics concurrently.
// The two write disjoint fields, so their updates merge without
// coordination.
func (p *Pipeline) visualizeAndAnalyze(ctx context.Context, st State) Update {
	var (
		chartRes chart.Result
		analysis stats.Analysis
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		plan := p.planner.Plan(gctx, st.Rows, st.Question)
		chartRes = chart.BuildSeries(st.Rows, plan)
		return nil
	})
	g.Go(func() error {
		analysis = p.analytics.Analyze(st.Rows)
		return nil
	})
	// Both goroutines degrade internally instead of returning errors.
	_ = g.Wait()

	return Update{Chart: &chartRes, Analysis: &analysis}
}

func (p *Pipeline) synthesizeInsight(ctx context.Context, st State) Update {
	var chartSummary string
	if st.Chart != nil {
		chartSummary = st.Chart.Summary
	}
	narrative := p.narrator.Synthesize(ctx, st.Question, st.History, chartSummary, st.Rows)
	return Update{Narrative: &narrative}
}

func (p *Pipeline) assembleReport(_ context.Context, st State) Update {
	if p.assembler == nil {
		return Update{}
	}

	in := report.Input{
		Question:  st.Question,
		Query:     st.Query,
		Narrative: st.Narrative,
		Trend:     st.Analysis.Trend,
		Anomaly:   st.Analysis.Anomaly,
		Rows:      st.Rows,
	}
	if st.Chart != nil && !st.Chart.Skipped {
		in.ChartRef = st.Chart.Artifact
		in.ChartCaption = st.Chart.Summary
	}

	ref, err := p.assembler.Assemble(in)
	if err != nil {
		return Update{Err: &StageError{
			Kind:    KindReportFailure,
			Message: fmt.Sprintf("report assembly failed: %v", err),
		}}
	}
	return Update{Report: &ref}
}
