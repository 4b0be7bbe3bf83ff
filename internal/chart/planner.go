package chart

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/insightpilot/insightpilot/internal/llm"
	"github.com/insightpilot/insightpilot/internal/table"
)

// Planner produces chart plans: a deterministic fallback, optionally
// refined by the text-generation collaborator. External output is
// never trusted as a control value: anything unparseable or invalid
// falls back unchanged.
type Planner struct {
	gen llm.Generator
}

// NewPlanner creates a Planner. A nil generator disables refinement.
func NewPlanner(gen llm.Generator) *Planner {
	return &Planner{gen: gen}
}

const refinePromptTemplate = `You are an analytics visualization planner. Based on the user's question, the column metadata, and sample rows, choose the most appropriate chart to highlight the insight.

Allowed chart_type values: bar, line, area, scatter, pie, table.
aggregation can be sum, mean, avg, average, count, or none. Use count when only frequency matters.
Return ONLY valid JSON with keys: chart_type, x_field, y_field (nullable), aggregation, top_n (int), explanation.
Make sure fields exist in the dataset and chart type matches their dtypes (categorical for x axis on bar/pie, numeric for y).
Pick at most top 12 categories when using bar/pie.

Columns: %s
Sample rows: %s
User question: %s`

// Plan computes the fallback for the row set and attempts refinement.
func (p *Planner) Plan(ctx context.Context, rows table.Rows, question string) Plan {
	fallback := Fallback(rows)
	if p.gen == nil {
		return fallback
	}

	columnsJSON, err := json.Marshal(table.Describe(rows))
	if err != nil {
		return fallback
	}
	samplesJSON, err := json.Marshal(rows.Sample(5))
	if err != nil {
		return fallback
	}

	prompt := fmt.Sprintf(refinePromptTemplate, columnsJSON, samplesJSON, question)

	raw, err := p.gen.Generate(ctx, prompt)
	if err != nil {
		slog.Warn("chart refinement failed, keeping fallback", "error", err)
		return fallback
	}

	payload := llm.ExtractJSON(raw)
	if payload == "" {
		slog.Warn("chart refinement returned no JSON object, keeping fallback")
		return fallback
	}

	var refined Plan
	if err := json.Unmarshal([]byte(payload), &refined); err != nil {
		slog.Warn("chart refinement unmarshal failed, keeping fallback", "error", err)
		return fallback
	}

	refined.ChartType = strings.ToLower(strings.TrimSpace(refined.ChartType))
	refined.Aggregation = strings.ToLower(strings.TrimSpace(refined.Aggregation))

	if err := Validate(refined, rows); err != nil {
		slog.Warn("refined chart plan rejected, keeping fallback", "error", err)
		return fallback
	}

	if refined.Explanation == "" {
		refined.Explanation = fallback.Explanation
	}
	return refined
}
