// Package narrative synthesizes the textual insight summary from the
// executed result set and chart summary.
package narrative

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/insightpilot/insightpilot/internal/llm"
	"github.com/insightpilot/insightpilot/internal/table"
)

// maxDataChars truncates the serialized data sample fed to the prompt.
const maxDataChars = 2000

const promptTemplate = `You are an analytics copilot. Use the latest query, the conversation history, and data sample to provide incremental insights. If the question repeats, avoid repetition by referencing earlier answers.

History:
%s

Current Query: %s
Chart: %s
Data Sample: %s

Provide 3-5 concise bullet insights plus a short summary paragraph.`

// Synthesizer produces narrative insights. Failures degrade to a
// descriptive string rather than a pipeline error.
type Synthesizer struct {
	gen llm.Generator
}

// New creates a Synthesizer. A nil generator yields a fixed notice.
func New(gen llm.Generator) *Synthesizer {
	return &Synthesizer{gen: gen}
}

// Synthesize generates the narrative for a completed query.
func (s *Synthesizer) Synthesize(ctx context.Context, question, renderedHistory, chartSummary string, rows table.Rows) string {
	if s.gen == nil {
		return "Narrative generation not configured."
	}

	sample, err := json.Marshal(rows.Sample(20))
	if err != nil {
		sample = []byte("[]")
	}
	data := string(sample)
	if len(data) > maxDataChars {
		data = data[:maxDataChars]
	}

	prompt := fmt.Sprintf(promptTemplate, renderedHistory, question, chartSummary, data)
	out, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return fmt.Sprintf("Failed to generate insights: %v", err)
	}
	return out
}
