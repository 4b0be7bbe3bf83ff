// Package translate turns a natural-language analytical question into
// query text via the text-generation collaborator.
package translate

import (
	"context"
	"errors"
	"fmt"

	"github.com/insightpilot/insightpilot/internal/llm"
)

// ErrUnavailable is returned when no text-generation backend is
// configured; the pipeline surfaces it as a translation failure.
var ErrUnavailable = errors.New("text generation not configured")

const promptTemplate = `You are a SQL expert. Convert the following natural language query into a SQL query for SQLite.

Schema:
%s

Recent conversation:
%s

Current Query: %s

Return ONLY the SQL query, nothing else. Do not wrap in markdown code blocks.`

// Translator generates SQL from questions grounded in the schema
// description and recent conversation.
type Translator struct {
	gen llm.Generator
}

// New creates a Translator. A nil generator makes Translate report
// ErrUnavailable.
func New(gen llm.Generator) *Translator {
	return &Translator{gen: gen}
}

// Translate builds the prompt and returns the generated query text
// with any code fencing stripped.
func (t *Translator) Translate(ctx context.Context, schema, renderedHistory, question string) (string, error) {
	if t.gen == nil {
		return "", ErrUnavailable
	}

	prompt := fmt.Sprintf(promptTemplate, schema, renderedHistory, question)
	raw, err := t.gen.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generating query: %w", err)
	}

	query := llm.StripFences(raw)
	if query == "" {
		return "", fmt.Errorf("generator returned empty query text")
	}
	return query, nil
}
