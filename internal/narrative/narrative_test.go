package narrative

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/insightpilot/insightpilot/internal/table"
)

type mockGenerator struct {
	response string
	err      error
	prompt   string
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.prompt = prompt
	return m.response, m.err
}

func sampleRows() table.Rows {
	return table.Rows{
		Columns: []string{"region", "total"},
		Records: []map[string]any{{"region": "North", "total": 42.0}},
	}
}

func TestSynthesizeIncludesContext(t *testing.T) {
	gen := &mockGenerator{response: "- North leads with 42"}
	got := New(gen).Synthesize(context.Background(), "totals by region?", "None", "Bar chart of total by region", sampleRows())
	if got != "- North leads with 42" {
		t.Errorf("narrative = %q", got)
	}
	for _, want := range []string{"totals by region?", "Bar chart of total by region", "North"} {
		if !strings.Contains(gen.prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestSynthesizeFailureDegrades(t *testing.T) {
	gen := &mockGenerator{err: fmt.Errorf("backend down")}
	got := New(gen).Synthesize(context.Background(), "q", "None", "", sampleRows())
	if !strings.Contains(got, "Failed to generate insights") {
		t.Errorf("narrative = %q, want failure notice", got)
	}
}

func TestSynthesizeWithoutGenerator(t *testing.T) {
	got := New(nil).Synthesize(context.Background(), "q", "None", "", sampleRows())
	if !strings.Contains(got, "not configured") {
		t.Errorf("narrative = %q, want configuration notice", got)
	}
}

func TestSynthesizeTruncatesLargeSamples(t *testing.T) {
	var recs []map[string]any
	for i := 0; i < 20; i++ {
		recs = append(recs, map[string]any{"text": strings.Repeat("x", 500)})
	}
	gen := &mockGenerator{response: "ok"}
	New(gen).Synthesize(context.Background(), "q", "None", "",
		table.Rows{Columns: []string{"text"}, Records: recs})
	if len(gen.prompt) > maxDataChars+1000 {
		t.Errorf("prompt not truncated: %d chars", len(gen.prompt))
	}
}
