package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/insightpilot/insightpilot/internal/stats"
	"github.com/insightpilot/insightpilot/internal/table"
)

func TestAssembleWritesDocument(t *testing.T) {
	dir := t.TempDir()
	a := New(dir)

	ref, err := a.Assemble(Input{
		Question:  "total sales by region",
		Query:     "SELECT region, SUM(total_amount) FROM sales GROUP BY region",
		Narrative: "- North leads all regions.",
		ChartRef:  "chart_abc.json",
		Trend:     &stats.TrendResult{Summary: "Upward trend of 12.0 per period."},
		Rows: table.Rows{
			Columns: []string{"region", "total"},
			Records: []map[string]any{
				{"region": "North", "total": 120.5},
				{"region": "South", "total": 80.0},
			},
		},
	})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !strings.HasPrefix(ref, "report_") || !strings.HasSuffix(ref, ".md") {
		t.Fatalf("unexpected reference %q", ref)
	}

	data, err := os.ReadFile(filepath.Join(dir, "artifacts", ref))
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	doc := string(data)

	for _, want := range []string{
		"# Analysis Report",
		"## Question",
		"total sales by region",
		"```sql",
		"GROUP BY region",
		"North leads all regions",
		"chart_abc.json",
		"## Trend",
		"Upward trend",
		"| region | total |",
		"| North | 120.5 |",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("report missing %q", want)
		}
	}
	if strings.Contains(doc, "## Anomalies") {
		t.Error("anomaly section present without anomaly result")
	}
}

func TestAssembleSampleRowLimit(t *testing.T) {
	a := New(t.TempDir())

	rows := table.Rows{Columns: []string{"n"}}
	for i := 0; i < 25; i++ {
		rows.Records = append(rows.Records, map[string]any{"n": i})
	}
	ref, err := a.Assemble(Input{Question: "q", Query: "SELECT 1", Narrative: "- ok", Rows: rows})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(a.dir, ref))
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	got := strings.Count(string(data), "\n| ") // header, separator, data rows
	if got != maxSampleRows+2 {
		t.Fatalf("expected %d table lines, got %d", maxSampleRows+2, got)
	}
}
