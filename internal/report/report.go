// Package report assembles the analysis document: a markdown file
// under the artifacts directory, referenced by name in the result
// bundle. Rendering to richer formats is delegated externally.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/insightpilot/insightpilot/internal/stats"
	"github.com/insightpilot/insightpilot/internal/table"
)

// maxSampleRows bounds the data sample echoed into the document.
const maxSampleRows = 10

// Input carries everything the assembler persists.
type Input struct {
	Title        string
	Question     string
	Query        string
	Narrative    string
	ChartRef     string
	ChartCaption string
	Trend        *stats.TrendResult
	Anomaly      *stats.AnomalyResult
	Rows         table.Rows
}

// Assembler writes report documents into a directory.
type Assembler struct {
	dir string
}

// New creates an Assembler rooted at dir/artifacts.
func New(dataDir string) *Assembler {
	return &Assembler{dir: filepath.Join(dataDir, "artifacts")}
}

// Assemble writes the document and returns its file reference.
func (a *Assembler) Assemble(in Input) (string, error) {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating artifacts directory: %w", err)
	}

	name := fmt.Sprintf("report_%s.md", uuid.NewString())
	if err := os.WriteFile(filepath.Join(a.dir, name), []byte(render(in)), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return name, nil
}

func render(in Input) string {
	var sb strings.Builder

	title := in.Title
	if title == "" {
		title = "Analysis Report"
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "## Question\n\n%s\n\n", in.Question)
	fmt.Fprintf(&sb, "## Generated Query\n\n```sql\n%s\n```\n\n", in.Query)
	fmt.Fprintf(&sb, "## Insights\n\n%s\n\n", in.Narrative)

	if in.ChartRef != "" {
		fmt.Fprintf(&sb, "## Visualization\n\n%s\n\n", in.ChartRef)
		if in.ChartCaption != "" {
			fmt.Fprintf(&sb, "%s\n\n", in.ChartCaption)
		}
	}

	if in.Trend != nil {
		fmt.Fprintf(&sb, "## Trend\n\n%s\n\n", in.Trend.Summary)
	}
	if in.Anomaly != nil {
		fmt.Fprintf(&sb, "## Anomalies\n\n%s\n\n", in.Anomaly.Summary)
	}

	if !in.Rows.Empty() {
		sb.WriteString("## Data Sample\n\n")
		sb.WriteString("| " + strings.Join(in.Rows.Columns, " | ") + " |\n")
		sb.WriteString("|" + strings.Repeat(" --- |", len(in.Rows.Columns)) + "\n")
		for _, rec := range in.Rows.Sample(maxSampleRows) {
			cells := make([]string, len(in.Rows.Columns))
			for i, c := range in.Rows.Columns {
				cells[i] = table.FormatCell(rec[c])
			}
			sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
		}
	}

	return sb.String()
}
