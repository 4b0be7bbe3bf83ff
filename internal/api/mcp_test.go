package api

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/insightpilot/insightpilot/internal/dataset"
	"github.com/insightpilot/insightpilot/internal/history"
	"github.com/insightpilot/insightpilot/internal/pipeline"
)

func newTestMCPDeps(t *testing.T) (MCPDeps, *stubRunner) {
	t.Helper()
	store, err := dataset.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	runner := &stubRunner{result: pipeline.Result{
		GeneratedQuery: "SELECT 1",
		Narrative:      "- fine",
	}}
	return MCPDeps{Pipeline: runner, Store: store, History: history.NewStore()}, runner
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestMCPTool_Analyze(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	handler := mcpAnalyze(deps)

	req := makeCallToolRequest("analyze", map[string]interface{}{
		"query":      "total sales by region",
		"session_id": "s1",
	})
	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}

	var res map[string]any
	if err := json.Unmarshal([]byte(toolText(t, result)), &res); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if res["question"] != "total sales by region" {
		t.Errorf("question = %v", res["question"])
	}
	if res["generated_query"] != "SELECT 1" {
		t.Errorf("generated_query = %v", res["generated_query"])
	}

	if turns := deps.History.Turns("s1"); len(turns) != 1 {
		t.Errorf("history turns = %d", len(turns))
	}
}

func TestMCPTool_AnalyzeSurvivesClientDisconnect(t *testing.T) {
	deps, runner := newTestMCPDeps(t)
	handler := mcpAnalyze(deps)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := handler(ctx, makeCallToolRequest("analyze", map[string]interface{}{
		"query":      "q",
		"session_id": "s1",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}
	if runner.lastCtxErr != nil {
		t.Errorf("pipeline saw canceled context: %v", runner.lastCtxErr)
	}
	if turns := deps.History.Turns("s1"); len(turns) != 1 {
		t.Errorf("history turns = %d, want 1", len(turns))
	}
}

func TestMCPTool_AnalyzeMissingQuery(t *testing.T) {
	deps, runner := newTestMCPDeps(t)
	handler := mcpAnalyze(deps)

	result, err := handler(context.Background(), makeCallToolRequest("analyze", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error for missing query")
	}
	if runner.calls != 0 {
		t.Error("pipeline ran without a query")
	}
}

func TestMCPTool_AnalyzeFailureSkipsHistory(t *testing.T) {
	deps, runner := newTestMCPDeps(t)
	runner.result.Error = &pipeline.StageError{
		Kind:    pipeline.KindTranslationUnavailable,
		Message: "backend down",
	}
	handler := mcpAnalyze(deps)

	result, err := handler(context.Background(), makeCallToolRequest("analyze", map[string]interface{}{
		"query": "q",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatal("pipeline failures travel inside the bundle, not as tool errors")
	}
	if !strings.Contains(toolText(t, result), "translation_unavailable") {
		t.Errorf("result = %s", toolText(t, result))
	}
	if turns := deps.History.Turns("default"); len(turns) != 0 {
		t.Errorf("failed turn appended to history: %d", len(turns))
	}
}

func TestMCPTool_ListDatasets(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	handler := mcpListDatasets(deps)

	result, err := handler(context.Background(), makeCallToolRequest("list_datasets", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}

	var tables []string
	if err := json.Unmarshal([]byte(toolText(t, result)), &tables); err != nil {
		t.Fatalf("decoding tables: %v", err)
	}
	if len(tables) != 1 || tables[0] != "sales" {
		t.Errorf("tables = %v", tables)
	}
}

func TestMCPResource_Schema(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	handler := mcpResourceSchema(deps)

	contents, err := handler(context.Background(), mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{URI: "dataset://schema"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("expected 1 content, got %d", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected TextResourceContents, got %T", contents[0])
	}
	if !strings.Contains(tc.Text, "Table: sales") {
		t.Errorf("schema = %s", tc.Text)
	}
}
