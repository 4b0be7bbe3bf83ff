package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/insightpilot/insightpilot/internal/dataset"
	"github.com/insightpilot/insightpilot/internal/history"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Pipeline Runner
	Store    *dataset.Store
	History  *history.Store
}

// NewMCPServer creates an MCP server exposing the analysis pipeline
// and dataset catalog as tools.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"insightpilot",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("insightpilot answers natural-language questions about local datasets with generated queries, charts, and statistical findings."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("analyze",
			mcp.WithDescription("Ask a natural-language question about the local datasets. Returns the generated query, result rows, statistical findings, and a narrative."),
			mcp.WithString("query", mcp.Description("The question to answer"), mcp.Required()),
			mcp.WithString("session_id", mcp.Description("Conversation session identifier (default \"default\")")),
		),
		mcpAnalyze(deps),
	)

	s.AddTool(
		mcp.NewTool("list_datasets",
			mcp.WithDescription("List the queryable dataset tables."),
		),
		mcpListDatasets(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"dataset://schema",
			"Dataset Schema",
			mcp.WithResourceDescription("Textual schema of all queryable tables"),
			mcp.WithMIMEType("text/plain"),
		),
		mcpResourceSchema(deps),
	)

	return s
}

func mcpAnalyze(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}
		sessionID := req.GetString("session_id", "default")

		// Scheduled stages run to completion even if the client
		// disconnects; each stage is still bounded by its own timeout.
		res := deps.Pipeline.Run(context.WithoutCancel(ctx), query, deps.History.Render(sessionID))

		if res.Error == nil {
			deps.History.Append(sessionID, history.Turn{
				Question:  query,
				Narrative: res.Narrative,
				Query:     res.GeneratedQuery,
			})
		}

		b, err := json.Marshal(sanitizeJSON(res))
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpListDatasets(deps MCPDeps) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tables, err := deps.Store.Tables()
		if err != nil {
			return mcpError(fmt.Sprintf("failed to list datasets: %v", err)), nil
		}
		if len(tables) == 0 {
			return mcpText("[]"), nil
		}

		b, err := json.Marshal(tables)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal tables: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceSchema(deps MCPDeps) server.ResourceHandlerFunc {
	return func(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		schema, err := deps.Store.Schema()
		if err != nil {
			return nil, fmt.Errorf("reading schema: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "text/plain",
				Text:     strings.TrimSpace(schema),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
