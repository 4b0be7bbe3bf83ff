package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/insightpilot/insightpilot/internal/api"
	"github.com/insightpilot/insightpilot/internal/chart"
	"github.com/insightpilot/insightpilot/internal/config"
	"github.com/insightpilot/insightpilot/internal/dataset"
	"github.com/insightpilot/insightpilot/internal/history"
	"github.com/insightpilot/insightpilot/internal/llm"
	"github.com/insightpilot/insightpilot/internal/narrative"
	"github.com/insightpilot/insightpilot/internal/pipeline"
	"github.com/insightpilot/insightpilot/internal/report"
	"github.com/insightpilot/insightpilot/internal/stats"
	"github.com/insightpilot/insightpilot/internal/translate"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the insightpilot server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the MCP tools over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCPStdio()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show insightpilot system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

func initLogging(level string) {
	logLevel := slog.LevelInfo
	if strings.EqualFold(level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

// buildPipeline wires the collaborators. A nil generator leaves query
// translation unavailable and the chart planner on its fallback.
func buildPipeline(cfg config.Config, store *dataset.Store, gen llm.Generator) *pipeline.Pipeline {
	return pipeline.New(
		store,
		translate.New(gen),
		store,
		chart.NewPlanner(gen),
		stats.NewEngine(),
		narrative.New(gen),
		report.New(cfg.Storage.DataDir),
	)
}

func newGenerator(ctx context.Context, cfg config.Config) llm.Generator {
	if cfg.LLM.BaseURL == "" {
		slog.Warn("no text-generation backend configured, query translation disabled")
		return nil
	}
	client := llm.New(cfg.LLM.BaseURL, cfg.LLM.Model, cfg.LLM.Timeout)
	if !client.IsRunning(ctx) {
		slog.Warn("text-generation backend not reachable, requests will fail until it is up",
			"url", cfg.LLM.BaseURL)
	}
	return client
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "insightpilot version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	initLogging(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := dataset.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening dataset store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing dataset store: %v\n", err)
		}
	}()

	gen := newGenerator(ctx, cfg)
	pipe := buildPipeline(cfg, store, gen)
	histories := history.NewStore()

	handler := api.NewAppHandler(api.AppDeps{
		Pipeline: pipe,
		Store:    store,
		History:  histories,
		Token:    cfg.Server.APIToken,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// MCP over streamable HTTP on its own port.
	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Pipeline: pipe,
		Store:    store,
		History:  histories,
	})
	mcpAddr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.MCPPort)
	mcpHTTP := server.NewStreamableHTTPServer(mcpSrv)
	go func() {
		slog.Info("MCP server listening", "addr", mcpAddr)
		if err := mcpHTTP.Start(mcpAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("MCP server error", "error", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "insightpilot listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mcpHTTP.Shutdown(shutdownCtx); err != nil {
		slog.Warn("MCP server shutdown", "error", err)
	}
	return srv.Shutdown(shutdownCtx)
}

// runMCPStdio serves only the MCP tools on stdin/stdout, for editor
// and agent integrations that spawn the binary directly.
func runMCPStdio() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	initLogging(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := dataset.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening dataset store: %w", err)
	}
	defer store.Close()

	gen := newGenerator(ctx, cfg)
	pipe := buildPipeline(cfg, store, gen)

	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Pipeline: pipe,
		Store:    store,
		History:  history.NewStore(),
	})
	stdioSrv := server.NewStdioServer(mcpSrv)
	if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func showStatus() error {
	cfg, err := config.Load()
	if err != nil {
		printError("config error: %v", err)
		return nil
	}

	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(serverURL + "/api/health")
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			printStatus("Server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	if cfg.LLM.BaseURL == "" {
		printStatus("LLM", "not configured")
	} else {
		llmResp, err := client.Get(cfg.LLM.BaseURL + "/api/tags")
		if err != nil {
			printStatus("LLM", "not running")
		} else {
			llmResp.Body.Close()
			printStatus("LLM", "running at %s", cfg.LLM.BaseURL)
		}
		printStatus("Model", "%s", cfg.LLM.Model)
	}

	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}
