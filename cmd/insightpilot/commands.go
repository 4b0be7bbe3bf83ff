package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/insightpilot/insightpilot/internal/pipeline"
	"github.com/insightpilot/insightpilot/internal/table"
)

// --- ask ---

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a natural-language question about the datasets",
	Long: `Ask a natural-language question about the datasets.

Examples:
  insightpilot ask "What were total sales by region last year?"
  insightpilot ask --session trends "Is revenue growing month over month?"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, _ := cmd.Flags().GetString("session")
		showRows, _ := cmd.Flags().GetInt("rows")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/api/analyze", map[string]string{
			"query":      args[0],
			"session_id": session,
		})
		if err != nil {
			return err
		}

		var res pipeline.Result
		if err := decodeJSON(resp, &res); err != nil {
			return err
		}

		if res.Error != nil {
			printError("%s: %s", res.Error.Kind, res.Error.Message)
			return fmt.Errorf("analysis failed")
		}

		printStatus("Query", "%s", res.GeneratedQuery)
		fmt.Println()
		fmt.Println(res.Narrative)

		if res.ChartSummary != "" {
			fmt.Println()
			printStatus("Chart", "%s", res.ChartSummary)
		}
		if res.Trend != nil {
			printStatus("Trend", "%s", res.Trend.Summary)
		}
		if res.Anomaly != nil {
			printStatus("Anomalies", "%s", res.Anomaly.Summary)
		}
		if res.Forecast != nil && res.Forecast.Summary != "" {
			printStatus("Forecast", "%s", res.Forecast.Summary)
		}
		if res.Tests != nil {
			printStatus("Tests", "%s", res.Tests.Summary)
		}

		if showRows > 0 && len(res.ResultRows) > 0 {
			fmt.Println()
			printRows(res.ResultRows, showRows)
		}
		return nil
	},
}

// printRows renders up to limit result rows.
func printRows(rows []map[string]any, limit int) {
	for _, line := range rowLines(rows, limit) {
		fmt.Println(line)
	}
	if len(rows) > limit {
		fmt.Printf("... and %d more rows\n", len(rows)-limit)
	}
}

// rowLines formats up to limit rows as "k=v" pairs. The wire format
// does not carry column order, so columns render sorted by name.
func rowLines(rows []map[string]any, limit int) []string {
	if limit > len(rows) {
		limit = len(rows)
	}

	keys := make([]string, 0, len(rows[0]))
	for k := range rows[0] {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, limit)
	for i := 0; i < limit; i++ {
		line := ""
		for _, k := range keys {
			v, ok := rows[i][k]
			if !ok {
				continue
			}
			if line != "" {
				line += "  "
			}
			line += fmt.Sprintf("%s=%s", k, table.FormatCell(v))
		}
		lines = append(lines, line)
	}
	return lines
}

// --- datasets ---

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List the queryable dataset tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/api/datasets")
		if err != nil {
			return err
		}

		var result struct {
			Tables []string `json:"tables"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if len(result.Tables) == 0 {
			printWarning("No datasets loaded")
			return nil
		}
		for _, t := range result.Tables {
			fmt.Println(t)
		}
		return nil
	},
}

// --- upload ---

var uploadCmd = &cobra.Command{
	Use:   "upload <file.csv>",
	Short: "Load a CSV file as a dataset table",
	Long: `Load a CSV file as a dataset table, replacing the table if it
already exists.

Examples:
  insightpilot upload ./sales.csv
  insightpilot upload --table orders ./orders_2024.csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tableName, _ := cmd.Flags().GetString("table")

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening file: %w", err)
		}
		defer f.Close()

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.postFile(cmd.Context(), "/api/upload-csv", "file", args[0], f,
			map[string]string{"table_name": tableName})
		if err != nil {
			return err
		}

		var result struct {
			Table string `json:"table"`
			Rows  int    `json:"rows"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Loaded %d rows into table %s", result.Rows, result.Table)
		return nil
	},
}

// --- reset ---

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear a conversation session's history",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, _ := cmd.Flags().GetString("session")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/api/session/reset", map[string]string{
			"session_id": session,
		})
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Cleared session %s", result["session_id"])
		return nil
	},
}

func init() {
	askCmd.Flags().String("session", "default", "conversation session identifier")
	askCmd.Flags().Int("rows", 0, "print up to N result rows")
	uploadCmd.Flags().String("table", "sales", "destination table name")
	resetCmd.Flags().String("session", "default", "conversation session identifier")
}
