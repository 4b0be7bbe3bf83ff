// Package dataset owns the relational store queries run against: a
// SQLite database holding ingested CSV tables plus a seeded demo
// sales dataset.
package dataset

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/insightpilot/insightpilot/internal/table"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// maxErrLen bounds execution error messages surfaced to callers.
const maxErrLen = 300

// Store wraps a SQLite database holding analytical datasets.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the dataset database in dataDir and applies
// pending migrations and the demo seed. Pass ":memory:" as dataDir
// for an in-memory database (used by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "insightpilot.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	if err := s.seedSales(); err != nil {
		db.Close()
		return nil, fmt.Errorf("seeding demo dataset: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for query execution.
func (s *Store) DB() *sql.DB {
	return s.db
}

// migrate reads embedded SQL migration files and applies any that haven't run yet.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		var version int
		if _, err := fmt.Sscanf(entry.Name(), "%d_", &version); err != nil {
			return fmt.Errorf("parsing migration version from %q: %w", entry.Name(), err)
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

// Tables returns the names of user datasets, excluding internal bookkeeping.
func (s *Store) Tables() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND name != 'schema_version'
		ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// Schema returns a textual schema description consumed verbatim in
// translation prompts: one "Table: ... / Columns: ..." block per table.
func (s *Store) Schema() (string, error) {
	tables, err := s.Tables()
	if err != nil {
		return "", fmt.Errorf("listing tables: %w", err)
	}

	var blocks []string
	for _, t := range tables {
		cols, err := s.columns(t)
		if err != nil {
			return "", fmt.Errorf("describing %s: %w", t, err)
		}
		blocks = append(blocks, fmt.Sprintf("Table: %s\nColumns: %s", t, strings.Join(cols, ", ")))
	}
	return strings.Join(blocks, "\n\n"), nil
}

func (s *Store) columns(tbl string) ([]string, error) {
	rows, err := s.db.Query(`SELECT name, type FROM pragma_table_info(?)`, tbl)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name, typ string
		if err := rows.Scan(&name, &typ); err != nil {
			return nil, err
		}
		cols = append(cols, fmt.Sprintf("%s (%s)", name, typ))
	}
	return cols, rows.Err()
}

// Query executes SQL and returns the rectangular result set. Errors
// are truncated so an executor failure never floods the result bundle.
func (s *Store) Query(ctx context.Context, query string) (table.Rows, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return table.Rows{}, fmt.Errorf("query execution failed: %s", truncate(err.Error(), maxErrLen))
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return table.Rows{}, fmt.Errorf("reading result columns: %w", err)
	}

	out := table.Rows{Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return table.Rows{}, fmt.Errorf("scanning result row: %w", err)
		}

		rec := make(map[string]any, len(cols))
		for i, c := range cols {
			rec[c] = normalize(values[i])
		}
		out.Records = append(out.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return table.Rows{}, fmt.Errorf("query execution failed: %s", truncate(err.Error(), maxErrLen))
	}
	return out, nil
}

func normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
