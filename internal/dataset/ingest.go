package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// IngestResult reports what an uploaded CSV produced.
type IngestResult struct {
	Table   string   `json:"table"`
	Rows    int      `json:"rows"`
	Columns []string `json:"columns"`
}

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IngestCSV loads a CSV stream into the named table, replacing any
// existing table of that name. Column types are inferred from the
// data: INTEGER, REAL, or TEXT.
func (s *Store) IngestCSV(name string, r io.Reader) (IngestResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "sales"
	}
	if !identifierRe.MatchString(name) {
		return IngestResult{}, fmt.Errorf("invalid table name %q", name)
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return IngestResult{}, fmt.Errorf("uploaded CSV is empty")
	}
	if err != nil {
		return IngestResult{}, fmt.Errorf("unable to parse CSV: %w", err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		col := sanitizeColumn(h)
		if col == "" {
			col = fmt.Sprintf("column_%d", i+1)
		}
		columns[i] = col
	}

	var records [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return IngestResult{}, fmt.Errorf("unable to parse CSV: %w", err)
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return IngestResult{}, fmt.Errorf("uploaded CSV is empty")
	}

	types := inferColumnTypes(columns, records)

	tx, err := s.db.Begin()
	if err != nil {
		return IngestResult{}, fmt.Errorf("beginning ingest transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS "%s"`, name)); err != nil {
		return IngestResult{}, fmt.Errorf("replacing table %s: %w", name, err)
	}

	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = fmt.Sprintf(`"%s" %s`, c, types[i])
	}
	if _, err := tx.Exec(fmt.Sprintf(`CREATE TABLE "%s" (%s)`, name, strings.Join(defs, ", "))); err != nil {
		return IngestResult{}, fmt.Errorf("creating table %s: %w", name, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(columns)), ",")
	stmt, err := tx.Prepare(fmt.Sprintf(`INSERT INTO "%s" VALUES (%s)`, name, placeholders))
	if err != nil {
		return IngestResult{}, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		args := make([]any, len(columns))
		for i := range columns {
			if i >= len(rec) || rec[i] == "" {
				args[i] = nil
				continue
			}
			args[i] = coerce(rec[i], types[i])
		}
		if _, err := stmt.Exec(args...); err != nil {
			return IngestResult{}, fmt.Errorf("inserting row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return IngestResult{}, fmt.Errorf("committing ingest: %w", err)
	}

	return IngestResult{Table: name, Rows: len(records), Columns: columns}, nil
}

func sanitizeColumn(h string) string {
	h = strings.TrimSpace(h)
	h = strings.ToLower(h)
	h = strings.ReplaceAll(h, " ", "_")
	var sb strings.Builder
	for _, r := range h {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	out := sb.String()
	if out != "" && out[0] >= '0' && out[0] <= '9' {
		out = "c_" + out
	}
	return out
}

// inferColumnTypes picks INTEGER/REAL/TEXT per column by scanning all
// non-empty values. A single non-numeric value demotes the column.
func inferColumnTypes(columns []string, records [][]string) []string {
	types := make([]string, len(columns))
	for i := range columns {
		allInt, allFloat, nonEmpty := true, true, false
		for _, rec := range records {
			if i >= len(rec) || rec[i] == "" {
				continue
			}
			nonEmpty = true
			if _, err := strconv.ParseInt(rec[i], 10, 64); err != nil {
				allInt = false
			}
			if _, err := strconv.ParseFloat(rec[i], 64); err != nil {
				allFloat = false
			}
		}
		switch {
		case nonEmpty && allInt:
			types[i] = "INTEGER"
		case nonEmpty && allFloat:
			types[i] = "REAL"
		default:
			types[i] = "TEXT"
		}
	}
	return types
}

func coerce(v, typ string) any {
	switch typ {
	case "INTEGER":
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	case "REAL":
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return v
}
