// Package sqlite reads the FPA FOD wildfire database, which ships as a SQLite
// file with a single wide "Fires" table.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// DefaultTable is the FPA FOD table holding fire occurrences.
const DefaultTable = "Fires"

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Source streams every row of a table as strings.
// It implements prune.Source.
type Source struct {
	db     *sql.DB
	rows   *sql.Rows
	header []string
	vals   []any
	out    []string
}

// OpenSource opens the database at path and starts a full scan of table.
func OpenSource(ctx context.Context, path, table string) (*Source, error) {
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	// sqlite creates missing files on open; require an existing database.
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	rows, err := db.QueryContext(ctx, `SELECT * FROM "`+table+`"`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	header, err := rows.Columns()
	if err != nil {
		rows.Close()
		db.Close()
		return nil, fmt.Errorf("read columns: %w", err)
	}

	vals := make([]any, len(header))
	for i := range vals {
		vals[i] = new(any)
	}
	return &Source{
		db:     db,
		rows:   rows,
		header: header,
		vals:   vals,
		out:    make([]string, len(header)),
	}, nil
}

// Header returns the table's column names.
func (s *Source) Header() []string { return s.header }

// Next returns the next row rendered as strings, or io.EOF after the last row.
// The returned slice is reused between calls.
func (s *Source) Next(_ context.Context) ([]string, error) {
	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		return nil, io.EOF
	}
	if err := s.rows.Scan(s.vals...); err != nil {
		return nil, fmt.Errorf("scan row: %w", err)
	}
	for i, v := range s.vals {
		s.out[i] = formatValue(*(v.(*any)))
	}
	return s.out, nil
}

// Close ends the scan and closes the database.
func (s *Source) Close() error {
	return errors.Join(s.rows.Close(), s.db.Close())
}

// formatValue renders a SQLite value the way a CSV export would. Blobs (the
// Shape geometry column) are hex encoded.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case string:
		return x
	case []byte:
		return hex.EncodeToString(x)
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
