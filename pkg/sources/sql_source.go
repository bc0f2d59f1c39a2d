/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: sql_source.go
Description: Source implementation for SQL queries. Supports SQLite through modernc.org/sqlite
and PostgreSQL through pgx. Every result row becomes a record keyed by column name; NULL
columns are left out of the record.
*/

package sources

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/kleascm/ontoforge/pkg/records"
	_ "modernc.org/sqlite"
)

// SQLSource runs a query and returns its rows as records
type SQLSource struct {
	NameStr        string
	DescriptionStr string
	Driver         string // "sqlite" or "pgx" ("postgres" is accepted as an alias)
	DSN            string
	Query          string
	Args           []interface{}
}

// NewSQLSource creates a new SQLSource
func NewSQLSource(name, driver, dsn, query string) *SQLSource {
	return &SQLSource{
		NameStr:        name,
		DescriptionStr: fmt.Sprintf("Records from %s query", driver),
		Driver:         driver,
		DSN:            dsn,
		Query:          query,
	}
}

func (ss *SQLSource) Name() string        { return ss.NameStr }
func (ss *SQLSource) Description() string { return ss.DescriptionStr }

// Open connects to the configured database
func (ss *SQLSource) Open() (*sql.DB, error) {
	switch strings.ToLower(ss.Driver) {
	case "sqlite", "sqlite3":
		db, err := sql.Open("sqlite", ss.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return db, nil
	case "pgx", "postgres", "postgresql":
		cfg, err := pgx.ParseConfig(ss.DSN)
		if err != nil {
			return nil, fmt.Errorf("invalid postgres DSN: %w", err)
		}
		return stdlib.OpenDB(*cfg), nil
	default:
		return nil, fmt.Errorf("%w: sql driver %q", ErrUnsupportedFormat, ss.Driver)
	}
}

// Check verifies the database is reachable
func (ss *SQLSource) Check(ctx context.Context) error {
	db, err := ss.Open()
	if err != nil {
		return err
	}
	defer db.Close()
	return db.PingContext(ctx)
}

// FetchRecords executes the query
func (ss *SQLSource) FetchRecords(ctx context.Context) (records.Dataset, error) {
	db, err := ss.Open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, ss.Query, ss.Args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var ds records.Dataset
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		rec := records.NewRecord()
		for i, col := range columns {
			if v := sqlValue(values[i]); v != nil {
				rec.Set(col, v)
			}
		}
		ds = append(ds, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}
	return ds, nil
}

// sqlValue maps driver values onto record scalars
func sqlValue(v interface{}) interface{} {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339)
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	}
	return v
}
