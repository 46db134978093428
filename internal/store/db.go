package store

import (
	"database/sql"
	"fmt"

	_ "github.com/duckdb/duckdb-go/v2"
)

const inMemoryDSN = ":memory:"

// NewDB opens a DuckDB database at path. An empty path or ":memory:" opens
// an in-memory database.
func NewDB(path string) (*sql.DB, error) {
	dsn := path
	if dsn == inMemoryDSN {
		dsn = ""
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb at %q: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to duckdb at %q: %w", path, err)
	}
	return db, nil
}
