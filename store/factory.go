package store

import (
	"fmt"
	"strings"
)

// New creates a log store based on the DSN.
// - Empty DSN: SQLite at data/tamhid.db
// - postgres:// or postgresql://: PostgreSQL
// - Anything else: SQLite at the specified path
func New(dsn string) (LogStore, error) {
	if dsn == "" {
		return NewSQLiteStore("data/tamhid.db")
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		s, err := NewPostgresStore(dsn)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		return s, nil
	}

	return NewSQLiteStore(dsn)
}
