package types

import (
	"context"
	"database/sql"
)

// SchemaVersion is the single row of the schema version table describing
// how many scripts have been replayed and the checksum chain at that point.
type SchemaVersion struct {
	ID       int
	Version  int
	Checksum string
}

func (s *SchemaVersion) Equal(o *SchemaVersion) bool {
	if s == o {
		return true
	}

	if s == nil || o == nil {
		return false
	}

	return s.ID == o.ID && s.Version == o.Version && s.Checksum == o.Checksum
}

// LimitedDB is the subset of [sql.DB] and [sql.Tx] used to replay scripts.
type LimitedDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Dialect provides the database specific queries used to
// maintain the schema version table.
type Dialect interface {
	CreateVersionTableQuery() string
	CurrentVersionQuery() string
	SaveVersionQuery() string
}
