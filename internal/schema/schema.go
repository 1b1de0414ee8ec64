package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ladzaretti/sqlscript/types"
)

// ErrNoSchemaVersion is returned when the version table holds no row yet.
var ErrNoSchemaVersion = errors.New("no schema version")

func CreateTable(ctx context.Context, db types.LimitedDB, dialect types.Dialect) error {
	return execContext(ctx, db, dialect.CreateVersionTableQuery())
}

func CurrentVersion(ctx context.Context, db types.LimitedDB, dialect types.Dialect) (*types.SchemaVersion, error) {
	row := db.QueryRowContext(ctx, dialect.CurrentVersionQuery())

	return scanSchema(row)
}

func SaveVersion(ctx context.Context, db types.LimitedDB, dialect types.Dialect, s types.SchemaVersion) error {
	return execContext(ctx, db, dialect.SaveVersionQuery(), s.Version, s.Checksum)
}

func execContext(ctx context.Context, db types.LimitedDB, query string, args ...any) error {
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("exec context: %w", err)
	}

	return nil
}

func scanSchema(row *sql.Row) (*types.SchemaVersion, error) {
	ver := &types.SchemaVersion{}

	if err := row.Scan(&ver.ID, &ver.Version, &ver.Checksum); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoSchemaVersion
		}

		return nil, fmt.Errorf("scan schema version: %w", err)
	}

	return ver, nil
}
