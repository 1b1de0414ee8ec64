// Package scripttest provides helpers for testing code that replays SQL
// scripts, and acceptance tests for schema version dialects.
package scripttest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ladzaretti/sqlscript/internal/schema"
	"github.com/ladzaretti/sqlscript/types"
)

// TestDialect checks that dialect can create, read and update
// the schema version table of db.
func TestDialect(ctx context.Context, db *sql.DB, dialect types.Dialect) error {
	if err := schema.CreateTable(ctx, db, dialect); err != nil {
		return fmt.Errorf("create schema version table: %w", err)
	}

	_, err := schema.CurrentVersion(ctx, db, dialect)
	if err != nil && !errors.Is(err, schema.ErrNoSchemaVersion) {
		return fmt.Errorf("fetch current schema version: %w", err)
	}

	ver1 := types.SchemaVersion{
		ID:       0,
		Version:  1,
		Checksum: "checksum1",
	}

	ver2 := types.SchemaVersion{
		ID:       0,
		Version:  2,
		Checksum: "checksum2",
	}

	for _, want := range []types.SchemaVersion{ver1, ver2} {
		if err := schema.SaveVersion(ctx, db, dialect, want); err != nil {
			return fmt.Errorf("save schema version: %w", err)
		}

		curr, err := schema.CurrentVersion(ctx, db, dialect)
		if err != nil {
			return fmt.Errorf("fetch updated schema version: %w", err)
		}

		if !curr.Equal(&want) {
			return fmt.Errorf("schema version mismatch: got %+v, expected %+v", curr, &want)
		}
	}

	return nil
}
