package scripttest

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/ladzaretti/sqlscript"
)

// Replay splits the scripts at paths and executes their statements
// against db in order, failing tb on the first error.
//
// Unlike [sqlscript.Replayer], no schema version is recorded, so the
// same scripts can be replayed on every test database.
func Replay(tb testing.TB, db *sql.DB, dbType sqlscript.DatabaseType, paths ...string) {
	tb.Helper()

	ctx := context.Background()

	for _, p := range paths {
		statements, err := sqlscript.SplitFile(p, dbType)
		if err != nil {
			tb.Fatalf("split %s: %v", p, err)
		}

		for i, stmt := range statements {
			if strings.TrimSpace(stmt) == "" {
				continue
			}

			if _, err := db.ExecContext(ctx, stmt); err != nil {
				tb.Fatalf("%s: statement %d %q: %v", p, i+1, stmt, err)
			}
		}
	}
}
