package sqlscript_test

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/ladzaretti/sqlscript"
	"github.com/ladzaretti/sqlscript/scripttest"
)

var (
	//go:embed testdata/pg/scripts
	embedPostgresFS   embed.FS
	postgresFSScripts = sqlscript.FSScripts{
		FS:   embedPostgresFS,
		Path: "testdata/pg/scripts",
	}
)

func postgresTestContainer(ctx context.Context) (*postgres.PostgresContainer, error) {
	ctr, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("database"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.WithSQLDriver("pgx"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, fmt.Errorf("create test container: %w", err)
	}

	if err := ctr.Snapshot(ctx); err != nil {
		return nil, fmt.Errorf("create snapshot: %w", err)
	}

	return ctr, nil
}

func setupPostgresTestSuite(ctx context.Context, t *testing.T, stringScripts []string, fsScripts sqlscript.FSScripts) (*testSuite, func()) {
	t.Helper()

	ctr, err := postgresTestContainer(ctx)
	if err != nil {
		t.Fatalf("create test container: %v", err)
	}

	connString, err := ctr.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	cleanup := func() {
		_ = testcontainers.TerminateContainer(ctr)
	}

	helper := func(t *testing.T) *sql.DB {
		t.Helper()

		if err := ctr.Restore(context.Background()); err != nil {
			t.Fatalf("restore database: %v", err)
		}

		db, err := sql.Open("pgx", connString)
		if err != nil {
			t.Fatalf("open database: %v", err)
		}

		t.Cleanup(func() {
			db.Close()
		})

		return db
	}

	suite, err := newTestSuite(testSuiteConfig{
		dbHelper:      helper,
		dbType:        sqlscript.PostgreSQL,
		fsScripts:     fsScripts,
		stringScripts: stringScripts,
	})
	if err != nil {
		t.Fatalf("create test suite: %v", err)
	}

	return suite, cleanup
}

func TestReplayWithPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	stringScripts := []string{
		`CREATE TABLE
			IF NOT EXISTS testing_script_1 (
				id INTEGER PRIMARY KEY,
				another_id INTEGER,
				something_else TEXT
			);
		`,
		`CREATE TABLE
			IF NOT EXISTS testing_script_2 (
				id INTEGER PRIMARY KEY,
				another_id INTEGER,
				something_else TEXT
			);
		CREATE OR REPLACE FUNCTION testing_script_2_count()
		RETURNS BIGINT AS
		$body$
		BEGIN
			RETURN (SELECT count(*) FROM testing_script_2);
		END;
		$body$
		LANGUAGE plpgsql;
		`,
	}

	suite, cleanup := setupPostgresTestSuite(context.Background(), t, stringScripts, postgresFSScripts)
	defer cleanup()

	t.Run("TestDialect", func(t *testing.T) {
		if err := scripttest.TestDialect(t.Context(), suite.dbHelper(t), sqlscript.PostgreSQLDialect{}); err != nil {
			t.Fatalf("TestDialect: %v", err)
		}
	})

	t.Run("ApplyStringScripts", suite.applyStringScripts)
	t.Run("ApplyFSScripts", suite.applyFSScripts)
	t.Run("ApplyWithTxDisabled", suite.applyWithTxDisabled)
	t.Run("ApplyWithTxDisabledKeepsPartialProgress", suite.applyWithTxDisabledKeepsPartialProgress)
	t.Run("ApplyWithNoChecksumValidation", suite.applyWithNoChecksumValidation)
	t.Run("ApplyWithFilter", suite.applyWithFilter)
	t.Run("ReapplyAll", suite.reapplyAll)
	t.Run("RollsBackOnSQLError", suite.rollsBackOnSQLError)
	t.Run("RollsBackOnValidationError", suite.rollsBackOnValidationError)
	t.Run("RejectsVersionAhead", suite.rejectsVersionAhead)

	t.Run("DollarQuotedFunctions", func(t *testing.T) {
		db := suite.dbHelper(t)

		if _, err := sqlscript.New(db, sqlscript.PostgreSQL).Apply(postgresFSScripts); err != nil {
			t.Fatalf("Apply() returned an error: %v", err)
		}

		var balance float64
		if err := db.QueryRow(`SELECT balance FROM accounts WHERE owner = 'alice'`).Scan(&balance); err != nil {
			t.Fatalf("query balance: %v", err)
		}

		if got, want := balance, 100.0; got != want {
			t.Errorf("balance: got %v, want %v", got, want)
		}
	})

	t.Run("Replay", func(t *testing.T) {
		db := suite.dbHelper(t)

		scripttest.Replay(t, db, sqlscript.PostgreSQL,
			"testdata/pg/scripts/001_schema.sql",
			"testdata/pg/scripts/002_functions.sql",
		)

		var id int
		if err := db.QueryRow(`INSERT INTO accounts (owner) VALUES ('carol') RETURNING id`).Scan(&id); err != nil {
			t.Fatalf("insert account: %v", err)
		}

		var balance float64
		if err := db.QueryRow(`SELECT deposit($1, 5)`, id).Scan(&balance); err != nil {
			t.Fatalf("deposit: %v", err)
		}

		if got, want := balance, 5.0; got != want {
			t.Errorf("balance: got %v, want %v", got, want)
		}
	})
}
