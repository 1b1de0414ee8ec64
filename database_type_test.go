package sqlscript_test

import (
	"errors"
	"testing"

	"github.com/ladzaretti/sqlscript"
)

func TestParseDatabaseType(t *testing.T) {
	tests := []struct {
		input string
		want  sqlscript.DatabaseType
	}{
		{"postgresql", sqlscript.PostgreSQL},
		{"PostgreSQL", sqlscript.PostgreSQL},
		{"postgres", sqlscript.PostgreSQL},
		{"pgx", sqlscript.PostgreSQL},
		{" sqlserver ", sqlscript.SQLServer},
		{"mssql", sqlscript.SQLServer},
		{"sqlite3", sqlscript.SQLite},
		{"mariadb", sqlscript.MariaDB},
		{"db2", sqlscript.DB2},
	}

	for _, tt := range tests {
		got, err := sqlscript.ParseDatabaseType(tt.input)
		if err != nil {
			t.Errorf("ParseDatabaseType(%q) returned an error: %v", tt.input, err)
			continue
		}

		if got != tt.want {
			t.Errorf("ParseDatabaseType(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}

	if _, err := sqlscript.ParseDatabaseType("dbase"); !errors.Is(err, sqlscript.ErrUnknownDatabaseType) {
		t.Errorf("ParseDatabaseType(dbase) error = %v, want %v", err, sqlscript.ErrUnknownDatabaseType)
	}
}

func TestDatabaseTypeText(t *testing.T) {
	var got sqlscript.DatabaseType
	if err := got.UnmarshalText([]byte(sqlscript.Oracle.String())); err != nil {
		t.Fatalf("UnmarshalText() returned an error: %v", err)
	}

	if got != sqlscript.Oracle {
		t.Errorf("UnmarshalText() = %s, want %s", got, sqlscript.Oracle)
	}

	if got, want := sqlscript.DatabaseType(42).String(), "DatabaseType(42)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestDialectFor(t *testing.T) {
	for _, dbType := range []sqlscript.DatabaseType{sqlscript.SQLite, sqlscript.PostgreSQL, sqlscript.MySQL, sqlscript.MariaDB} {
		if _, err := sqlscript.DialectFor(dbType); err != nil {
			t.Errorf("DialectFor(%s) returned an error: %v", dbType, err)
		}
	}

	if _, err := sqlscript.DialectFor(sqlscript.Oracle); !errors.Is(err, sqlscript.ErrUnsupportedDialect) {
		t.Errorf("DialectFor(oracle) error = %v, want %v", err, sqlscript.ErrUnsupportedDialect)
	}
}
