package sqlscript

import (
	"fmt"

	"github.com/ladzaretti/sqlscript/types"
)

type SQLiteDialect struct{}

var _ types.Dialect = SQLiteDialect{}

func (d SQLiteDialect) CreateVersionTableQuery() string {
	return `
		CREATE TABLE
			IF NOT EXISTS schema_version (
				id INTEGER PRIMARY KEY CHECK (id = 0),
				version INTEGER,
				checksum TEXT NOT NULL
			);
		`
}

func (d SQLiteDialect) CurrentVersionQuery() string {
	return `SELECT id, version, checksum FROM schema_version;`
}

func (d SQLiteDialect) SaveVersionQuery() string {
	return `
		INSERT INTO schema_version (id, version, checksum)
		VALUES (0, ?, ?)
		ON CONFLICT(id)
		DO UPDATE SET version = EXCLUDED.version, checksum = EXCLUDED.checksum;
	`
}

type PostgreSQLDialect struct{}

var _ types.Dialect = PostgreSQLDialect{}

func (d PostgreSQLDialect) CreateVersionTableQuery() string {
	return `
		CREATE TABLE
			IF NOT EXISTS schema_version (
				id INTEGER PRIMARY KEY CHECK (id = 0),
				version INTEGER,
				checksum TEXT NOT NULL
			);
	`
}

func (d PostgreSQLDialect) CurrentVersionQuery() string {
	return `SELECT id, version, checksum FROM schema_version;`
}

func (d PostgreSQLDialect) SaveVersionQuery() string {
	return `
		INSERT INTO schema_version (id, version, checksum)
		VALUES (0, $1, $2)
		ON CONFLICT (id)
		DO UPDATE SET version = EXCLUDED.version, checksum = EXCLUDED.checksum;
	`
}

// MySQLDialect covers both MySQL and MariaDB.
type MySQLDialect struct{}

var _ types.Dialect = MySQLDialect{}

func (d MySQLDialect) CreateVersionTableQuery() string {
	return `
		CREATE TABLE
			IF NOT EXISTS schema_version (
				id INTEGER PRIMARY KEY CHECK (id = 0),
				version INTEGER,
				checksum VARCHAR(64) NOT NULL
			);
	`
}

func (d MySQLDialect) CurrentVersionQuery() string {
	return `SELECT id, version, checksum FROM schema_version;`
}

func (d MySQLDialect) SaveVersionQuery() string {
	return `
		INSERT INTO schema_version (id, version, checksum)
		VALUES (0, ?, ?)
		ON DUPLICATE KEY
		UPDATE version = VALUES(version), checksum = VALUES(checksum);
	`
}

// DialectFor returns the schema version dialect for the given database type.
//
// Database types without a built-in dialect return [ErrUnsupportedDialect];
// use [WithDialect] to replay scripts against them.
func DialectFor(dbType DatabaseType) (types.Dialect, error) {
	switch dbType {
	case SQLite:
		return SQLiteDialect{}, nil
	case PostgreSQL:
		return PostgreSQLDialect{}, nil
	case MySQL, MariaDB:
		return MySQLDialect{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDialect, dbType)
	}
}
