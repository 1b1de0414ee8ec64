package sqlscript

import (
	"errors"
	"fmt"
	"strings"
)

// DatabaseType identifies the database a script is written for.
//
// Only [PostgreSQL] changes how scripts are split; all other
// types share the default behavior.
type DatabaseType int

const (
	Unknown DatabaseType = iota
	DB2
	H2
	MariaDB
	MySQL
	Oracle
	PostgreSQL
	SQLServer
	SQLite
)

var (
	ErrUnknownDatabaseType = errors.New("unknown database type")
	ErrUnsupportedDialect  = errors.New("unsupported dialect")
)

var databaseTypeNames = map[DatabaseType]string{
	Unknown:    "unknown",
	DB2:        "db2",
	H2:         "h2",
	MariaDB:    "mariadb",
	MySQL:      "mysql",
	Oracle:     "oracle",
	PostgreSQL: "postgresql",
	SQLServer:  "sqlserver",
	SQLite:     "sqlite",
}

var databaseTypeAliases = map[string]DatabaseType{
	"postgres": PostgreSQL,
	"pgx":      PostgreSQL,
	"mssql":    SQLServer,
	"sqlite3":  SQLite,
}

func (t DatabaseType) String() string {
	if name, ok := databaseTypeNames[t]; ok {
		return name
	}

	return fmt.Sprintf("DatabaseType(%d)", int(t))
}

// ParseDatabaseType returns the [DatabaseType] for the given name.
// Matching is case-insensitive and accepts a few common driver aliases.
func ParseDatabaseType(s string) (DatabaseType, error) {
	name := strings.ToLower(strings.TrimSpace(s))

	for t, n := range databaseTypeNames {
		if n == name {
			return t, nil
		}
	}

	if t, ok := databaseTypeAliases[name]; ok {
		return t, nil
	}

	return Unknown, fmt.Errorf("%w: %q", ErrUnknownDatabaseType, s)
}

func (t DatabaseType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *DatabaseType) UnmarshalText(text []byte) error {
	parsed, err := ParseDatabaseType(string(text))
	if err != nil {
		return err
	}

	*t = parsed

	return nil
}
