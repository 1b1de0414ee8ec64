// Command sqlsplit splits SQL scripts into statements, or replays a
// directory of scripts against a database.
//
// Usage:
//
//	sqlsplit split [flags] FILE...
//	sqlsplit apply [flags] DIR
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/ladzaretti/sqlscript"
	"github.com/ladzaretti/sqlscript/internal/config"
	"github.com/ladzaretti/sqlscript/internal/logger"
)

var errUsage = errors.New("usage: sqlsplit split|apply [flags] PATH...")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	cmd := args[0]

	fs := config.NewFlagSet("sqlsplit " + cmd)
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	cfg, err := config.Load(fs)
	if err != nil {
		return err
	}

	lg, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer lg.Sync() //nolint:errcheck

	lg = lg.Named(cmd)

	switch cmd {
	case "split":
		if fs.NArg() == 0 {
			return errUsage
		}

		return split(cfg, fs.Args(), out)
	case "apply":
		if fs.NArg() != 1 {
			return errUsage
		}

		return apply(ctx, cfg, fs.Arg(0), lg)
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}

type splitResult struct {
	File       string   `json:"file"`
	Statements []string `json:"statements"`
}

func split(cfg *config.Config, files []string, out io.Writer) error {
	results := make([]splitResult, 0, len(files))

	for _, f := range files {
		statements, err := sqlscript.SplitFile(f, cfg.DatabaseType)
		if err != nil {
			return err
		}

		results = append(results, splitResult{File: f, Statements: statements})
	}

	if cfg.Format == config.FormatJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		return enc.Encode(results)
	}

	for _, r := range results {
		for _, stmt := range r.Statements {
			if _, err := fmt.Fprintf(out, "%s%s\n\n", strings.TrimSpace(stmt), sqlscript.DelimiterStandard); err != nil {
				return err
			}
		}
	}

	return nil
}

func apply(ctx context.Context, cfg *config.Config, dir string, lg *zap.Logger) error {
	driver, err := driverName(cfg.DatabaseType)
	if err != nil {
		return err
	}

	if cfg.DSN == "" {
		return fmt.Errorf("%w: dsn is required for apply", config.ErrInvalidConfig)
	}

	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	r := sqlscript.New(db, cfg.DatabaseType,
		sqlscript.WithTransaction(!cfg.NoTx),
		sqlscript.WithLogger(lg),
	)

	n, err := r.ApplyContext(ctx, sqlscript.DirScripts(dir))
	if err != nil {
		lg.Error("replay failed", zap.String("dir", dir), zap.Error(err))
		return err
	}

	lg.Info("replay finished", zap.String("dir", dir), zap.Int("applied", n))

	return nil
}

func driverName(t sqlscript.DatabaseType) (string, error) {
	switch t {
	case sqlscript.PostgreSQL:
		return "pgx", nil
	case sqlscript.SQLite:
		return "sqlite", nil
	case sqlscript.MySQL, sqlscript.MariaDB:
		return "mysql", nil
	default:
		return "", fmt.Errorf("%w: no driver for %s", sqlscript.ErrUnsupportedDialect, t)
	}
}
