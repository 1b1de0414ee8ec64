//
// This is free and unencumbered software released into the public domain.
//
// Anyone is free to copy, modify, publish, use, compile, sell, or
// distribute this software, either in source code form or as a compiled
// binary, for any purpose, commercial or non-commercial, and by any
// means.
//
// In jurisdictions that recognize copyright laws, the author or authors
// of this software dedicate any and all copyright interest in the
// software to the public domain. We make this dedication for the benefit
// of the public at large and to the detriment of our heirs and
// successors. We intend this dedication to be an overt act of
// relinquishment in perpetuity of all present and future rights to this
// software under copyright law.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
// EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
// MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
// IN NO EVENT SHALL THE AUTHORS BE LIABLE FOR ANY CLAIM, DAMAGES OR
// OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE,
// ARISING FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR
// OTHER DEALINGS IN THE SOFTWARE.
//
// For more information, please refer to <https://unlicense.org/>

package sqlscript

import (
	"context"
	//nolint:gosec
	// SHA-1 is used here for change detection,
	// not for cryptographic security.
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/ladzaretti/sqlscript/internal/schema"
	"github.com/ladzaretti/sqlscript/types"
)

var (
	ErrNoSchemaVersion  = schema.ErrNoSchemaVersion
	ErrChecksumMismatch = errors.New("schema integrity check failed")
	ErrVersionAhead     = errors.New("database version exceeds available scripts")
)

// Signer generates a unique identifier for a given input string,
// used to sign scripts.
//
// It is used for schema comparison and validation.
type Signer func(s string) string

// Filter reports whether the script with the given 1-based version
// number should be applied.
type Filter func(version int) bool

// Replayer splits SQL scripts into statements and executes them against
// a database, recording the replayed version in a schema version table.
type Replayer struct {
	db               *sql.DB
	dbType           DatabaseType
	dialect          types.Dialect
	sign             Signer
	filter           Filter
	useTx            bool
	validateChecksum bool
	reapplyAll       bool
	logger           *zap.Logger
}

type Opt func(*Replayer)

// New returns a [Replayer] for scripts written for dbType.
//
// The schema version dialect defaults to [DialectFor] dbType.
func New(db *sql.DB, dbType DatabaseType, opts ...Opt) *Replayer {
	r := &Replayer{
		db:               db,
		dbType:           dbType,
		sign:             normalizedSha1,
		filter:           func(_ int) bool { return true },
		useTx:            true,
		validateChecksum: true,
		logger:           zap.NewNop(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// WithDialect sets the schema version dialect, overriding the
// one derived from the database type.
func WithDialect(d types.Dialect) Opt {
	return func(r *Replayer) {
		r.dialect = d
	}
}

func WithCustomSigning(fn Signer) Opt {
	return func(r *Replayer) {
		r.sign = fn
	}
}

// WithTransaction controls whether scripts are replayed in a single transaction.
func WithTransaction(enabled bool) Opt {
	return func(r *Replayer) {
		r.useTx = enabled
	}
}

func WithChecksumValidation(enabled bool) Opt {
	return func(r *Replayer) {
		r.validateChecksum = enabled
	}
}

// WithFilter sets a filter for the scripts to apply.
//
// Versions are contiguous, so replaying stops at the first
// script rejected by the filter.
func WithFilter(fn Filter) Opt {
	return func(r *Replayer) {
		r.filter = fn
	}
}

// WithReapplyAll replays every script regardless of the current version.
func WithReapplyAll(enabled bool) Opt {
	return func(r *Replayer) {
		r.reapplyAll = enabled
	}
}

func WithLogger(l *zap.Logger) Opt {
	return func(r *Replayer) {
		if l != nil {
			r.logger = l
		}
	}
}

// ApplyError is returned when a statement of a script fails to execute.
type ApplyError struct {
	Index     int
	Script    string
	Statement string
	Err       error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("apply script %d (%s): %v", e.Index+1, e.Script, e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}

func errf(format string, a ...any) error {
	//nolint:err113 // all package errors essentially mean replay failure.
	return fmt.Errorf("replay error: "+format, a...)
}

// Apply is [Replayer.ApplyContext] with [context.Background].
func (r *Replayer) Apply(lister ScriptLister) (int, error) {
	return r.ApplyContext(context.Background(), lister)
}

// ApplyContext replays the scripts listed by lister that were not
// replayed yet and returns the number of scripts applied.
//
// Each script is split with [Split] for the replayer's database type and
// its statements are executed in order. When transactions are enabled a
// failure rolls back every script applied by this call.
func (r *Replayer) ApplyContext(ctx context.Context, lister ScriptLister) (int, error) {
	scripts, err := lister.List()
	if err != nil {
		return 0, errf("list scripts: %w", err)
	}

	dialect, err := r.versionDialect()
	if err != nil {
		return 0, errf("%w", err)
	}

	if err := schema.CreateTable(ctx, r.db, dialect); err != nil {
		return 0, errf("create schema version table: %w", err)
	}

	current, err := r.currentVersion(ctx, dialect)
	if err != nil {
		return 0, errf("load version: %w", err)
	}

	if current.Version > len(scripts) {
		return 0, errf("%w: version %d, scripts %d", ErrVersionAhead, current.Version, len(scripts))
	}

	checksums := r.checksumHistory(scripts)
	if r.validateChecksum && current.Version > 0 && current.Checksum != checksums[current.Version] {
		return 0, errf("%w: expected checksum %q, got %q", ErrChecksumMismatch, checksums[current.Version], current.Checksum)
	}

	from := current.Version
	if r.reapplyAll {
		from = 0
	}

	if from == len(scripts) {
		r.logger.Debug("schema up to date", zap.Int("version", current.Version))
		return 0, nil
	}

	if !r.useTx {
		n, err := r.applyScripts(ctx, r.db, dialect, from, scripts, checksums)
		if err != nil {
			return n, errf("non-transactional replay: %w", err)
		}

		return n, nil
	}

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, errf("start transaction: %w", err)
	}

	n, err := r.applyScripts(ctx, tx, dialect, from, scripts, checksums)
	if err != nil {
		if err2 := tx.Rollback(); err2 != nil {
			return 0, errf("rollback failed: %w", errors.Join(err2, err))
		}

		r.logger.Warn("replay rolled back", zap.Error(err))

		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, errf("transaction commit: %w", err)
	}

	return n, nil
}

// CurrentSchemaVersion returns the replayed schema version, or
// [ErrNoSchemaVersion] if nothing was replayed yet.
func (r *Replayer) CurrentSchemaVersion(ctx context.Context) (*types.SchemaVersion, error) {
	dialect, err := r.versionDialect()
	if err != nil {
		return nil, err
	}

	return schema.CurrentVersion(ctx, r.db, dialect)
}

func (r *Replayer) versionDialect() (types.Dialect, error) {
	if r.dialect != nil {
		return r.dialect, nil
	}

	return DialectFor(r.dbType)
}

func (r *Replayer) currentVersion(ctx context.Context, dialect types.Dialect) (types.SchemaVersion, error) {
	v, err := schema.CurrentVersion(ctx, r.db, dialect)
	if err != nil {
		if errors.Is(err, ErrNoSchemaVersion) {
			return types.SchemaVersion{}, nil
		}

		return types.SchemaVersion{}, err
	}

	return *v, nil
}

func (r *Replayer) applyScripts(ctx context.Context, db types.LimitedDB, dialect types.Dialect, from int, scripts []Script, checksums []string) (int, error) {
	applied := 0

	for i := from; i < len(scripts); i++ {
		if !r.filter(i + 1) {
			r.logger.Info("script filtered out, stopping", zap.String("script", scripts[i].Name), zap.Int("version", i+1))
			break
		}

		if err := r.applyScript(ctx, db, i, scripts[i]); err != nil {
			return applied, err
		}

		ver := types.SchemaVersion{Version: i + 1, Checksum: checksums[i+1]}
		if err := schema.SaveVersion(ctx, db, dialect, ver); err != nil {
			return applied, &ApplyError{Index: i, Script: scripts[i].Name, Err: err}
		}

		applied++
	}

	return applied, nil
}

func (r *Replayer) applyScript(ctx context.Context, db types.LimitedDB, index int, s Script) error {
	statements, err := splitScript(strings.NewReader(s.Body), s.Name, r.dbType)
	if err != nil {
		return &ApplyError{Index: index, Script: s.Name, Err: err}
	}

	log := r.logger.With(zap.String("script", s.Name), zap.Int("version", index+1))

	for j, stmt := range statements {
		if strings.TrimSpace(stmt) == "" {
			continue
		}

		log.Debug("executing statement", zap.Int("statement", j+1))

		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return &ApplyError{Index: index, Script: s.Name, Statement: stmt, Err: err}
		}
	}

	log.Info("script applied", zap.Int("statements", len(statements)))

	return nil
}

func (r *Replayer) checksumHistory(scripts []Script) []string {
	history := make([]string, len(scripts)+1)

	history[0] = "" // version 0 has no scripts applied

	for i := 1; i <= len(scripts); i++ {
		history[i] = r.sign(history[i-1] + r.sign(scripts[i-1].Body))
	}

	return history
}

func normalizedSha1(s string) string {
	normalized := normalize(s)
	//nolint:gosec
	// SHA-1 is used here for change detection,
	// not for cryptographic security.
	hash := sha1.Sum([]byte(normalized))

	return hex.EncodeToString(hash[:])
}

func normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1 // Remove whitespace
		}

		return r
	}, s)
}
