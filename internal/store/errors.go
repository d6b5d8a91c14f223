package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/erazemk/dresi/internal/apperr"
)

// translate maps a database error onto the persistence error taxonomy.
// Errors that already carry a code are returned unchanged.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}

	var coded *apperr.Error
	if errors.As(err, &coded) {
		return err
	}

	if errors.Is(err, sql.ErrNoRows) {
		return apperr.New(apperr.CodeNotFound, op, err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.Is(err, sql.ErrConnDone) {
		return apperr.New(apperr.CodeUnavailable, op, err)
	}

	var se *sqlite.Error
	if errors.As(err, &se) {
		return apperr.New(sqliteCode(se.Code()), op, err)
	}

	return apperr.New(apperr.CodeInternal, op, err)
}

// sqliteCode classifies an (extended) SQLite result code.
func sqliteCode(code int) apperr.Code {
	switch code {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return apperr.CodeUnique
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, sqlite3.SQLITE_CONSTRAINT_TRIGGER:
		return apperr.CodeForeignKey
	case sqlite3.SQLITE_CONSTRAINT_CHECK, sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return apperr.CodeMalformed
	}

	switch code & 0xff {
	case sqlite3.SQLITE_CONSTRAINT, sqlite3.SQLITE_MISMATCH, sqlite3.SQLITE_TOOBIG, sqlite3.SQLITE_RANGE:
		return apperr.CodeMalformed
	case sqlite3.SQLITE_READONLY, sqlite3.SQLITE_PERM, sqlite3.SQLITE_AUTH:
		return apperr.CodePermission
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_IOERR, sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_FULL, sqlite3.SQLITE_PROTOCOL:
		return apperr.CodeUnavailable
	case sqlite3.SQLITE_NOTFOUND:
		return apperr.CodeNotFound
	}
	return apperr.CodeInternal
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// catalogTables lists the tables with an active/archived status column.
var catalogTables = map[string]bool{
	"products":  true,
	"namesets":  true,
	"badges":    true,
	"teams":     true,
	"kit_types": true,
}

// setStatus moves a catalog row between active and archived.
func setStatus(ctx context.Context, q queryer, table string, id int64, status string) error {
	if !catalogTables[table] {
		return apperr.Errorf(apperr.CodeInternal, "set status", "unknown table %q", table)
	}
	result, err := q.ExecContext(ctx, `UPDATE `+table+` SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// deleteRow permanently removes a row. A missing row is not an error.
func deleteRow(ctx context.Context, q queryer, table string, id int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	return err
}

// updateColumns applies a partial update built from column assignments.
func updateColumns(ctx context.Context, q queryer, table string, id int64, sets []string, args []any) error {
	if len(sets) == 0 {
		var exists int
		return q.QueryRowContext(ctx, `SELECT 1 FROM `+table+` WHERE id = ?`, id).Scan(&exists)
	}
	query := `UPDATE ` + table + ` SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	result, err := q.ExecContext(ctx, query, append(args, id)...)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
