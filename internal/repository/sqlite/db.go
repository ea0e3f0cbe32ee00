// Package sqlite contains embedded-SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/yukesh4349/Dreampix/internal/errs"
	"github.com/yukesh4349/Dreampix/internal/migrate"
)

// DB wraps the sql.DB handle used by repositories.
type DB struct {
	SQL *sql.DB
}

// Open opens (creating if needed) the database file at path and brings its
// schema up to the current version. Safe to call repeatedly: a database
// already at the expected version is a no-op open.
//
// An unopenable file surfaces errs.ErrUnavailable; a failed migration
// step surfaces errs.ErrMigrationFailed.
func Open(ctx context.Context, path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrUnavailable, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", errs.ErrUnavailable, err)
	}

	if err := migrate.Up(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", errs.ErrMigrationFailed, err)
	}
	return &DB{SQL: db}, nil
}

// Close closes the underlying database handle.
func (db *DB) Close() error { return db.SQL.Close() }

// isUniqueViolation reports whether the error is a primary-key or unique
// constraint violation.
func isUniqueViolation(err error) bool {
	var se *sqlitedrv.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY ||
		se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
