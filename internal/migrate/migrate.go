// Package migrate applies embedded SQL migrations on startup.
package migrate

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"

	"github.com/yukesh4349/Dreampix/migrations"
)

// Up runs all pending migrations from the embedded filesystem against db.
// Migration is all-or-nothing: goose stops at the first failing step and
// the caller must treat the database as unusable.
func Up(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}
