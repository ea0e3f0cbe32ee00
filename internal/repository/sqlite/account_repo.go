package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/yukesh4349/Dreampix/internal/errs"
	"github.com/yukesh4349/Dreampix/internal/model"
)

// AccountRepo implements AccountRepository on embedded SQLite.
type AccountRepo struct{ db *DB }

// NewAccountRepo constructs an account repository.
func NewAccountRepo(db *DB) *AccountRepo { return &AccountRepo{db: db} }

// Create inserts a new account row keyed by email.
func (r *AccountRepo) Create(ctx context.Context, a *model.Account) error {
	const q = `
INSERT INTO accounts (email, id, cred_hash, cred_salt, display_name, created_at)
VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.SQL.ExecContext(ctx, q,
		a.Email, a.ID.String(), a.CredHash, a.CredSalt, a.DisplayName, a.CreatedAt.UnixMilli())
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// GetByEmail selects an account by its email key.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	const q = `
SELECT email, id, cred_hash, cred_salt, display_name, created_at
FROM accounts WHERE email = ?`
	row := r.db.SQL.QueryRowContext(ctx, q, email)

	var (
		a         model.Account
		id        string
		createdAt int64
	)
	if err := row.Scan(&a.Email, &id, &a.CredHash, &a.CredSalt, &a.DisplayName, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	uid, err := uuid.FromString(id)
	if err != nil {
		return nil, err
	}
	a.ID = uid
	a.CreatedAt = time.UnixMilli(createdAt)
	return &a, nil
}
