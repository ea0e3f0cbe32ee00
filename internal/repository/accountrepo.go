// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/yukesh4349/Dreampix/internal/model"
)

// AccountRepository provides access to registered accounts keyed by email.
type AccountRepository interface {
	// Create inserts a new account. Returns errs.ErrAlreadyExists if the
	// email is already registered; the store is left unchanged in that case.
	Create(ctx context.Context, a *model.Account) error
	// GetByEmail loads an account by its email key.
	// Returns errs.ErrNotFound if no account has that email.
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
}
