package repository

import (
	"context"

	"github.com/yukesh4349/Dreampix/internal/model"
)

// ImageRepository provides access to the gallery and history image collections.
type ImageRepository interface {
	// Put upserts an image into the collection, keyed by ID. Re-writing the
	// same ID overwrites the row, so retries are idempotent.
	Put(ctx context.Context, col model.Collection, img *model.GeneratedImage) error

	// Delete removes an image by ID. Deleting an absent ID is a no-op.
	Delete(ctx context.Context, col model.Collection, id string) error

	// DeleteOwned removes a gallery image by ID only when it belongs to
	// ownerID. An absent ID, or one owned by someone else, is a no-op.
	DeleteOwned(ctx context.Context, ownerID, id string) error

	// ListByOwner returns gallery images belonging to one owner,
	// newest first, served by the owner index.
	ListByOwner(ctx context.Context, ownerID string) ([]model.GeneratedImage, error)

	// ListHistory returns every history image, newest first.
	ListHistory(ctx context.Context) ([]model.GeneratedImage, error)

	// ClearHistory removes all history rows.
	ClearHistory(ctx context.Context) error
}
