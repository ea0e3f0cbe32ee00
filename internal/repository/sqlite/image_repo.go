package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/yukesh4349/Dreampix/internal/errs"
	"github.com/yukesh4349/Dreampix/internal/model"
)

// ImageRepo implements ImageRepository on embedded SQLite. The gallery and
// history tables carry identical columns; only gallery has the owner index.
type ImageRepo struct{ db *DB }

// NewImageRepo constructs an image repository.
func NewImageRepo(db *DB) *ImageRepo { return &ImageRepo{db: db} }

// table maps a collection to its table name, rejecting anything else so a
// collection value never reaches string interpolation unvalidated.
func table(col model.Collection) (string, error) {
	if !col.Valid() {
		return "", fmt.Errorf("unknown collection %q", col)
	}
	return string(col), nil
}

// Put upserts a single image row keyed by id.
func (r *ImageRepo) Put(ctx context.Context, col model.Collection, img *model.GeneratedImage) error {
	t, err := table(col)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(`
INSERT INTO %s (id, owner_id, prompt, enhanced_prompt, image_data, created_at, is_enhanced, aspect_ratio, is_collage)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    owner_id        = excluded.owner_id,
    prompt          = excluded.prompt,
    enhanced_prompt = excluded.enhanced_prompt,
    image_data      = excluded.image_data,
    created_at      = excluded.created_at,
    is_enhanced     = excluded.is_enhanced,
    aspect_ratio    = excluded.aspect_ratio,
    is_collage      = excluded.is_collage`, t)

	_, err = r.db.SQL.ExecContext(ctx, q,
		img.ID, img.OwnerID, img.Prompt, img.EnhancedPrompt, img.Data,
		img.CreatedAt.UnixMilli(), boolToInt(img.IsEnhanced), string(img.AspectRatio), boolToInt(img.IsCollage))
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrWriteFailed, err)
	}
	return nil
}

// Delete removes an image row by id; absent ids are a no-op.
func (r *ImageRepo) Delete(ctx context.Context, col model.Collection, id string) error {
	t, err := table(col)
	if err != nil {
		return err
	}
	_, err = r.db.SQL.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, t), id)
	return err
}

// DeleteOwned removes a gallery image by id only when ownerID matches;
// anyone else's rows are left untouched.
func (r *ImageRepo) DeleteOwned(ctx context.Context, ownerID, id string) error {
	_, err := r.db.SQL.ExecContext(ctx, `DELETE FROM gallery WHERE id = ? AND owner_id = ?`, id, ownerID)
	return err
}

// ListByOwner returns gallery images for one owner, newest first.
// Served by gallery_owner_idx, so no full-table scan.
func (r *ImageRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.GeneratedImage, error) {
	const q = `
SELECT id, owner_id, prompt, enhanced_prompt, image_data, created_at, is_enhanced, aspect_ratio, is_collage
FROM gallery WHERE owner_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := r.db.SQL.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanImages(rows)
}

// ListHistory returns every history image, newest first.
func (r *ImageRepo) ListHistory(ctx context.Context) ([]model.GeneratedImage, error) {
	const q = `
SELECT id, owner_id, prompt, enhanced_prompt, image_data, created_at, is_enhanced, aspect_ratio, is_collage
FROM history ORDER BY created_at DESC, id DESC`
	rows, err := r.db.SQL.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanImages(rows)
}

// ClearHistory removes all history rows.
func (r *ImageRepo) ClearHistory(ctx context.Context) error {
	_, err := r.db.SQL.ExecContext(ctx, `DELETE FROM history`)
	return err
}

func scanImages(rows *sql.Rows) ([]model.GeneratedImage, error) {
	out := []model.GeneratedImage{}
	for rows.Next() {
		var (
			img        model.GeneratedImage
			createdAt  int64
			isEnhanced int
			isCollage  int
			ratio      string
		)
		if err := rows.Scan(&img.ID, &img.OwnerID, &img.Prompt, &img.EnhancedPrompt, &img.Data,
			&createdAt, &isEnhanced, &ratio, &isCollage); err != nil {
			return nil, err
		}
		img.CreatedAt = time.UnixMilli(createdAt)
		img.IsEnhanced = isEnhanced != 0
		img.IsCollage = isCollage != 0
		img.AspectRatio = model.AspectRatio(ratio)
		out = append(out, img)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
