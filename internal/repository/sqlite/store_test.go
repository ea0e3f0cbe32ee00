package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/yukesh4349/Dreampix/internal/errs"
	"github.com/yukesh4349/Dreampix/internal/model"
)

func openTestDB(t *testing.T) (*DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dreampix.db")
	db, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, path
}

func newImage(id, owner string, at time.Time) *model.GeneratedImage {
	return &model.GeneratedImage{
		ID:          id,
		OwnerID:     owner,
		Prompt:      "a cat",
		Data:        []byte{0x89, 0x50, 0x4e, 0x47},
		CreatedAt:   at,
		AspectRatio: model.AspectSquare,
	}
}

func TestOpen_MigratesAndReopens(t *testing.T) {
	db, path := openTestDB(t)

	ctx := context.Background()
	accounts := NewAccountRepo(db)
	a := &model.Account{
		ID:        uuid.Must(uuid.NewV4()),
		Email:     "persist@y.com",
		CredHash:  []byte{1, 2, 3},
		CredSalt:  []byte{4, 5, 6},
		CreatedAt: time.Now(),
	}
	require.NoError(t, accounts.Create(ctx, a))
	require.NoError(t, db.Close())

	// reopening an already-migrated database is a no-op open
	db2, err := Open(ctx, path)
	require.NoError(t, err)
	defer db2.Close()

	got, err := NewAccountRepo(db2).GetByEmail(ctx, "persist@y.com")
	require.NoError(t, err)
	require.Equal(t, a.ID, got.ID)
	require.Equal(t, a.CredHash, got.CredHash)
}

func TestOpen_UnopenablePath(t *testing.T) {
	// a directory is not an openable database file
	_, err := Open(context.Background(), t.TempDir())
	require.ErrorIs(t, err, errs.ErrUnavailable)
}

func TestOpen_MigrationFailure(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "broken.db")

	// seed a version table goose cannot read
	raw, err := sql.Open("sqlite", "file:"+path)
	require.NoError(t, err)
	_, err = raw.ExecContext(ctx, `CREATE TABLE goose_db_version (bogus TEXT)`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	_, err = Open(ctx, path)
	require.ErrorIs(t, err, errs.ErrMigrationFailed)
}

func TestAccountRepo_DuplicateEmail(t *testing.T) {
	db, _ := openTestDB(t)
	ctx := context.Background()
	r := NewAccountRepo(db)

	mk := func() *model.Account {
		return &model.Account{
			ID:        uuid.Must(uuid.NewV4()),
			Email:     "dup@y.com",
			CredHash:  []byte{1},
			CredSalt:  []byte{2},
			CreatedAt: time.Now(),
		}
	}
	require.NoError(t, r.Create(ctx, mk()))
	require.ErrorIs(t, r.Create(ctx, mk()), errs.ErrAlreadyExists)

	// email key is case-sensitive: a different casing is a different account
	other := mk()
	other.Email = "DUP@y.com"
	require.NoError(t, r.Create(ctx, other))
}

func TestAccountRepo_GetByEmail_NotFound(t *testing.T) {
	db, _ := openTestDB(t)
	_, err := NewAccountRepo(db).GetByEmail(context.Background(), "nobody@y.com")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestImageRepo_PutIsIdempotentUpsert(t *testing.T) {
	db, _ := openTestDB(t)
	ctx := context.Background()
	r := NewImageRepo(db)

	img := newImage("100-orig-0", "owner-1", time.UnixMilli(100))
	require.NoError(t, r.Put(ctx, model.Gallery, img))
	require.NoError(t, r.Put(ctx, model.Gallery, img))

	got, err := r.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, img.ID, got[0].ID)
	require.Equal(t, img.Data, got[0].Data)
}

func TestImageRepo_RoundTripFields(t *testing.T) {
	db, _ := openTestDB(t)
	ctx := context.Background()
	r := NewImageRepo(db)

	img := &model.GeneratedImage{
		ID:             "200-collage-enh",
		OwnerID:        "owner-2",
		Prompt:         "a majestic cat",
		EnhancedPrompt: "a majestic cat, volumetric lighting",
		Data:           []byte("raster"),
		CreatedAt:      time.UnixMilli(200),
		IsEnhanced:     true,
		AspectRatio:    model.AspectSquare,
		IsCollage:      true,
	}
	require.NoError(t, r.Put(ctx, model.Gallery, img))

	got, err := r.ListByOwner(ctx, "owner-2")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, *img, got[0])
}

func TestImageRepo_ListByOwner_FilterAndOrder(t *testing.T) {
	db, _ := openTestDB(t)
	ctx := context.Background()
	r := NewImageRepo(db)

	require.NoError(t, r.Put(ctx, model.Gallery, newImage("1-orig-0", "alice", time.UnixMilli(1000))))
	require.NoError(t, r.Put(ctx, model.Gallery, newImage("3-orig-0", "alice", time.UnixMilli(3000))))
	require.NoError(t, r.Put(ctx, model.Gallery, newImage("2-orig-0", "alice", time.UnixMilli(2000))))
	require.NoError(t, r.Put(ctx, model.Gallery, newImage("9-orig-0", "bob", time.UnixMilli(9000))))

	got, err := r.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, []string{"3-orig-0", "2-orig-0", "1-orig-0"},
		[]string{got[0].ID, got[1].ID, got[2].ID})

	none, err := r.ListByOwner(ctx, "carol")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestImageRepo_HistoryListAndClear(t *testing.T) {
	db, _ := openTestDB(t)
	ctx := context.Background()
	r := NewImageRepo(db)

	require.NoError(t, r.Put(ctx, model.History, newImage("1-orig-0", "", time.UnixMilli(1000))))
	require.NoError(t, r.Put(ctx, model.History, newImage("2-orig-0", "alice", time.UnixMilli(2000))))
	require.NoError(t, r.Put(ctx, model.Gallery, newImage("2-orig-0", "alice", time.UnixMilli(2000))))

	got, err := r.ListHistory(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "2-orig-0", got[0].ID) // newest first

	require.NoError(t, r.ClearHistory(ctx))
	got, err = r.ListHistory(ctx)
	require.NoError(t, err)
	require.Empty(t, got)

	// clearing history leaves the gallery alone
	gallery, err := r.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, gallery, 1)
}

func TestImageRepo_Delete_Idempotent(t *testing.T) {
	db, _ := openTestDB(t)
	ctx := context.Background()
	r := NewImageRepo(db)

	require.NoError(t, r.Put(ctx, model.Gallery, newImage("1-orig-0", "alice", time.UnixMilli(1000))))
	require.NoError(t, r.Delete(ctx, model.Gallery, "1-orig-0"))
	require.NoError(t, r.Delete(ctx, model.Gallery, "1-orig-0")) // absent: no-op
	require.NoError(t, r.Delete(ctx, model.Gallery, "never-existed"))

	got, err := r.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestImageRepo_DeleteOwned_OwnerScoped(t *testing.T) {
	db, _ := openTestDB(t)
	ctx := context.Background()
	r := NewImageRepo(db)

	require.NoError(t, r.Put(ctx, model.Gallery, newImage("1-orig-0", "alice", time.UnixMilli(1000))))

	// someone else's delete leaves the row in place
	require.NoError(t, r.DeleteOwned(ctx, "mallory", "1-orig-0"))
	got, err := r.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, got, 1)

	require.NoError(t, r.DeleteOwned(ctx, "alice", "1-orig-0"))
	got, err = r.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Empty(t, got)

	// absent id: no-op
	require.NoError(t, r.DeleteOwned(ctx, "alice", "1-orig-0"))
}

func TestImageRepo_UnknownCollection(t *testing.T) {
	db, _ := openTestDB(t)
	ctx := context.Background()
	r := NewImageRepo(db)

	err := r.Put(ctx, model.Collection("accounts"), newImage("1", "", time.Now()))
	require.Error(t, err)
	require.Error(t, r.Delete(ctx, model.Collection("bogus"), "1"))
}
