package store

import (
	"context"
	"database/sql"
	"errors"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshots persists small JSON blobs by key. It is the local-persistence
// analog of the storefront's key/value storage: the cart and wishlist
// snapshots live under the keys below and round-trip losslessly.
type Snapshots interface {
	Save(ctx context.Context, key string, value []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

const (
	KeyCart     = "cart"
	KeyWishlist = "wishlist"
)

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Snapshots {
	return &repository{db: db}
}

func (r *repository) Save(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO snapshots (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = NOW()
	`, key, value)
	return err
}

func (r *repository) Load(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT value FROM snapshots WHERE key = $1
	`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (r *repository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM snapshots WHERE key = $1
	`, key)
	return err
}
