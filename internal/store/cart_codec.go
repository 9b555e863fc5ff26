package store

import (
	"context"
	"encoding/json"
	"errors"

	"freshcart/internal/cart"
)

// The persisted cart layout is a JSON array of line objects
// {id, name, price, image, quantity, farmer, unit}, which is exactly the
// cart.Item wire shape, so encoding is a straight marshal.

func EncodeCart(items []cart.Item) ([]byte, error) {
	if items == nil {
		items = []cart.Item{}
	}
	return json.Marshal(items)
}

func DecodeCart(data []byte) ([]cart.Item, error) {
	var items []cart.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SaveCart persists the current cart lines under the cart key.
func SaveCart(ctx context.Context, snapshots Snapshots, items []cart.Item) error {
	data, err := EncodeCart(items)
	if err != nil {
		return err
	}
	return snapshots.Save(ctx, KeyCart, data)
}

// LoadCart restores persisted cart lines; a missing snapshot is an empty
// cart, not an error.
func LoadCart(ctx context.Context, snapshots Snapshots) ([]cart.Item, error) {
	data, err := snapshots.Load(ctx, KeyCart)
	if errors.Is(err, ErrSnapshotNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return DecodeCart(data)
}
