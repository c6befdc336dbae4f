// Package store keeps the dashboard's small pieces of client-side state
// (saved session credential, last fetched jobs) behind a key-value
// interface so the backing storage can be swapped.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by KV.Get when the key is absent.
var ErrNotFound = errors.New("key not found")

// KV is a string key-value store.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
