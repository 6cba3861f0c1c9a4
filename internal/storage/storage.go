// Package storage provides the key-value persistence used for user preferences
// and the wishlist. Every backend stores opaque string values under flat keys.
package storage

import (
	"context"
	"errors"
)

var ErrClosed = errors.New("storage closed")

type KV interface {
	// Get reports ok=false for a missing key; err is reserved for backend failures.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}
