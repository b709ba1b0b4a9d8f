// Package metadata is the client's durable key/value storage. It survives
// restarts and is scoped to one local database file.
package metadata

import (
	"context"
)

// Repository stores opaque values by key. Get returns (nil, nil) for a
// missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
