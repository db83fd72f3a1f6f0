// Package store persists pipeline artifacts: per-partition feature tables (parquet), the CSV
// interchange tables, and opaque blobs such as checkpoints. Everything is written through an
// ObjectStore so the same code runs against a local directory or an S3 bucket.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by ObjectStore.Get when the key does not exist.
var ErrNotFound = errors.New("store: object not found")

// ObjectStore is a flat key/value blob store. Keys use forward slashes.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}
