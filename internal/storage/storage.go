package storage

import (
	"context"
	"errors"
)

// ErrBlobNotFound indicates no blob exists under the requested key.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore is the attachment backend. Keys are flat, slash-separated
// names chosen by the caller ("contacts/<id>"); backends must treat them
// as opaque.
type BlobStore interface {
	// Put stores data under key, overwriting any previous blob.
	Put(ctx context.Context, key string, data []byte) error

	// Get returns the blob stored under key.
	// Returns ErrBlobNotFound if no blob exists.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes the blob under key.
	// Returns ErrBlobNotFound if no blob exists.
	Delete(ctx context.Context, key string) error

	// List returns the keys that start with prefix, in no particular order.
	List(ctx context.Context, prefix string) ([]string, error)
}
