// Package storage persists uploaded files. Two backends implement
// Provider: Disk, which writes under a local directory served at
// /uploads, and S3, which writes to an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
)

// ErrInvalidKey is returned for keys that are empty, absolute or escape
// the storage root.
var ErrInvalidKey = errors.New("storage: invalid key")

// Provider stores objects by key and reports their public URL.
type Provider interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
	// KeyFromURL maps a URL returned by URL back to its key.
	KeyFromURL(rawURL string) (string, bool)
}
