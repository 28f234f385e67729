// Package storage persists uploaded product media.
package storage

import (
	"context"
	"io"
)

// Store saves objects under caller-chosen unique keys and hands back the public URL.
type Store interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	// Remove deletes the object behind a URL previously returned by Save. Unknown URLs
	// are ignored.
	Remove(ctx context.Context, url string) error
}
