package model

import (
	"context"
	"io"
)

// Storage is a flat object store addressed by key.
type Storage interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Download returns ErrNotFound when the key does not exist.
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
}
