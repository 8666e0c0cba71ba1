// Package storage stores uploaded media bytes. Rows in media_items only
// hold a key into one of these backends.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sahilkadam/truesight/internal/config"
)

// ErrObjectNotFound is returned when the requested key has no stored bytes.
var ErrObjectNotFound = errors.New("stored object not found")

// Blob is the storage interface. Implementations must be safe for
// concurrent use.
type Blob interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// New constructs the configured blob backend.
// Called once at server startup.
func New(cfg config.StorageConfig) (Blob, error) {
	switch cfg.Backend {
	case "local":
		return NewLocal(cfg.Local.Path)
	case "s3":
		return NewMinio(cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage backend %q: must be one of local, s3", cfg.Backend)
	}
}
