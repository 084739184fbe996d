// Package storage defines the storage adapter interfaces and resolves
// location URIs (local paths, file://, http(s)://, gs://) to the adapter serving them.
package storage

import (
	"context"
	"io"
)

// StorageExecutor defines generic object storage operations.
type StorageExecutor interface {
	// Upload stores data under bucket/objectName. The object becomes visible only
	// once the whole stream has been written.
	Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error
	// Download opens bucket/objectName for reading. The caller must close the returned reader.
	Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error)
	// DeleteObject removes bucket/objectName.
	DeleteObject(ctx context.Context, bucket, objectName string) error
}

// StorageConnection is a named, closable StorageExecutor.
type StorageConnection interface {
	StorageExecutor

	// Type returns the adapter type ("local", "http", "gcs").
	Type() string
	// Name returns the configured connection name.
	Name() string
	// Close releases the connection's resources.
	Close() error
}

// Schemes reports which URI schemes a connection serves.
type Schemes interface {
	Schemes() []string
}
