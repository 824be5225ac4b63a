// Package storage defines the interface for object storage operations.
// Swap implementations by changing the concrete type injected at startup —
// the MinIO implementation works with any S3-compatible provider (MinIO, AWS S3).
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// Failure classes. Handlers map all three to coarse HTTP statuses, but the
// distinction is kept here so logs retain the real cause.
var (
	// ErrObjectNotFound indicates the requested key does not exist in the bucket.
	ErrObjectNotFound = errors.New("object not found")

	// ErrUnavailable indicates the storage backend could not be reached.
	ErrUnavailable = errors.New("storage unavailable")

	// ErrRejected indicates the backend refused the operation (bad bucket,
	// access denied, quota exceeded).
	ErrRejected = errors.New("storage rejected operation")
)

// ObjectEntry is one item of a listing. Err is set instead of the other
// fields when the listing stream fails mid-drain.
type ObjectEntry struct {
	Key          string
	Size         int64
	LastModified time.Time
	Err          error
}

// Storage is the interface for writing, reading, and enumerating objects.
type Storage interface {
	// Put streams data to the store under the given key. size must be the
	// exact byte count; an existing key is silently overwritten.
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Get returns a stream of the object's bytes. A missing key is reported
	// before the first byte; a failure after that terminates the stream.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// List lazily enumerates all objects under prefix, in no particular
	// order. The caller must drain the channel; an entry with Err set
	// signals a failed or truncated listing and ends the stream.
	List(ctx context.Context, prefix string) <-chan ObjectEntry
}
