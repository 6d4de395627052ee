package ports

import (
	"context"
	"io"
)

// ObjectStorage stores export artifacts (S3 compatible or local disk)
type ObjectStorage interface {
	// Put writes body under key and returns its URL
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)

	// Provider names the backend (s3, local)
	Provider() string
}
