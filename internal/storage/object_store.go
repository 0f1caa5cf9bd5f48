package storage

import (
	"context"
	"io"
	"strings"
)

// ObjectStore provides access to object storage buckets
type ObjectStore interface {
	Put(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, bucket, key string) error
	// List returns the keys directly under prefix
	List(ctx context.Context, bucket, prefix string) ([]string, error)
	PublicURL(bucket, key string) string
	Ping(ctx context.Context) error
}

func publicURL(base, bucket, key string) string {
	return strings.TrimRight(base, "/") + "/" + bucket + "/" + strings.TrimLeft(key, "/")
}
