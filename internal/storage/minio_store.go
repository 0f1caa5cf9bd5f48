package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"skywatch/crewdeck/internal/logging"
)

// MinioStore implements ObjectStore for MinIO/S3 compatible storage.
type MinioStore struct {
	client  *minio.Client
	baseURL string
	buckets []string
}

// NewMinioStore connects to MinIO and ensures every bucket exists.
func NewMinioStore(endpoint, accessKey, secretKey string, useSSL bool, baseURL string, buckets ...string) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, bucket := range buckets {
		exists, err := client.BucketExists(ctx, bucket)
		if err != nil {
			return nil, fmt.Errorf("check bucket %s: %w", bucket, err)
		}
		if !exists {
			if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
				return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
			}
			logging.Info("Created storage bucket", "bucket", bucket)
		}
	}
	if baseURL == "" {
		baseURL = client.EndpointURL().String()
	}
	return &MinioStore{client: client, baseURL: baseURL, buckets: buckets}, nil
}

// Put uploads an object, replacing any previous one under key.
func (m *MinioStore) Put(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

// Delete removes an object.
func (m *MinioStore) Delete(ctx context.Context, bucket, key string) error {
	if err := m.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func (m *MinioStore) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	var keys []string
	for obj := range m.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects: %w", obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

func (m *MinioStore) PublicURL(bucket, key string) string {
	return publicURL(m.baseURL, bucket, key)
}

// Ping checks that the first configured bucket is reachable
func (m *MinioStore) Ping(ctx context.Context) error {
	if len(m.buckets) == 0 {
		return nil
	}
	if _, err := m.client.BucketExists(ctx, m.buckets[0]); err != nil {
		return fmt.Errorf("minio ping: %w", err)
	}
	return nil
}
