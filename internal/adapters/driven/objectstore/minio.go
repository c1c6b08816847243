package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/haulbridge/docpipe/internal/core/ports/driven"
	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Verify interface compliance
var _ driven.ContentStore = (*MinioStore)(nil)

// MinioConfig holds connection settings for the object store.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Region    string
}

// MinioStore implements ContentStore against a MinIO or S3-compatible
// object store. Buckets are created on first use.
type MinioStore struct {
	client *minio.Client
	region string

	mu      sync.Mutex
	ensured map[string]bool
}

// NewMinioStore creates a new MinIO-backed content store.
func NewMinioStore(cfg MinioConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &MinioStore{
		client:  client,
		region:  cfg.Region,
		ensured: map[string]bool{},
	}, nil
}

// Put writes an object into a bucket and returns its storage path.
func (s *MinioStore) Put(ctx context.Context, bucket, object string, data []byte) (string, error) {
	if err := s.ensureBucket(ctx, bucket); err != nil {
		return "", err
	}

	_, err := s.client.PutObject(ctx, bucket, object, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentTypeFor(object)})
	if err != nil {
		return "", fmt.Errorf("put object %s/%s: %w", bucket, object, err)
	}

	return bucket + "/" + object, nil
}

// Remove deletes an object. Removing a missing object is not an error.
func (s *MinioStore) Remove(ctx context.Context, bucket, object string) error {
	err := s.client.RemoveObject(ctx, bucket, object, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("remove object %s/%s: %w", bucket, object, err)
	}
	return nil
}

// Ping checks if the object store is reachable.
func (s *MinioStore) Ping(ctx context.Context) error {
	_, err := s.client.ListBuckets(ctx)
	return err
}

// ensureBucket creates the bucket if it does not exist yet. Results are
// cached so the existence check runs once per bucket per process.
func (s *MinioStore) ensureBucket(ctx context.Context, bucket string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ensured[bucket] {
		return nil
	}

	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return fmt.Errorf("create bucket %s: %w", bucket, err)
		}
	}

	s.ensured[bucket] = true
	return nil
}

func contentTypeFor(object string) string {
	if strings.HasSuffix(strings.ToLower(object), ".pdf") {
		return "application/pdf"
	}
	return "application/octet-stream"
}
