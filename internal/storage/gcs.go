package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStorage implements Storage for Google Cloud Storage
type GCSStorage struct {
	client *gcs.Client
	bucket *gcs.BucketHandle
}

func NewGCSStorage(ctx context.Context, cfg Config) (*GCSStorage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required for GCS")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStorage{
		client: client,
		bucket: client.Bucket(cfg.Bucket),
	}, nil
}

func (s *GCSStorage) Save(ctx context.Context, path string, reader io.Reader, contentType string) error {
	w := s.bucket.Object(path).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, reader); err != nil {
		_ = w.Close()
		return fmt.Errorf("io.Copy to GCS failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer (finalize upload): %w", err)
	}
	return nil
}

func (s *GCSStorage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	r, err := s.bucket.Object(path).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to get GCS object reader for %s: %w", path, err)
	}
	return r, nil
}

func (s *GCSStorage) Delete(ctx context.Context, path string) error {
	err := s.bucket.Object(path).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete GCS object %s: %w", path, err)
	}
	return nil
}

// Close releases the underlying client
func (s *GCSStorage) Close() error {
	return s.client.Close()
}
