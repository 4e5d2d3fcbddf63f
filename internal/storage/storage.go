package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrObjectNotFound возвращается Get, если объекта нет
var ErrObjectNotFound = errors.New("storage: object not found")

// Storage - хранилище блобов (фото поисков, логотипы компаний)
type Storage interface {
	// Save stores a blob at the given path, overwriting any previous one
	Save(ctx context.Context, path string, reader io.Reader, contentType string) error

	// Get opens a blob; ErrObjectNotFound if it does not exist
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a blob; deleting a missing blob is not an error
	Delete(ctx context.Context, path string) error
}

// Config holds storage configuration
type Config struct {
	Type            string // local, s3, cloudflare_r2, gcs
	BasePath        string // For local storage
	Bucket          string // For S3/R2/GCS
	Region          string // For S3
	AccessKey       string // For S3/R2
	SecretKey       string // For S3/R2
	Endpoint        string // For R2 or custom S3
	UseSSL          bool   // For S3/R2
	CredentialsFile string // For GCS
}

// NewStorage creates a storage backend based on configuration
func NewStorage(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalStorage(cfg)
	case "s3":
		return NewS3Storage(cfg)
	case "cloudflare_r2", "r2":
		return NewCloudflareR2Storage(cfg)
	case "gcs":
		return NewGCSStorage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// ReadAll читает блоб целиком
func ReadAll(ctx context.Context, s Storage, path string) ([]byte, error) {
	rc, err := s.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
