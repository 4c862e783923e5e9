package storage

import (
	"context"
	"fmt"

	"archedit/internal/infra"
)

// Open builds the blob backend selected by cfg.BlobBackend.
func Open(ctx context.Context, cfg *infra.Config) (Backend, error) {
	switch cfg.BlobBackend {
	case infra.BackendS3:
		return NewS3Store(ctx, S3Options{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Prefix:          cfg.S3Prefix,
		})
	case infra.BackendFile, "":
		return NewFileStore(cfg.StoragePath)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.BlobBackend)
	}
}
