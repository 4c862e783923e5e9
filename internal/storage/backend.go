package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Read when the key does not exist.
var ErrNotFound = errors.New("storage: object not found")

// Backend is the object store the blob layer and exporters write through.
type Backend interface {
	Write(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Read(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

var (
	_ Backend = (*FileStore)(nil)
	_ Backend = (*S3Store)(nil)
)
