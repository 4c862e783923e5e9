// Package blob stores image bytes by content hash so history steps and
// working state can share references instead of copying pixels.
package blob

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"archedit/internal/domain"
	"archedit/internal/storage"
)

// Store is a content-addressed layer over a storage backend.
type Store struct {
	backend storage.Backend
}

func NewStore(backend storage.Backend) *Store {
	return &Store{backend: backend}
}

// Put stores data and returns its reference. Storing identical bytes twice
// yields equal refs and a single object.
func (s *Store) Put(ctx context.Context, img domain.EncodedImage) (domain.BlobRef, error) {
	if img.Empty() {
		return domain.BlobRef{}, errors.New("blob: empty image")
	}
	sum := sha256.Sum256(img.Data)
	ref := domain.BlobRef{
		Key:  hex.EncodeToString(sum[:]),
		Size: int64(len(img.Data)),
		MIME: img.MIME,
	}
	path := objectPath(ref.Key)
	exists, err := s.backend.Exists(ctx, path)
	if err != nil {
		return domain.BlobRef{}, fmt.Errorf("blob: stat %s: %w", ref.Key, err)
	}
	if !exists {
		if _, err := s.backend.Write(ctx, path, img.Data, img.MIME); err != nil {
			return domain.BlobRef{}, fmt.Errorf("blob: write %s: %w", ref.Key, err)
		}
	}
	return ref, nil
}

// Get loads the bytes behind ref.
func (s *Store) Get(ctx context.Context, ref domain.BlobRef) (domain.EncodedImage, error) {
	if ref.IsZero() {
		return domain.EncodedImage{}, domain.NotFound(domain.CodeImageRequired, "no image stored")
	}
	data, err := s.backend.Read(ctx, objectPath(ref.Key))
	if errors.Is(err, storage.ErrNotFound) {
		return domain.EncodedImage{}, domain.NotFound(domain.CodeImageRequired, fmt.Sprintf("blob %s not found", ref.Key))
	}
	if err != nil {
		return domain.EncodedImage{}, fmt.Errorf("blob: read %s: %w", ref.Key, err)
	}
	return domain.EncodedImage{MIME: ref.MIME, Data: data}, nil
}

// Delete drops the bytes behind ref. Callers own lifetime; refs shared across
// sessions must not be deleted while in use.
func (s *Store) Delete(ctx context.Context, ref domain.BlobRef) error {
	if ref.IsZero() {
		return nil
	}
	return s.backend.Delete(ctx, objectPath(ref.Key))
}

func objectPath(key string) string {
	if len(key) < 2 {
		return "blobs/" + key
	}
	return "blobs/" + key[:2] + "/" + key
}
