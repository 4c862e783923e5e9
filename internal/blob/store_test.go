package blob

import (
	"context"
	"testing"

	"archedit/internal/domain"
	"archedit/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	fs, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	return NewStore(fs)
}

func TestPutIsContentAddressed(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a, err := store.Put(ctx, domain.EncodedImage{MIME: "image/png", Data: []byte("same")})
	if err != nil {
		t.Fatalf("Put error: %v", err)
	}
	b, err := store.Put(ctx, domain.EncodedImage{MIME: "image/png", Data: []byte("same")})
	if err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if a != b {
		t.Fatalf("refs differ: %+v vs %+v", a, b)
	}
	c, err := store.Put(ctx, domain.EncodedImage{MIME: "image/png", Data: []byte("other")})
	if err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if c.Key == a.Key {
		t.Fatal("different content produced the same key")
	}

	img, err := store.Get(ctx, a)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if string(img.Data) != "same" || img.MIME != "image/png" {
		t.Fatalf("Get = %q %q", img.MIME, img.Data)
	}
}

func TestGetMissingIsNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ref, err := store.Put(ctx, domain.EncodedImage{MIME: "image/png", Data: []byte("x")})
	if err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if err := store.Delete(ctx, ref); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := store.Get(ctx, ref); domain.KindOf(err) != domain.KindNotFound {
		t.Fatalf("Get after delete err = %v", err)
	}
	if _, err := store.Get(ctx, domain.BlobRef{}); domain.KindOf(err) != domain.KindNotFound {
		t.Fatalf("Get(zero) err = %v", err)
	}
	if _, err := store.Put(ctx, domain.EncodedImage{}); err == nil {
		t.Fatal("Put(empty) should fail")
	}
}
