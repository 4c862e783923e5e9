package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	ctx := context.Background()

	key, err := store.Write(ctx, "/blobs/ab/../ab/file.png", []byte("png"), "image/png")
	if err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if key != "blobs/ab/file.png" {
		t.Fatalf("key = %q", key)
	}
	data, err := store.Read(ctx, key)
	if err != nil || string(data) != "png" {
		t.Fatalf("Read = %q, %v", data, err)
	}
	if ok, err := store.Exists(ctx, key); err != nil || !ok {
		t.Fatalf("Exists = %v, %v", ok, err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := store.Read(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Read after delete err = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("second Delete error: %v", err)
	}
}

func TestSanitizeKeyRejectsTraversal(t *testing.T) {
	for _, key := range []string{"", "  ", "..", "../etc/passwd", "a/../../b"} {
		if _, err := sanitizeKey(key); err == nil {
			t.Fatalf("sanitizeKey(%q) succeeded", key)
		}
	}
	got, err := sanitizeKey(`exports\s1\a.png`)
	if err != nil || got != "exports/s1/a.png" {
		t.Fatalf("sanitizeKey = %q, %v", got, err)
	}
}

type fakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (b *fakeBucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := strings.TrimPrefix(r.URL.Path, "/test-bucket/")
	switch r.Method {
	case http.MethodPut:
		data, _ := io.ReadAll(r.Body)
		b.objects[key] = data
		w.WriteHeader(http.StatusOK)
	case http.MethodGet, http.MethodHead:
		data, ok := b.objects[key]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			if r.Method == http.MethodGet {
				_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)
			}
			return
		}
		w.Header().Set("Content-Type", "image/png")
		if r.Method == http.MethodGet {
			_, _ = w.Write(data)
		}
	case http.MethodDelete:
		delete(b.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestS3StoreAgainstFakeEndpoint(t *testing.T) {
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	bucket := &fakeBucket{objects: map[string][]byte{}}
	srv := httptest.NewServer(bucket)
	defer srv.Close()

	ctx := context.Background()
	store, err := NewS3Store(ctx, S3Options{
		Bucket:          "test-bucket",
		Region:          "us-east-1",
		Endpoint:        srv.URL,
		AccessKeyID:     "test",
		SecretAccessKey: "secret",
		Prefix:          "archedit",
	})
	if err != nil {
		t.Fatalf("NewS3Store error: %v", err)
	}

	key, err := store.Write(ctx, "blobs/aa/x.png", []byte("pixels"), "image/png")
	if err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if key != "blobs/aa/x.png" {
		t.Fatalf("key = %q", key)
	}
	if _, ok := bucket.objects["archedit/blobs/aa/x.png"]; !ok {
		t.Fatalf("object not stored under prefix: %v", bucket.objects)
	}
	data, err := store.Read(ctx, key)
	if err != nil || string(data) != "pixels" {
		t.Fatalf("Read = %q, %v", data, err)
	}
	if ok, err := store.Exists(ctx, "blobs/aa/missing.png"); err != nil || ok {
		t.Fatalf("Exists(missing) = %v, %v", ok, err)
	}
	if _, err := store.Read(ctx, "blobs/aa/missing.png"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Read(missing) err = %v", err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if len(bucket.objects) != 0 {
		t.Fatalf("objects after delete = %v", bucket.objects)
	}
}
