package export

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"archedit/internal/domain"
	"archedit/internal/storage"
)

func TestNames(t *testing.T) {
	tests := []struct {
		i    int
		want string
	}{
		{0, "archedit-00-original.png"},
		{1, "archedit-step-01.png"},
		{12, "archedit-step-12.png"},
	}
	for _, tc := range tests {
		if got := Name("", tc.i); got != tc.want {
			t.Fatalf("Name(%d) = %q, want %q", tc.i, got, tc.want)
		}
	}
	if got := LatestName("house"); got != "house-latest-edit.png" {
		t.Fatalf("LatestName = %q", got)
	}
}

func TestFilesAppendsPendingLast(t *testing.T) {
	steps := []domain.EncodedImage{{Data: []byte("0")}, {MIME: "image/png", Data: []byte("1")}}
	pending := &domain.EncodedImage{MIME: "image/png", Data: []byte("p")}
	files := Files("a", steps, pending)
	if len(files) != 3 {
		t.Fatalf("files = %d", len(files))
	}
	want := []string{"a-00-original.png", "a-step-01.png", "a-latest-edit.png"}
	for i, f := range files {
		if f.Name != want[i] {
			t.Fatalf("file %d = %q, want %q", i, f.Name, want[i])
		}
	}
	if files[0].MIME != "image/png" {
		t.Fatalf("default mime = %q", files[0].MIME)
	}
	if got := Files("a", steps, nil); len(got) != 2 {
		t.Fatalf("files without pending = %d", len(got))
	}
}

func TestAllEmitsInOrderWithPacing(t *testing.T) {
	var names []string
	var stamps []time.Time
	em := EmitterFunc(func(ctx context.Context, f File) error {
		names = append(names, f.Name)
		stamps = append(stamps, time.Now())
		return nil
	})
	files := []File{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	n, err := All(context.Background(), em, files, 20*time.Millisecond)
	if err != nil || n != 3 {
		t.Fatalf("All = %d, %v", n, err)
	}
	if names[0] != "a" || names[1] != "b" || names[2] != "c" {
		t.Fatalf("order = %v", names)
	}
	if gap := stamps[2].Sub(stamps[0]); gap < 40*time.Millisecond {
		t.Fatalf("pacing gap = %v, want >= 40ms", gap)
	}
}

func TestAllStopsOnCancelAndError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	count := 0
	em := EmitterFunc(func(ctx context.Context, f File) error {
		count++
		cancel()
		return nil
	})
	n, err := All(ctx, em, []File{{Name: "a"}, {Name: "b"}}, time.Second)
	if !errors.Is(err, context.Canceled) || n != 1 || count != 1 {
		t.Fatalf("All = %d, %v (count %d)", n, err, count)
	}

	boom := EmitterFunc(func(ctx context.Context, f File) error { return errors.New("disk full") })
	if _, err := All(context.Background(), boom, []File{{Name: "a"}}, 0); err == nil {
		t.Fatal("expected emitter error")
	}
}

func TestDirEmitter(t *testing.T) {
	fs, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	em := NewDirEmitter(fs, "exports/s1")
	if _, err := All(context.Background(), em, []File{{Name: "x-00-original.png", Data: []byte("png")}}, 0); err != nil {
		t.Fatalf("All error: %v", err)
	}
	if got := em.Written(); len(got) != 1 || got[0] != "exports/s1/x-00-original.png" {
		t.Fatalf("Written = %v", got)
	}
	data, err := fs.Read(context.Background(), "exports/s1/x-00-original.png")
	if err != nil || string(data) != "png" {
		t.Fatalf("Read = %q, %v", data, err)
	}
}

func TestZipEmitter(t *testing.T) {
	var buf bytes.Buffer
	em := NewZipEmitter(&buf)
	files := Files("z", []domain.EncodedImage{{Data: []byte("0")}, {Data: []byte("1")}}, nil)
	if _, err := All(context.Background(), em, files, 0); err != nil {
		t.Fatalf("All error: %v", err)
	}
	if err := em.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip.NewReader error: %v", err)
	}
	if len(zr.File) != 2 || zr.File[1].Name != "z-step-01.png" {
		t.Fatalf("entries = %v", zr.File)
	}
}
