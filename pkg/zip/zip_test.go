package zip

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
)

func TestArchivePreservesOrderAndContent(t *testing.T) {
	data, err := Archive([]Entry{
		{Filename: "a-00-original.png", Data: []byte("one")},
		{Filename: "a-step-01.png", Data: []byte("two")},
	})
	if err != nil {
		t.Fatalf("Archive error: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("NewReader error: %v", err)
	}
	if len(zr.File) != 2 || zr.File[0].Name != "a-00-original.png" || zr.File[1].Name != "a-step-01.png" {
		t.Fatalf("entries = %v", zr.File)
	}
	rc, err := zr.File[1].Open()
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if string(got) != "two" {
		t.Fatalf("content = %q", got)
	}
}

func TestArchiveRejectsDuplicates(t *testing.T) {
	if _, err := Archive([]Entry{{Filename: "x.png"}, {Filename: "x.png"}}); err == nil {
		t.Fatal("expected duplicate entry error")
	}
	if _, err := Archive([]Entry{{Filename: ""}}); err == nil {
		t.Fatal("expected missing name error")
	}
}
