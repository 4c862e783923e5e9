// Package zip bundles named byte payloads into a zip archive.
package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"time"
)

type Entry struct {
	Filename string
	Modified time.Time
	Data     []byte
}

// Writer streams entries into an archive. PNG payloads are already
// compressed, so entries are stored rather than deflated.
type Writer struct {
	zw    *zip.Writer
	names map[string]struct{}
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{zw: zip.NewWriter(w), names: map[string]struct{}{}}
}

// Add appends one entry. Duplicate names are rejected.
func (w *Writer) Add(e Entry) error {
	if e.Filename == "" {
		return fmt.Errorf("zip: entry name is required")
	}
	if _, dup := w.names[e.Filename]; dup {
		return fmt.Errorf("zip: duplicate entry %q", e.Filename)
	}
	hdr := &zip.FileHeader{Name: e.Filename, Method: zip.Store}
	if !e.Modified.IsZero() {
		hdr.Modified = e.Modified
	}
	fw, err := w.zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("zip: create %s: %w", e.Filename, err)
	}
	if _, err := fw.Write(e.Data); err != nil {
		return fmt.Errorf("zip: write %s: %w", e.Filename, err)
	}
	w.names[e.Filename] = struct{}{}
	return nil
}

func (w *Writer) Close() error { return w.zw.Close() }

// Archive builds an in-memory archive of entries.
func Archive(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, e := range entries {
		if err := w.Add(e); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
