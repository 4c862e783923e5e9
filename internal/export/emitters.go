package export

import (
	"context"
	"io"
	"path"
	"time"

	"archedit/internal/storage"
	"archedit/pkg/zip"
)

// DirEmitter writes files into the storage backend under a directory.
type DirEmitter struct {
	backend storage.Backend
	dir     string
	written []string
}

func NewDirEmitter(backend storage.Backend, dir string) *DirEmitter {
	return &DirEmitter{backend: backend, dir: dir}
}

func (d *DirEmitter) Emit(ctx context.Context, f File) error {
	key, err := d.backend.Write(ctx, path.Join(d.dir, f.Name), f.Data, f.MIME)
	if err != nil {
		return err
	}
	d.written = append(d.written, key)
	return nil
}

// Written lists the storage keys emitted so far.
func (d *DirEmitter) Written() []string {
	out := make([]string, len(d.written))
	copy(out, d.written)
	return out
}

// ZipEmitter streams files into a zip archive.
type ZipEmitter struct {
	zw  *zip.Writer
	now func() time.Time
}

func NewZipEmitter(w io.Writer) *ZipEmitter {
	return &ZipEmitter{zw: zip.NewWriter(w), now: time.Now}
}

func (z *ZipEmitter) Emit(ctx context.Context, f File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return z.zw.Add(zip.Entry{Filename: f.Name, Modified: z.now(), Data: f.Data})
}

// Close finalises the archive.
func (z *ZipEmitter) Close() error { return z.zw.Close() }
