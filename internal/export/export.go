// Package export writes the edit history out as numbered files.
package export

import (
	"context"
	"fmt"
	"time"

	"archedit/internal/domain"
)

const (
	DefaultPrefix = "archedit"
	DefaultDelay  = 400 * time.Millisecond

	// DownloadName is used for single-image downloads.
	DownloadName = "archedit-result.png"
)

// File is one named payload handed to an Emitter.
type File struct {
	Name string
	MIME string
	Data []byte
}

// Emitter delivers files somewhere: a directory, an archive, a response.
type Emitter interface {
	Emit(ctx context.Context, f File) error
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(ctx context.Context, f File) error

func (fn EmitterFunc) Emit(ctx context.Context, f File) error { return fn(ctx, f) }

// Name returns the file name for history index i: the original upload is
// "<prefix>-00-original.png", later steps "<prefix>-step-NN.png".
func Name(prefix string, i int) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if i == 0 {
		return prefix + "-00-original.png"
	}
	return fmt.Sprintf("%s-step-%02d.png", prefix, i)
}

// LatestName names the unapplied pending result.
func LatestName(prefix string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return prefix + "-latest-edit.png"
}

// Files names the history images in order, followed by the pending result
// when there is one.
func Files(prefix string, steps []domain.EncodedImage, pending *domain.EncodedImage) []File {
	out := make([]File, 0, len(steps)+1)
	for i, img := range steps {
		out = append(out, File{Name: Name(prefix, i), MIME: mimeOr(img.MIME), Data: img.Data})
	}
	if !pending.Empty() {
		out = append(out, File{Name: LatestName(prefix), MIME: mimeOr(pending.MIME), Data: pending.Data})
	}
	return out
}

// All emits files sequentially, waiting delay between history files. Only
// the order is guaranteed; a cancelled context stops the batch early.
func All(ctx context.Context, em Emitter, files []File, delay time.Duration) (int, error) {
	for i, f := range files {
		if i > 0 && delay > 0 {
			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return i, ctx.Err()
			case <-t.C:
			}
		}
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := em.Emit(ctx, f); err != nil {
			return i, fmt.Errorf("export: emit %s: %w", f.Name, err)
		}
	}
	return len(files), nil
}

func mimeOr(mime string) string {
	if mime == "" {
		return "image/png"
	}
	return mime
}
