package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"net/http"
	"strings"

	_ "golang.org/x/image/webp"

	"archedit/internal/domain"
)

var supportedMIME = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
	"image/webp": {},
	"image/gif":  {},
}

// DefaultMaxPixels bounds the rasters accepted when no limit is configured.
const DefaultMaxPixels = 36_000_000

// Info describes a decoded raster header.
type Info struct {
	Width  int
	Height int
	MIME   string
}

// Inspect validates that data is a supported raster no larger than
// DefaultMaxPixels and reports its dimensions.
func Inspect(data []byte) (Info, error) {
	return InspectWithin(data, DefaultMaxPixels)
}

// InspectWithin is Inspect with an explicit pixel limit. Only the header is
// read, so an oversized image is rejected before anything is allocated for it.
// The declared MIME type is only a hint; the bytes decide.
func InspectWithin(data []byte, maxPixels int) (Info, error) {
	if len(data) == 0 {
		return Info{}, domain.Validation(domain.CodeUnsupportedImage, "image is empty")
	}
	mime := DetectMIME(data)
	if _, ok := supportedMIME[mime]; !ok {
		return Info{}, domain.Validation(domain.CodeUnsupportedImage, fmt.Sprintf("unsupported image type %q", mime))
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, domain.Validation(domain.CodeUnsupportedImage, fmt.Sprintf("decode image header: %v", err))
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Info{}, domain.Validation(domain.CodeUnsupportedImage, "image has no pixels")
	}
	if maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return Info{}, domain.Validation(domain.CodeUnsupportedImage,
			fmt.Sprintf("image is %dx%d, larger than %d pixels", cfg.Width, cfg.Height, maxPixels))
	}
	return Info{Width: cfg.Width, Height: cfg.Height, MIME: mime}, nil
}

// DetectMIME sniffs the content type of data.
func DetectMIME(data []byte) string {
	mime := http.DetectContentType(data)
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = mime[:idx]
	}
	return strings.TrimSpace(mime)
}

// Decode decodes any supported raster.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, domain.Encoding("decode image: %v", err)
	}
	return img, nil
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) (domain.EncodedImage, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return domain.EncodedImage{}, domain.Encoding("encode png: %v", err)
	}
	return domain.EncodedImage{MIME: "image/png", Data: buf.Bytes()}, nil
}
