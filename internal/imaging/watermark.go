package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"archedit/internal/domain"
)

const (
	watermarkMinFontSize = 20
	watermarkMinPadding  = 20
	shadowOffset         = 1
	shadowBlurRadius     = 2
)

var (
	watermarkFill   = color.NRGBA{R: 255, G: 255, B: 255, A: 217}
	watermarkShadow = color.NRGBA{R: 0, G: 0, B: 0, A: 179}

	boldOnce sync.Once
	boldFont *opentype.Font
	boldErr  error
)

func watermarkFont() (*opentype.Font, error) {
	boldOnce.Do(func() {
		boldFont, boldErr = opentype.Parse(gobold.TTF)
	})
	return boldFont, boldErr
}

// WatermarkFontSize scales the label with the image height: 2.5% with a floor.
func WatermarkFontSize(height int) int {
	size := height * 25 / 1000
	if size < watermarkMinFontSize {
		return watermarkMinFontSize
	}
	return size
}

func watermarkPadding(extent int) int {
	pad := extent * 3 / 100
	if pad < watermarkMinPadding {
		return watermarkMinPadding
	}
	return pad
}

// ApplyWatermark composites text onto the bottom-right corner of img and
// returns the result as PNG. The label is semi-transparent white over a
// blurred dark shadow so it stays legible on any background.
func ApplyWatermark(img domain.EncodedImage, text string) (domain.EncodedImage, error) {
	src, err := Decode(img.Data)
	if err != nil {
		return domain.EncodedImage{}, err
	}
	b := src.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(canvas, canvas.Bounds(), src, b.Min, draw.Src)

	text = strings.TrimSpace(text)
	if text == "" {
		return EncodePNG(canvas)
	}

	f, err := watermarkFont()
	if err != nil {
		return domain.EncodedImage{}, fmt.Errorf("watermark: parse font: %w", err)
	}
	w, h := b.Dx(), b.Dy()
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(WatermarkFontSize(h)),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return domain.EncodedImage{}, fmt.Errorf("watermark: font face: %w", err)
	}
	defer face.Close()

	metrics := face.Metrics()
	advance := font.MeasureString(face, text).Ceil()
	x := w - watermarkPadding(w) - advance
	baseline := h - watermarkPadding(h) - metrics.Descent.Ceil()

	shadow := image.NewAlpha(canvas.Bounds())
	sd := &font.Drawer{
		Dst:  shadow,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.P(x+shadowOffset, baseline+shadowOffset),
	}
	sd.DrawString(text)
	region := image.Rect(
		x-shadowBlurRadius-1,
		baseline-metrics.Ascent.Ceil()-shadowBlurRadius-1,
		x+advance+shadowBlurRadius+shadowOffset+1,
		baseline+metrics.Descent.Ceil()+shadowBlurRadius+shadowOffset+1,
	).Intersect(canvas.Bounds())
	blurred := boxBlur(shadow, region, shadowBlurRadius)
	draw.DrawMask(canvas, region, image.NewUniform(watermarkShadow), image.Point{}, blurred, region.Min, draw.Over)

	fd := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(watermarkFill),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	fd.DrawString(text)

	return EncodePNG(canvas)
}

// boxBlur returns a copy of src where pixels inside region are averaged over a
// (2r+1)^2 window. Pixels outside region count as transparent.
func boxBlur(src *image.Alpha, region image.Rectangle, r int) *image.Alpha {
	out := image.NewAlpha(src.Bounds())
	if region.Empty() || r <= 0 {
		draw.Draw(out, src.Bounds(), src, src.Bounds().Min, draw.Src)
		return out
	}
	tmp := image.NewAlpha(src.Bounds())
	window := 2*r + 1
	for y := region.Min.Y; y < region.Max.Y; y++ {
		for x := region.Min.X; x < region.Max.X; x++ {
			sum := 0
			for k := x - r; k <= x+r; k++ {
				if k >= region.Min.X && k < region.Max.X {
					sum += int(src.AlphaAt(k, y).A)
				}
			}
			tmp.SetAlpha(x, y, color.Alpha{A: uint8(sum / window)})
		}
	}
	for y := region.Min.Y; y < region.Max.Y; y++ {
		for x := region.Min.X; x < region.Max.X; x++ {
			sum := 0
			for k := y - r; k <= y+r; k++ {
				if k >= region.Min.Y && k < region.Max.Y {
					sum += int(tmp.AlphaAt(x, k).A)
				}
			}
			out.SetAlpha(x, y, color.Alpha{A: uint8(sum / window)})
		}
	}
	return out
}
