package mask

import (
	"fmt"
	"math"

	"archedit/internal/domain"
)

// Rect is a container box in viewport coordinates.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width" validate:"gt=0"`
	Height float64 `json:"height" validate:"gt=0"`
}

// Check rejects containers that are empty, not finite, or larger than
// maxPixels once rasterised. A maxPixels of zero disables the size check.
func (r Rect) Check(maxPixels int) error {
	for _, v := range []float64{r.Left, r.Top, r.Width, r.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return domain.Validation(domain.CodeInvalidLayout, "layout values must be finite")
		}
	}
	if r.Width <= 0 || r.Height <= 0 {
		return domain.Validation(domain.CodeInvalidLayout, "layout must have a positive size")
	}
	if maxPixels > 0 && r.Width*r.Height > float64(maxPixels) {
		return domain.Validation(domain.CodeInvalidLayout,
			fmt.Sprintf("layout %.0fx%.0f exceeds %d pixels", r.Width, r.Height, maxPixels))
	}
	return nil
}

// Layout is the letterboxed placement of an image inside a container.
type Layout struct {
	Container Rect    `json:"container"`
	ImageW    int     `json:"image_width"`
	ImageH    int     `json:"image_height"`
	DrawW     float64 `json:"draw_width"`
	DrawH     float64 `json:"draw_height"`
	OriginX   float64 `json:"origin_x"`
	OriginY   float64 `json:"origin_y"`
	RasterW   int     `json:"raster_width"`
	RasterH   int     `json:"raster_height"`
}

// Fit scales an imgW x imgH image to fit entirely inside container while
// preserving aspect ratio, and centres it. A wider-than-container image is
// width constrained; otherwise height constrained.
func Fit(container Rect, imgW, imgH int) Layout {
	l := Layout{Container: container, ImageW: imgW, ImageH: imgH}
	if imgW <= 0 || imgH <= 0 || container.Width <= 0 || container.Height <= 0 {
		return l
	}
	imgAspect := float64(imgW) / float64(imgH)
	containerAspect := container.Width / container.Height
	if imgAspect > containerAspect {
		l.DrawW = container.Width
		l.DrawH = l.DrawW / imgAspect
	} else {
		l.DrawH = container.Height
		l.DrawW = l.DrawH * imgAspect
	}
	l.OriginX = container.Left + (container.Width-l.DrawW)/2
	l.OriginY = container.Top + (container.Height-l.DrawH)/2
	l.RasterW = int(math.Floor(l.DrawW))
	l.RasterH = int(math.Floor(l.DrawH))
	return l
}

// Sized reports whether the layout yields a drawable raster.
func (l Layout) Sized() bool { return l.RasterW > 0 && l.RasterH > 0 }

// ToRaster translates viewport coordinates into raster coordinates.
func (l Layout) ToRaster(x, y float64) (float64, float64) {
	return x - l.OriginX, y - l.OriginY
}
