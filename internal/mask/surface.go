// Package mask captures freehand strokes over a displayed image and turns them
// into a transparent overlay with translucent pink marks.
package mask

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	xdraw "golang.org/x/image/draw"

	"archedit/internal/domain"
)

const StrokeWidth = 20

// StrokeColor is rgba(236, 72, 153, 0.7).
var StrokeColor = color.NRGBA{R: 236, G: 72, B: 153, A: 179}

// Event is a pointer position in viewport coordinates. Mouse and touch input
// both reduce to this.
type Event struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Surface holds the overlay raster for one displayed image. It is not safe for
// concurrent use; the owning session serialises access.
type Surface struct {
	container Rect
	explicit  bool
	layout    Layout
	tool      domain.ToolKind

	overlay *image.RGBA
	stroke  *image.Alpha
	drawing bool
	lastX   float64
	lastY   float64
}

func NewSurface() *Surface {
	return &Surface{tool: domain.DefaultTool}
}

// Load binds the surface to an image of the given natural size and starts from
// an empty overlay. Until Resize supplies a container the image is shown at 1:1.
func (s *Surface) Load(imgW, imgH int) {
	if !s.explicit {
		s.container = Rect{Width: float64(imgW), Height: float64(imgH)}
	}
	s.layout = Fit(s.container, imgW, imgH)
	s.drawing = false
	s.stroke = nil
	if s.layout.Sized() {
		s.overlay = image.NewRGBA(image.Rect(0, 0, s.layout.RasterW, s.layout.RasterH))
	} else {
		s.overlay = nil
	}
}

// Resize refits the image into a new container and starts a blank raster of
// the new size. Callers redraw the last emitted overlay with Restore.
// The container must already have passed Rect.Check.
func (s *Surface) Resize(container Rect) {
	s.container = container
	s.explicit = true
	if s.layout.ImageW <= 0 || s.layout.ImageH <= 0 {
		return
	}
	s.layout = Fit(container, s.layout.ImageW, s.layout.ImageH)
	s.drawing = false
	s.stroke = nil
	if !s.layout.Sized() {
		s.overlay = nil
		return
	}
	s.overlay = image.NewRGBA(image.Rect(0, 0, s.layout.RasterW, s.layout.RasterH))
}

// Invalidate drops the raster. Callers must do this whenever the underlying
// image is replaced.
func (s *Surface) Invalidate() {
	s.layout = Layout{}
	s.overlay = nil
	s.stroke = nil
	s.drawing = false
}

func (s *Surface) Layout() Layout { return s.layout }

func (s *Surface) Tool() domain.ToolKind { return s.tool }

// SetTool switches the active tool. Switching away ends any stroke in progress.
func (s *Surface) SetTool(tool domain.ToolKind) {
	s.tool = tool
	if tool != domain.ToolMask {
		s.drawing = false
		s.stroke = nil
	}
}

// Sized reports whether strokes can currently be captured.
func (s *Surface) Sized() bool { return s.overlay != nil }

// Drawing reports whether a stroke is in progress.
func (s *Surface) Drawing() bool { return s.drawing }

// PointerDown begins a stroke. It reports false when the event is ignored.
func (s *Surface) PointerDown(ev Event) bool {
	if s.tool != domain.ToolMask || s.overlay == nil {
		return false
	}
	s.drawing = true
	s.stroke = image.NewAlpha(s.overlay.Bounds())
	s.lastX, s.lastY = s.layout.ToRaster(ev.X, ev.Y)
	return true
}

// PointerMove extends the current stroke to ev.
func (s *Surface) PointerMove(ev Event) bool {
	if !s.drawing || s.tool != domain.ToolMask || s.overlay == nil {
		return false
	}
	x, y := s.layout.ToRaster(ev.X, ev.Y)
	s.paintSegment(s.lastX, s.lastY, x, y)
	s.lastX, s.lastY = x, y
	return true
}

// PointerUp ends the stroke and returns a snapshot of the whole overlay.
func (s *Surface) PointerUp() (domain.EncodedImage, bool, error) {
	if !s.drawing {
		return domain.EncodedImage{}, false, nil
	}
	s.drawing = false
	s.stroke = nil
	if s.overlay == nil {
		return domain.EncodedImage{}, false, nil
	}
	img, err := s.Snapshot()
	if err != nil {
		return domain.EncodedImage{}, false, err
	}
	return img, true, nil
}

// Clear resets the overlay to fully transparent.
func (s *Surface) Clear() {
	s.drawing = false
	s.stroke = nil
	if s.overlay == nil {
		return
	}
	s.overlay = image.NewRGBA(s.overlay.Bounds())
}

// Restore paints a previously emitted overlay back onto the current raster,
// scaled to fit, so marks stay registered after a re-fit.
func (s *Surface) Restore(img domain.EncodedImage) error {
	if s.overlay == nil || img.Empty() {
		return nil
	}
	src, err := png.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return domain.Encoding("decode mask overlay: %v", err)
	}
	next := image.NewRGBA(s.overlay.Bounds())
	xdraw.ApproxBiLinear.Scale(next, next.Bounds(), src, src.Bounds(), draw.Src, nil)
	s.overlay = next
	return nil
}

// Snapshot encodes the overlay as PNG.
func (s *Surface) Snapshot() (domain.EncodedImage, error) {
	if s.overlay == nil {
		return domain.EncodedImage{}, domain.Validation(domain.CodeImageRequired, "no image loaded")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, s.overlay); err != nil {
		return domain.EncodedImage{}, fmt.Errorf("mask: encode overlay: %w", err)
	}
	return domain.EncodedImage{MIME: "image/png", Data: buf.Bytes()}, nil
}

// paintSegment covers every pixel whose centre lies within half the stroke
// width of the segment, which yields round caps and joins. Pixels already
// covered by this stroke are skipped so overlapping segments do not darken.
func (s *Surface) paintSegment(x0, y0, x1, y1 float64) {
	r := float64(StrokeWidth) / 2
	box := image.Rect(
		int(math.Floor(math.Min(x0, x1)-r)),
		int(math.Floor(math.Min(y0, y1)-r)),
		int(math.Ceil(math.Max(x0, x1)+r))+1,
		int(math.Ceil(math.Max(y0, y1)+r))+1,
	).Intersect(s.overlay.Bounds())
	if box.Empty() {
		return
	}
	delta := image.NewAlpha(box)
	painted := false
	for py := box.Min.Y; py < box.Max.Y; py++ {
		for px := box.Min.X; px < box.Max.X; px++ {
			if s.stroke.AlphaAt(px, py).A != 0 {
				continue
			}
			if segmentDistance(float64(px)+0.5, float64(py)+0.5, x0, y0, x1, y1) > r {
				continue
			}
			s.stroke.SetAlpha(px, py, color.Alpha{A: 0xff})
			delta.SetAlpha(px, py, color.Alpha{A: 0xff})
			painted = true
		}
	}
	if painted {
		draw.DrawMask(s.overlay, box, image.NewUniform(StrokeColor), image.Point{}, delta, box.Min, draw.Over)
	}
}

func segmentDistance(px, py, x0, y0, x1, y1 float64) float64 {
	dx, dy := x1-x0, y1-y0
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(px-x0, py-y0)
	}
	t := ((px-x0)*dx + (py-y0)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(px-(x0+t*dx), py-(y0+t*dy))
}
