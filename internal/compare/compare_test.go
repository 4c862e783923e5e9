package compare

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"testing"
)

func TestSliderDefaultsAndClamps(t *testing.T) {
	s := NewSlider()
	if s.Position() != 0.5 {
		t.Fatalf("initial position = %v, want 0.5", s.Position())
	}
	tests := []struct {
		clientX, left, width, want float64
	}{
		{150, 100, 200, 0.25},
		{50, 100, 200, 0},
		{400, 100, 200, 1},
		{300, 100, 200, 1},
	}
	for _, tc := range tests {
		if got := s.Drag(tc.clientX, tc.left, tc.width); got != tc.want {
			t.Fatalf("Drag(%v,%v,%v) = %v, want %v", tc.clientX, tc.left, tc.width, got, tc.want)
		}
	}
	if got := s.Drag(10, 0, 0); got != 1 {
		t.Fatalf("Drag with zero width changed position to %v", got)
	}
	if got := s.Set(math.NaN()); got != 0.5 {
		t.Fatalf("Set(NaN) = %v", got)
	}
	s.Set(0.9)
	s.Reset()
	if s.Position() != 0.5 {
		t.Fatalf("Reset position = %v", s.Position())
	}
}

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func TestRenderSplitsAtPosition(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}
	out := Render(solid(100, 50, red), solid(100, 50, blue), 100, 50, 0.3)

	if got := out.RGBAAt(10, 25); !near(got, blue) {
		t.Fatalf("left of divider = %v, want after image", got)
	}
	if got := out.RGBAAt(80, 25); !near(got, red) {
		t.Fatalf("right of divider = %v, want before image", got)
	}

	all := Render(solid(10, 10, red), solid(10, 10, blue), 10, 10, 0)
	if got := all.RGBAAt(5, 5); !near(got, red) {
		t.Fatalf("position 0 shows %v, want before image", got)
	}
}

func TestRenderLetterboxes(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	out := Render(solid(100, 100, red), solid(100, 100, red), 200, 100, 0.5)
	bg := color.RGBA(background)
	if got := out.RGBAAt(10, 50); got != bg {
		t.Fatalf("letterbox bar = %v, want background", got)
	}
	if got := out.RGBAAt(140, 50); !near(got, red) {
		t.Fatalf("image area = %v, want red", got)
	}
}

func near(a, b color.RGBA) bool {
	d := func(x, y uint8) int {
		if x > y {
			return int(x - y)
		}
		return int(y - x)
	}
	return d(a.R, b.R) <= 2 && d(a.G, b.G) <= 2 && d(a.B, b.B) <= 2 && d(a.A, b.A) <= 2
}

func TestBound(t *testing.T) {
	tests := []struct {
		name         string
		w, h, max    int
		wantW, wantH int
	}{
		{"within limit", 640, 480, 1_000_000, 640, 480},
		{"square shrinks", 1_000_000, 1_000_000, 1_000_000, 1000, 1000},
		{"keeps aspect", 4000, 2000, 2_000_000, 2000, 1000},
		{"thin strip keeps one pixel", 1, 5_000_000, 1_000_000, 1, 1_000_000},
		{"no limit", 9000, 9000, 0, 9000, 9000},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, h := Bound(tc.w, tc.h, tc.max)
			if w != tc.wantW || h != tc.wantH {
				t.Fatalf("Bound = %dx%d, want %dx%d", w, h, tc.wantW, tc.wantH)
			}
		})
	}
}
