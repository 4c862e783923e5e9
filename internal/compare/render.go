package compare

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
)

var (
	background   = color.NRGBA{R: 17, G: 24, B: 39, A: 255}
	dividerColor = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

const dividerWidth = 2

// Render draws before and after letterboxed into a w x h view. The after image
// is visible over [0, position*w) and the before image elsewhere, with a thin
// divider at the boundary.
func Render(before, after image.Image, w, h int, position float64) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	if w <= 0 || h <= 0 {
		return out
	}
	beforeView := contain(before, w, h)
	afterView := contain(after, w, h)

	split := int(math.Round(clamp01(position) * float64(w)))
	draw.Draw(out, image.Rect(split, 0, w, h), beforeView, image.Pt(split, 0), draw.Src)
	draw.Draw(out, image.Rect(0, 0, split, h), afterView, image.Point{}, draw.Src)

	line := image.Rect(split-dividerWidth/2, 0, split-dividerWidth/2+dividerWidth, h).Intersect(out.Bounds())
	draw.Draw(out, line, image.NewUniform(dividerColor), image.Point{}, draw.Over)
	return out
}

// Bound shrinks a w x h view, keeping its aspect ratio, until it holds at
// most maxPixels. Each side stays at least one pixel.
func Bound(w, h, maxPixels int) (int, int) {
	if w <= 0 || h <= 0 || maxPixels <= 0 {
		return w, h
	}
	area := float64(w) * float64(h)
	if area <= float64(maxPixels) {
		return w, h
	}
	scale := math.Sqrt(float64(maxPixels) / area)
	bw := max(1, int(math.Floor(float64(w)*scale+1e-6)))
	bh := max(1, int(math.Floor(float64(h)*scale+1e-6)))
	if bw*bh > maxPixels {
		if bw >= bh {
			bw = maxPixels / bh
		} else {
			bh = maxPixels / bw
		}
	}
	return bw, bh
}

// contain scales img to fit inside w x h preserving aspect ratio, centred over
// the background colour.
func contain(img image.Image, w, h int) *image.RGBA {
	view := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(view, view.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	if img == nil {
		return view
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return view
	}
	imgAspect := float64(b.Dx()) / float64(b.Dy())
	viewAspect := float64(w) / float64(h)
	dw, dh := float64(w), float64(h)
	if imgAspect > viewAspect {
		dh = dw / imgAspect
	} else {
		dw = dh * imgAspect
	}
	x0 := int(math.Round((float64(w) - dw) / 2))
	y0 := int(math.Round((float64(h) - dh) / 2))
	dst := image.Rect(x0, y0, x0+int(math.Round(dw)), y0+int(math.Round(dh)))
	xdraw.CatmullRom.Scale(view, dst, img, b, draw.Over, nil)
	return view
}
