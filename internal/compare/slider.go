// Package compare renders a before/after split view of two images.
package compare

// DefaultPosition is where a freshly mounted slider sits.
const DefaultPosition = 0.5

// Slider tracks the divider position as a fraction of the view width.
type Slider struct {
	pos float64
}

func NewSlider() *Slider {
	return &Slider{pos: DefaultPosition}
}

// Position returns the divider position in [0, 1].
func (s *Slider) Position() float64 { return s.pos }

// Set moves the divider, clamping to [0, 1].
func (s *Slider) Set(p float64) float64 {
	s.pos = clamp01(p)
	return s.pos
}

// Drag moves the divider to a pointer at clientX over a view spanning
// [left, left+width). Degenerate widths leave the position unchanged.
func (s *Slider) Drag(clientX, left, width float64) float64 {
	if width <= 0 {
		return s.pos
	}
	return s.Set((clientX - left) / width)
}

// Reset returns the divider to the default position.
func (s *Slider) Reset() { s.pos = DefaultPosition }

func clamp01(p float64) float64 {
	switch {
	case p != p:
		return DefaultPosition
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}
