package editor

import (
	"context"
	"time"

	"archedit/internal/compare"
	"archedit/internal/domain"
	"archedit/internal/imaging"
	"archedit/internal/mask"
)

// StepView is one history entry as shown to clients.
type StepView struct {
	Index       int            `json:"index"`
	Image       domain.BlobRef `json:"image"`
	Instruction string         `json:"instruction"`
	Current     bool           `json:"current"`
}

// ErrorView is the recorded failure of the last operation. It accompanies
// the error state after a failed call and annotates an otherwise unchanged
// state after a rejected one.
type ErrorView struct {
	Kind    domain.ErrorKind `json:"kind"`
	Code    string           `json:"code"`
	Message string           `json:"message"`
}

// Snapshot is a consistent read of the session.
type Snapshot struct {
	ID                 string          `json:"id"`
	State              State           `json:"state"`
	Busy               bool            `json:"busy"`
	Prompt             string          `json:"prompt"`
	Tool               domain.ToolKind `json:"tool"`
	HasSource          bool            `json:"has_source"`
	Source             *domain.BlobRef `json:"source,omitempty"`
	HasPending         bool            `json:"has_pending"`
	HasMask            bool            `json:"has_mask"`
	HasReference       bool            `json:"has_reference"`
	CredentialRequired bool            `json:"credential_required"`
	Pointer            int             `json:"pointer"`
	History            []StepView      `json:"history"`
	Layout             mask.Layout     `json:"layout"`
	SliderPosition     float64         `json:"slider_position"`
	Error              *ErrorView      `json:"error,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// Snapshot reads the session under its lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	steps := s.ledger.Steps()
	pointer := s.ledger.Pointer()
	views := make([]StepView, len(steps))
	for i, step := range steps {
		views[i] = StepView{Index: i, Image: step.Image, Instruction: step.Instruction, Current: i == pointer}
	}
	snap := Snapshot{
		ID:                 s.id,
		State:              s.stateLocked(),
		Busy:               s.busy,
		Prompt:             s.prompt,
		Tool:               s.surface.Tool(),
		HasPending:         s.pending != nil,
		HasMask:            s.overlay != nil,
		HasReference:       s.reference != nil,
		CredentialRequired: s.needsKey,
		Pointer:            pointer,
		History:            views,
		Layout:             s.surface.Layout(),
		SliderPosition:     s.slider.Position(),
		CreatedAt:          s.createdAt,
		UpdatedAt:          s.updatedAt,
	}
	if src, ok := s.sourceLocked(); ok {
		snap.HasSource = true
		snap.Source = &src
	}
	if s.lastErr != nil {
		snap.Error = &ErrorView{Kind: s.lastErr.Kind, Code: s.lastErr.Code, Message: s.lastErr.Message}
	}
	return snap
}

// SlideTo moves the comparison divider to position, clamped to [0, 1].
func (s *Session) SlideTo(position float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slider.Set(position)
}

// DragSlider maps a pointer x over a box of the given left and width onto the
// divider.
func (s *Session) DragSlider(clientX, left, width float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slider.Drag(clientX, left, width)
}

// Comparison renders the source and pending result side by side at the
// current divider position. The view is shrunk to stay within MaxPixels.
func (s *Session) Comparison(ctx context.Context, w, h int) (domain.EncodedImage, error) {
	s.mu.Lock()
	pending := s.pending
	src, ok := s.sourceLocked()
	pos := s.slider.Position()
	s.mu.Unlock()

	if pending == nil {
		return domain.EncodedImage{}, domain.Validation(domain.CodeNothingPending, "there is no result to compare")
	}
	if !ok {
		return domain.EncodedImage{}, domain.Validation(domain.CodeImageRequired, "no image uploaded")
	}
	before, err := s.load(ctx, src)
	if err != nil {
		return domain.EncodedImage{}, err
	}
	beforeImg, err := imaging.Decode(before.Data)
	if err != nil {
		return domain.EncodedImage{}, err
	}
	afterImg, err := imaging.Decode(pending.Data)
	if err != nil {
		return domain.EncodedImage{}, err
	}
	if w <= 0 || h <= 0 {
		b := afterImg.Bounds()
		w, h = b.Dx(), b.Dy()
	}
	w, h = compare.Bound(w, h, s.deps.MaxPixels)
	return imaging.EncodePNG(compare.Render(beforeImg, afterImg, w, h, pos))
}
