package image

import (
	"context"

	"archedit/internal/domain"
)

// EditRequest is one masked edit call. Prompt is the full prompt; provider
// specific instructions for the mask and reference are appended by the
// Generator.
type EditRequest struct {
	Image     domain.EncodedImage
	Mask      *domain.EncodedImage
	Reference *domain.EncodedImage
	Prompt    string
	APIKey    string
}

// UpscaleRequest re-renders an image at a higher resolution tier. An empty
// Prompt selects the default enhancement prompt.
type UpscaleRequest struct {
	Image      domain.EncodedImage
	Prompt     string
	Resolution domain.Resolution
	APIKey     string
}

// Generator is the remote image collaborator.
type Generator interface {
	Edit(ctx context.Context, req EditRequest) (domain.EncodedImage, error)
	Upscale(ctx context.Context, req UpscaleRequest) (domain.EncodedImage, error)
}
