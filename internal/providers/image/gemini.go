package image

import (
	"context"
	"encoding/base64"
	"errors"

	"archedit/internal/domain"
	"archedit/internal/providers/genai"
)

const (
	DefaultEditModel    = "gemini-2.5-flash-image"
	DefaultUpscaleModel = "gemini-3-pro-image-preview"
)

// GeminiGenerator implements Generator on top of the Gemini REST client.
type GeminiGenerator struct {
	client       *genai.Client
	editModel    string
	upscaleModel string
}

func NewGeminiGenerator(client *genai.Client, editModel, upscaleModel string) *GeminiGenerator {
	if editModel == "" {
		editModel = DefaultEditModel
	}
	if upscaleModel == "" {
		upscaleModel = DefaultUpscaleModel
	}
	return &GeminiGenerator{client: client, editModel: editModel, upscaleModel: upscaleModel}
}

// Edit sends image, optional mask, optional reference and the prompt, in that
// order, and asks for an image-only response.
func (g *GeminiGenerator) Edit(ctx context.Context, req EditRequest) (domain.EncodedImage, error) {
	if req.Image.Empty() {
		return domain.EncodedImage{}, domain.Validation(domain.CodeImageRequired, "an image is required")
	}
	parts := []genai.Part{inline(req.Image)}
	hasMask := !req.Mask.Empty()
	if hasMask {
		parts = append(parts, genai.InlinePart("image/png", base64.StdEncoding.EncodeToString(req.Mask.Data)))
	}
	hasReference := !req.Reference.Empty()
	if hasReference {
		parts = append(parts, inline(*req.Reference))
	}
	parts = append(parts, genai.TextPart(editText(req.Prompt, hasMask, hasReference)))

	resp, err := g.client.GenerateContent(ctx, g.editModel, req.APIKey, genai.GenerateContentRequest{
		Contents:         []genai.Content{{Role: "user", Parts: parts}},
		GenerationConfig: &genai.GenerationConfig{ResponseModalities: []string{"IMAGE"}},
	})
	if err != nil {
		return domain.EncodedImage{}, remoteError(err)
	}
	return genai.FirstImage(resp)
}

// Upscale re-renders req.Image at the requested size tier.
func (g *GeminiGenerator) Upscale(ctx context.Context, req UpscaleRequest) (domain.EncodedImage, error) {
	if req.Image.Empty() {
		return domain.EncodedImage{}, domain.Validation(domain.CodeNothingToUpscale, "there is no image to upscale")
	}
	prompt := req.Prompt
	if prompt == "" {
		prompt = DefaultUpscalePrompt
	}
	resp, err := g.client.GenerateContent(ctx, g.upscaleModel, req.APIKey, genai.GenerateContentRequest{
		Contents: []genai.Content{{
			Role:  "user",
			Parts: []genai.Part{inline(req.Image), genai.TextPart(prompt)},
		}},
		GenerationConfig: &genai.GenerationConfig{
			ImageConfig: &genai.ImageConfig{ImageSize: string(req.Resolution)},
		},
	})
	if err != nil {
		return domain.EncodedImage{}, remoteError(err)
	}
	return genai.FirstImage(resp)
}

func inline(img domain.EncodedImage) genai.Part {
	mime := img.MIME
	if mime == "" {
		mime = "image/png"
	}
	return genai.InlinePart(mime, base64.StdEncoding.EncodeToString(img.Data))
}

func remoteError(err error) error {
	if errors.Is(err, genai.ErrMissingAPIKey) {
		return domain.ErrCredentialRequired
	}
	return domain.RemoteFailure(err)
}

var _ Generator = (*GeminiGenerator)(nil)
