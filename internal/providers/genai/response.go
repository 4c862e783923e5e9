package genai

import (
	"fmt"

	"archedit/internal/domain"
	"archedit/internal/imaging"
)

const finishReasonSafety = "SAFETY"

// FirstImage extracts the image from the first candidate. Parts are scanned in
// order: an inline image wins, but a text part seen first is the model
// declining and is reported as a refusal.
func FirstImage(resp *GenerateContentResponse) (domain.EncodedImage, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return domain.EncodedImage{}, domain.RemoteRefusal(domain.CodeNoCandidates, "the model returned no response (no candidates)")
	}
	candidate := resp.Candidates[0]
	if candidate.FinishReason == finishReasonSafety {
		return domain.EncodedImage{}, domain.RemoteRefusal(domain.CodeSafetyBlocked, "the image was not generated because of a safety filter")
	}
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return domain.EncodedImage{}, domain.RemoteRefusal(domain.CodeNoContent, fmt.Sprintf("no content was generated (reason: %s)", candidate.FinishReason))
	}
	for _, part := range candidate.Content.Parts {
		if part.InlineData != nil && part.InlineData.Data != "" {
			return imaging.DecodeBase64(part.InlineData.MimeType, part.InlineData.Data)
		}
		if part.Text != "" {
			return domain.EncodedImage{}, domain.RemoteRefusal(domain.CodeTextRefusal, "image generation refused: "+part.Text)
		}
	}
	return domain.EncodedImage{}, domain.RemoteRefusal(domain.CodeNoImage, "the response did not contain image data")
}
