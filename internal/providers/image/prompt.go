package image

import (
	"fmt"
	"strings"

	"archedit/internal/domain"
)

// DefaultUpscalePrompt is sent when the user has not typed anything.
const DefaultUpscalePrompt = "High resolution, highly detailed architectural photography, 8k, photorealistic. Enhance details, textures, and lighting while maintaining the original composition and geometry."

const maskInstruction = " \n\n[MASK INSTRUCTION]: The second image provided above is a MASK (transparent with pink strokes). \n1. The pink brush strokes define the EDIT REGION. \n2. Keep all areas NOT covered by pink strokes EXACTLY as they are in the original image. \n3. Only generate new content matching the prompt/reference inside the pink masked area. \n4. Blend the edges naturally."

const referenceInstruction = " \n\n[ITEM REFERENCE]: The image provided just now is an ITEM REFERENCE. Use the object/furniture/structure shown in this image as the visual target for the prompt. \n- If a mask is provided, place a variation of this item inside the masked area, matching the perspective of the main scene. \n- If no mask is provided, integrate this item into the scene appropriately."

// FullPrompt frames a user instruction for an architectural edit.
func FullPrompt(userPrompt string) string {
	return fmt.Sprintf("For the given architectural photo, %s. Maintain realism, proper lighting, and perspective.", strings.TrimSpace(userPrompt))
}

// UpscalePrompt folds the user's prompt into an upscale instruction, or
// returns "" so the provider falls back to DefaultUpscalePrompt.
func UpscalePrompt(userPrompt string, res domain.Resolution) string {
	userPrompt = strings.TrimSpace(userPrompt)
	if userPrompt == "" {
		return ""
	}
	return fmt.Sprintf("%s. High resolution, %s highly detailed.", userPrompt, res)
}

// editText appends the mask and reference instructions that apply.
func editText(prompt string, hasMask, hasReference bool) string {
	var b strings.Builder
	if hasMask {
		b.WriteString(maskInstruction)
	}
	if hasReference {
		b.WriteString(referenceInstruction)
	}
	return prompt + " \n" + b.String()
}
