package domain

import "strings"

// EncodedImage is an image in a transferable binary representation.
type EncodedImage struct {
	MIME string
	Data []byte
}

// Empty reports whether the image carries no bytes.
func (e *EncodedImage) Empty() bool {
	return e == nil || len(e.Data) == 0
}

// BlobRef addresses stored image bytes by content. Key is the hex SHA-256 of the
// bytes, so two refs are equal exactly when their contents are.
type BlobRef struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
	MIME string `json:"mime"`
}

// IsZero reports whether the ref points at nothing.
func (b BlobRef) IsZero() bool { return b.Key == "" }

// ToolKind enumerates canvas tools. New tools extend the set without changing the
// editor state machine.
type ToolKind string

const (
	ToolMask ToolKind = "mask"

	DefaultTool = ToolMask
)

var knownTools = map[ToolKind]struct{}{
	ToolMask: {},
}

// ParseTool normalizes free-form input into a supported tool.
func ParseTool(raw string) (ToolKind, bool) {
	tool := ToolKind(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := knownTools[tool]
	return tool, ok
}

// Resolution is an upscale target tier.
type Resolution string

const (
	Resolution2K Resolution = "2K"
	Resolution4K Resolution = "4K"
)

// ParseResolution accepts "2k"/"2K"/"4k"/"4K".
func ParseResolution(raw string) (Resolution, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(Resolution2K):
		return Resolution2K, true
	case string(Resolution4K):
		return Resolution4K, true
	default:
		return "", false
	}
}
