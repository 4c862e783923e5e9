package imaging

import (
	"encoding/base64"
	"regexp"
	"strings"

	"archedit/internal/domain"
)

var dataURLMIME = regexp.MustCompile(`^data:(.*?);`)

// ParseDataURL splits a base64 data URL into its MIME type and decoded bytes.
func ParseDataURL(raw string) (domain.EncodedImage, error) {
	header, payload, ok := strings.Cut(strings.TrimSpace(raw), ",")
	if !ok || header == "" || payload == "" {
		return domain.EncodedImage{}, domain.Encoding("malformed data url")
	}
	match := dataURLMIME.FindStringSubmatch(header)
	if match == nil || match[1] == "" {
		return domain.EncodedImage{}, domain.Encoding("cannot extract mime type from data url")
	}
	if !strings.HasSuffix(header, ";base64") {
		return domain.EncodedImage{}, domain.Encoding("data url is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return domain.EncodedImage{}, domain.Encoding("decode data url: %v", err)
	}
	return domain.EncodedImage{MIME: match[1], Data: data}, nil
}

// DataURL renders img as a base64 data URL.
func DataURL(img domain.EncodedImage) string {
	mime := img.MIME
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// DecodeBase64 decodes a raw base64 payload as returned by the generation API.
func DecodeBase64(mime, payload string) (domain.EncodedImage, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return domain.EncodedImage{}, domain.Encoding("decode image payload: %v", err)
	}
	if mime == "" {
		mime = "image/png"
	}
	return domain.EncodedImage{MIME: mime, Data: data}, nil
}
