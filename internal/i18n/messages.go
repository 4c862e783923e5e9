// Package i18n localises user-facing error messages by code.
package i18n

import (
	"errors"
	"strings"

	"golang.org/x/text/language"

	"archedit/internal/domain"
)

const (
	English = "en"
	Korean  = "ko"
)

var (
	supported = []language.Tag{language.English, language.Korean}
	matcher   = language.NewMatcher(supported)
)

// verbatim codes carry text produced by the remote model or transport.
var verbatim = map[string]struct{}{
	domain.CodeTextRefusal:   {},
	domain.CodeRemoteFailure: {},
}

var catalog = map[string]map[string]string{
	English: {
		domain.CodeImageRequired:       "Upload an image first.",
		domain.CodePromptRequired:      "Upload an image and enter a prompt.",
		domain.CodeCredentialRequired:  "An API key is required. Enter a key in settings.",
		domain.CodeCredentialEmpty:     "Enter an API key.",
		domain.CodeCredentialPrefix:    "Invalid API key format. Enter a key that starts with 'AIzaSy'.",
		domain.CodeCredentialLength:    "The API key format is invalid (length error).",
		domain.CodeNothingToUpscale:    "There is no image to upscale.",
		domain.CodeNothingPending:      "There is no result to apply.",
		domain.CodeInvalidResolution:   "Resolution must be 2K or 4K.",
		domain.CodeUnsupportedTool:     "That tool is not supported.",
		domain.CodeUnsupportedImage:    "The file is not a supported image (PNG, JPEG, WebP or GIF).",
		domain.CodeInvalidLayout:       "The display area is invalid or too large.",
		domain.CodeGenerationBusy:      "A generation is already in progress.",
		domain.CodeRateLimited:         "Too many requests. Try again shortly.",
		domain.CodeSuperseded:          "The session was reset before the result arrived.",
		domain.CodeSafetyBlocked:       "The image was not generated because of the safety filter.",
		domain.CodeNoCandidates:        "The AI model returned no response (no candidates returned).",
		domain.CodeNoContent:           "No content was generated.",
		domain.CodeNoImage:             "The response did not contain image data.",
		domain.CodeEntityNotFound:      "The API key has no permission or the project was not found. Check that it is a paid-plan API key.",
		domain.CodeMalformedDataURL:    "The image data could not be read.",
		domain.CodeInternal:            "An unexpected error occurred.",
		domain.CodeSessionNotFound:     "Editing session not found.",
		domain.CodeHistoryStepNotFound: "History step not found.",
	},
	Korean: {
		domain.CodeImageRequired:       "이미지를 먼저 업로드해주세요.",
		domain.CodePromptRequired:      "이미지를 업로드하고 프롬프트를 입력해주세요.",
		domain.CodeCredentialRequired:  "API 키가 필요합니다. 설정에서 키를 입력해주세요.",
		domain.CodeCredentialEmpty:     "API 키를 입력해주세요.",
		domain.CodeCredentialPrefix:    "유효하지 않은 API 키 형식입니다. 'AIzaSy'로 시작하는 키를 입력해주세요.",
		domain.CodeCredentialLength:    "API 키 형식이 올바르지 않습니다. (길이 오류)",
		domain.CodeNothingToUpscale:    "업스케일할 이미지가 없습니다.",
		domain.CodeNothingPending:      "적용할 결과가 없습니다.",
		domain.CodeInvalidResolution:   "해상도는 2K 또는 4K만 지원합니다.",
		domain.CodeUnsupportedTool:     "지원하지 않는 도구입니다.",
		domain.CodeUnsupportedImage:    "지원하지 않는 이미지 형식입니다. (PNG, JPEG, WebP, GIF)",
		domain.CodeInvalidLayout:       "표시 영역이 올바르지 않거나 너무 큽니다.",
		domain.CodeGenerationBusy:      "이미 이미지 생성이 진행 중입니다.",
		domain.CodeRateLimited:         "요청이 너무 많습니다. 잠시 후 다시 시도해주세요.",
		domain.CodeSuperseded:          "결과가 도착하기 전에 세션이 초기화되었습니다.",
		domain.CodeSafetyBlocked:       "안전 정책 위반(Safety Filter)으로 인해 이미지가 생성되지 않았습니다.",
		domain.CodeNoCandidates:        "AI 모델에서 응답이 없습니다. (No candidates returned)",
		domain.CodeNoContent:           "생성된 콘텐츠가 없습니다.",
		domain.CodeNoImage:             "응답에 이미지 데이터가 포함되지 않았습니다.",
		domain.CodeEntityNotFound:      "API 키에 권한이 없거나 프로젝트를 찾을 수 없습니다. 유효한 유료 계정 API 키인지 확인해주세요.",
		domain.CodeMalformedDataURL:    "이미지 데이터를 읽을 수 없습니다.",
		domain.CodeInternal:            "알 수 없는 오류가 발생했습니다.",
		domain.CodeSessionNotFound:     "편집 세션을 찾을 수 없습니다.",
		domain.CodeHistoryStepNotFound: "히스토리 단계를 찾을 수 없습니다.",
	},
}

// Normalize maps a language tag or Accept-Language header onto a supported
// locale, defaulting to English.
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return English
	}
	tags, _, err := language.ParseAcceptLanguage(raw)
	if err != nil || len(tags) == 0 {
		return English
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return English
	}
	if supported[idx] == language.Korean {
		return Korean
	}
	return English
}

// Lookup returns the catalog entry for code.
func Lookup(locale, code string) (string, bool) {
	msgs, ok := catalog[Normalize(locale)]
	if !ok {
		return "", false
	}
	msg, ok := msgs[code]
	return msg, ok
}

// Message renders err for a user in locale. Remote text is passed through.
func Message(locale string, err error) string {
	if err == nil {
		return ""
	}
	var de *domain.Error
	if !errors.As(err, &de) {
		msg, _ := Lookup(locale, domain.CodeInternal)
		return msg
	}
	return MessageFor(locale, de.Code, de.Error())
}

// MessageFor localises a stored code, falling back to raw.
func MessageFor(locale, code, raw string) string {
	if _, ok := verbatim[code]; ok {
		return raw
	}
	if msg, ok := Lookup(locale, code); ok {
		return msg
	}
	return raw
}
