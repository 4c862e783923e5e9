package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures surfaced to the user.
type ErrorKind string

const (
	KindValidation       ErrorKind = "validation"
	KindCredentialFormat ErrorKind = "credential_format"
	KindRemoteRefusal    ErrorKind = "remote_refusal"
	KindRemoteFailure    ErrorKind = "remote_failure"
	KindEncoding         ErrorKind = "encoding"
	KindBusy             ErrorKind = "busy"
	KindNotFound         ErrorKind = "not_found"
	KindInternal         ErrorKind = "internal"
)

// Message codes. Handlers localise these; remote messages travel verbatim.
const (
	CodeImageRequired       = "image_required"
	CodePromptRequired      = "prompt_required"
	CodeCredentialRequired  = "credential_required"
	CodeCredentialEmpty     = "credential_empty"
	CodeCredentialPrefix    = "credential_prefix"
	CodeCredentialLength    = "credential_length"
	CodeNothingToUpscale    = "nothing_to_upscale"
	CodeNothingPending      = "nothing_pending"
	CodeInvalidResolution   = "invalid_resolution"
	CodeUnsupportedTool     = "unsupported_tool"
	CodeUnsupportedImage    = "unsupported_image"
	CodeInvalidLayout       = "invalid_layout"
	CodeGenerationBusy      = "generation_busy"
	CodeRateLimited         = "rate_limited"
	CodeSuperseded          = "superseded"
	CodeSafetyBlocked       = "safety_blocked"
	CodeNoCandidates        = "no_candidates"
	CodeNoContent           = "no_content"
	CodeTextRefusal         = "text_refusal"
	CodeNoImage             = "no_image"
	CodeEntityNotFound      = "entity_not_found"
	CodeRemoteFailure       = "remote_failure"
	CodeMalformedDataURL    = "malformed_data_url"
	CodeInternal            = "internal"
	CodeSessionNotFound     = "session_not_found"
	CodeHistoryStepNotFound = "history_step_not_found"
)

// Error is the typed failure used across the editor core.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinel errors by kind and code so callers can use errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

var (
	ErrBusy               = &Error{Kind: KindBusy, Code: CodeGenerationBusy, Message: "a generation request is already in progress"}
	ErrCredentialRequired = &Error{Kind: KindValidation, Code: CodeCredentialRequired, Message: "an API key is required; save one in settings"}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrSuperseded         = &Error{Kind: KindBusy, Code: CodeSuperseded, Message: "the session was reset while the request was running"}
)

func Validation(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

func CredentialFormat(code, message string) *Error {
	return &Error{Kind: KindCredentialFormat, Code: code, Message: message}
}

func RemoteRefusal(code, message string) *Error {
	return &Error{Kind: KindRemoteRefusal, Code: code, Message: message}
}

// RemoteFailure wraps a transport error, keeping the collaborator's message.
func RemoteFailure(err error) *Error {
	return &Error{Kind: KindRemoteFailure, Code: CodeRemoteFailure, Message: err.Error(), Err: err}
}

func Encoding(format string, args ...any) *Error {
	return &Error{Kind: KindEncoding, Code: CodeMalformedDataURL, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps a local failure such as a storage read. Its text is never
// shown to users.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: err.Error(), Err: err}
}

func NotFound(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

// KindOf reports the taxonomy kind of err, or "" for untyped errors.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// CodeOf reports the message code of err, falling back to CodeInternal.
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Code != "" {
		return de.Code
	}
	return CodeInternal
}
