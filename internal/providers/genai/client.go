package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"archedit/internal/infra"
)

// ErrMissingAPIKey is returned when a call is attempted without a key.
var ErrMissingAPIKey = errors.New("genai: api key is required")

const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Options controls how the Gemini client is configured.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *infra.Logger
}

// Client talks to the Gemini generateContent REST endpoint. The API key is
// supplied per call because users rotate it at runtime.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// APIError carries the status and message of a failed Gemini call.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("gemini status %d", e.StatusCode)
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts,omitempty"`
}

type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

type InlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type ImageConfig struct {
	ImageSize   string `json:"imageSize,omitempty"`
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type GenerationConfig struct {
	ResponseModalities []string     `json:"responseModalities,omitempty"`
	ImageConfig        *ImageConfig `json:"imageConfig,omitempty"`
	CandidateCount     int          `json:"candidateCount,omitempty"`
}

type GenerateContentRequest struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

type Candidate struct {
	Content      *Content `json:"content,omitempty"`
	FinishReason string   `json:"finishReason,omitempty"`
}

type GenerateContentResponse struct {
	Candidates    []Candidate `json:"candidates"`
	ModelVersion  string      `json:"modelVersion,omitempty"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount,omitempty"`
		CandidatesTokenCount int `json:"candidatesTokenCount,omitempty"`
		TotalTokenCount      int `json:"totalTokenCount,omitempty"`
	} `json:"usageMetadata,omitempty"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
		Status  string `json:"status,omitempty"`
	} `json:"error"`
}

// NewClient constructs a Gemini client. A nil HTTP client is replaced with
// one using opts.Timeout (two minutes when unset).
func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 2 * time.Minute
		}
		client = &http.Client{Timeout: timeout}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	logger := opts.Logger
	if logger == nil {
		logger = infra.Discard()
	}

	return &Client{baseURL: baseURL, httpClient: client, logger: logger}
}

// InlinePart wraps base64 payload bytes as an inline data part.
func InlinePart(mime, base64Data string) Part {
	return Part{InlineData: &InlineData{MimeType: mime, Data: base64Data}}
}

// TextPart wraps a text instruction.
func TextPart(text string) Part {
	return Part{Text: text}
}

// GenerateContent posts req to models/{model}:generateContent.
func (c *Client) GenerateContent(ctx context.Context, model, apiKey string, req GenerateContentRequest) (*GenerateContentResponse, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	path := fmt.Sprintf("/models/%s:generateContent", url.PathEscape(model))
	started := time.Now()

	var out GenerateContentResponse
	if err := c.invoke(ctx, path, apiKey, req, &out); err != nil {
		c.logger.Warn().
			Err(err).
			Str("model", model).
			Dur("elapsed", time.Since(started)).
			Msg("genai: generateContent failed")
		return nil, err
	}

	c.logger.Debug().
		Str("model", model).
		Int("candidates", len(out.Candidates)).
		Dur("elapsed", time.Since(started)).
		Msg("genai: generateContent ok")
	return &out, nil
}

func (c *Client) invoke(ctx context.Context, path, apiKey string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	q := req.URL.Query()
	q.Set("key", apiKey)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var envelope errorResponse
		if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error.Message != "" {
			apiErr.Message = envelope.Error.Message
			apiErr.Status = envelope.Error.Status
		} else if trimmed := strings.TrimSpace(string(data)); trimmed != "" {
			apiErr.Message = fmt.Sprintf("gemini status %d: %s", resp.StatusCode, trimmed)
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	return nil
}
