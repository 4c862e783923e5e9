package genai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"archedit/internal/domain"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestGenerateContentPostsToModelEndpoint(t *testing.T) {
	var gotPath, gotKey string
	var gotBody GenerateContentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"inlineData":{"mimeType":"image/png","data":"aGk="}}]},"finishReason":"STOP"}]}`)
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL + "/"})
	resp, err := client.GenerateContent(context.Background(), "gemini-2.5-flash-image", " key-1 ", GenerateContentRequest{
		Contents:         []Content{{Role: "user", Parts: []Part{TextPart("hello")}}},
		GenerationConfig: &GenerationConfig{ResponseModalities: []string{"IMAGE"}},
	})
	if err != nil {
		t.Fatalf("GenerateContent error: %v", err)
	}
	if gotPath != "/models/gemini-2.5-flash-image:generateContent" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotKey != "key-1" {
		t.Fatalf("key = %q", gotKey)
	}
	if gotBody.GenerationConfig == nil || gotBody.GenerationConfig.ResponseModalities[0] != "IMAGE" {
		t.Fatalf("generationConfig = %+v", gotBody.GenerationConfig)
	}
	img, err := FirstImage(resp)
	if err != nil {
		t.Fatalf("FirstImage error: %v", err)
	}
	if string(img.Data) != "hi" || img.MIME != "image/png" {
		t.Fatalf("image = %q %q", img.MIME, img.Data)
	}
}

func TestGenerateContentSurfacesAPIErrorMessage(t *testing.T) {
	client := NewClient(Options{HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(strings.NewReader(`{"error":{"code":404,"message":"Requested entity was not found.","status":"NOT_FOUND"}}`)),
			Header:     make(http.Header),
		}, nil
	})}})
	_, err := client.GenerateContent(context.Background(), "m", "k", GenerateContentRequest{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %T %v, want *APIError", err, err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Message != "Requested entity was not found." {
		t.Fatalf("apiErr = %+v", apiErr)
	}
}

func TestGenerateContentPlainErrorBody(t *testing.T) {
	client := NewClient(Options{HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusBadGateway,
			Body:       io.NopCloser(strings.NewReader("upstream down")),
			Header:     make(http.Header),
		}, nil
	})}})
	_, err := client.GenerateContent(context.Background(), "m", "k", GenerateContentRequest{})
	if err == nil || !strings.Contains(err.Error(), "upstream down") {
		t.Fatalf("err = %v", err)
	}
}

func TestGenerateContentRequiresKey(t *testing.T) {
	called := false
	client := NewClient(Options{HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		called = true
		return nil, errors.New("unreachable")
	})}})
	if _, err := client.GenerateContent(context.Background(), "m", "  ", GenerateContentRequest{}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("err = %v", err)
	}
	if called {
		t.Fatal("transport must not be called without a key")
	}
}

func TestFirstImageRefusals(t *testing.T) {
	tests := []struct {
		name string
		resp *GenerateContentResponse
		code string
	}{
		{"nil response", nil, domain.CodeNoCandidates},
		{"no candidates", &GenerateContentResponse{}, domain.CodeNoCandidates},
		{"safety", &GenerateContentResponse{Candidates: []Candidate{{FinishReason: "SAFETY", Content: &Content{Parts: []Part{InlinePart("image/png", "aGk=")}}}}}, domain.CodeSafetyBlocked},
		{"no content", &GenerateContentResponse{Candidates: []Candidate{{FinishReason: "OTHER"}}}, domain.CodeNoContent},
		{"empty parts", &GenerateContentResponse{Candidates: []Candidate{{Content: &Content{}}}}, domain.CodeNoContent},
		{"text before image", &GenerateContentResponse{Candidates: []Candidate{{Content: &Content{Parts: []Part{TextPart("I can't do that"), InlinePart("image/png", "aGk=")}}}}}, domain.CodeTextRefusal},
		{"no image part", &GenerateContentResponse{Candidates: []Candidate{{Content: &Content{Parts: []Part{{}}}}}}, domain.CodeNoImage},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FirstImage(tc.resp)
			if domain.KindOf(err) != domain.KindRemoteRefusal || domain.CodeOf(err) != tc.code {
				t.Fatalf("FirstImage err = %v (code %s), want %s", err, domain.CodeOf(err), tc.code)
			}
		})
	}
}

func TestFirstImageTextRefusalKeepsModelText(t *testing.T) {
	_, err := FirstImage(&GenerateContentResponse{Candidates: []Candidate{{Content: &Content{Parts: []Part{TextPart("no people allowed")}}}}})
	if err == nil || !strings.Contains(err.Error(), "no people allowed") {
		t.Fatalf("err = %v", err)
	}
}
