package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorIsMatchesKindAndCode(t *testing.T) {
	err := fmt.Errorf("generate: %w", &Error{Kind: KindBusy, Code: CodeGenerationBusy})
	if !errors.Is(err, ErrBusy) {
		t.Fatal("expected wrapped busy error to match ErrBusy")
	}
	if errors.Is(err, ErrCredentialRequired) {
		t.Fatal("busy error must not match credential required")
	}
	notFound := NotFound(CodeSessionNotFound, "session not found")
	if !errors.Is(notFound, ErrNotFound) {
		t.Fatal("expected code-less sentinel to match any not-found error")
	}
}

func TestKindAndCodeOf(t *testing.T) {
	err := RemoteFailure(errors.New("dial tcp: refused"))
	if KindOf(err) != KindRemoteFailure {
		t.Fatalf("KindOf = %q", KindOf(err))
	}
	if CodeOf(err) != CodeRemoteFailure {
		t.Fatalf("CodeOf = %q", CodeOf(err))
	}
	if err.Error() != "dial tcp: refused" {
		t.Fatalf("message = %q", err.Error())
	}
	if CodeOf(errors.New("plain")) != CodeInternal {
		t.Fatal("untyped errors should map to internal")
	}
	if KindOf(errors.New("plain")) != "" {
		t.Fatal("untyped errors have no kind")
	}
}

func TestParseToolAndResolution(t *testing.T) {
	if tool, ok := ParseTool(" Mask "); !ok || tool != ToolMask {
		t.Fatalf("ParseTool = %q, %v", tool, ok)
	}
	if _, ok := ParseTool("lasso"); ok {
		t.Fatal("lasso is not a supported tool")
	}
	tests := []struct {
		in   string
		want Resolution
		ok   bool
	}{
		{"2k", Resolution2K, true},
		{"4K", Resolution4K, true},
		{"8K", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		got, ok := ParseResolution(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseResolution(%q) = %q, %v", tc.in, got, ok)
		}
	}
}
