package editor

import (
	"testing"
	"time"

	"archedit/internal/domain"
)

func TestRegistryLifecycle(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	reg := NewRegistry(Deps{Now: func() time.Time { return now }})

	s := reg.Create()
	got, err := reg.Get(s.ID())
	if err != nil || got != s {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if _, err := reg.Get("missing"); domain.CodeOf(err) != domain.CodeSessionNotFound {
		t.Fatalf("code = %q", domain.CodeOf(err))
	}

	fresh := reg.Create()
	now = now.Add(time.Hour)
	fresh.SetPrompt("keep me")
	if n := reg.Sweep(30 * time.Minute); n != 1 {
		t.Fatalf("Sweep = %d, want 1", n)
	}
	if _, err := reg.Get(s.ID()); err == nil {
		t.Fatal("idle session should be gone")
	}
	if _, err := reg.Get(fresh.ID()); err != nil {
		t.Fatalf("active session removed: %v", err)
	}
	reg.Delete(fresh.ID())
	if reg.Len() != 0 {
		t.Fatalf("Len = %d", reg.Len())
	}
}
