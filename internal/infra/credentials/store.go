// Package credentials persists the Gemini API key with a fixed validity
// window. Expiry is evaluated whenever the key is read.
package credentials

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"archedit/internal/domain"
)

const (
	KeyAPIKey   = "gemini_api_key"
	KeyIssuedAt = "gemini_api_key_timestamp"

	Validity     = 24 * time.Hour
	KeyPrefix    = "AIzaSy"
	MinKeyLength = 39
)

const (
	SourceStore = "store"
	SourceEnv   = "env"
)

// KV is the two-entry settings backend.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Credential is a usable API key. ExpiresAt is zero for keys that never expire.
type Credential struct {
	Key       string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Source    string
}

// Masked returns the key with everything but its prefix and last four
// characters hidden.
func (c Credential) Masked() string {
	if len(c.Key) <= len(KeyPrefix)+4 {
		return strings.Repeat("*", len(c.Key))
	}
	return c.Key[:len(KeyPrefix)] + strings.Repeat("*", len(c.Key)-len(KeyPrefix)-4) + c.Key[len(c.Key)-4:]
}

type Store struct {
	kv       KV
	now      func() time.Time
	fallback string
}

type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithFallbackKey supplies an operator key used when nothing is stored.
func WithFallbackKey(key string) Option {
	return func(s *Store) { s.fallback = strings.TrimSpace(key) }
}

func NewStore(kv KV, opts ...Option) *Store {
	s := &Store{kv: kv, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate checks the shape of a Gemini API key.
func Validate(key string) error {
	key = strings.TrimSpace(key)
	switch {
	case key == "":
		return domain.CredentialFormat(domain.CodeCredentialEmpty, "API key is required")
	case !strings.HasPrefix(key, KeyPrefix):
		return domain.CredentialFormat(domain.CodeCredentialPrefix, fmt.Sprintf("API key must start with %q", KeyPrefix))
	case len(key) < MinKeyLength:
		return domain.CredentialFormat(domain.CodeCredentialLength, "API key has an invalid length")
	}
	return nil
}

// Save validates key and stores it together with the current time.
func (s *Store) Save(ctx context.Context, key string) (Credential, error) {
	key = strings.TrimSpace(key)
	if err := Validate(key); err != nil {
		return Credential{}, err
	}
	issued := s.now()
	if err := s.kv.Set(ctx, KeyAPIKey, key); err != nil {
		return Credential{}, fmt.Errorf("credentials: save key: %w", err)
	}
	if err := s.kv.Set(ctx, KeyIssuedAt, strconv.FormatInt(issued.UnixMilli(), 10)); err != nil {
		return Credential{}, fmt.Errorf("credentials: save timestamp: %w", err)
	}
	return Credential{Key: key, IssuedAt: issued, ExpiresAt: issued.Add(Validity), Source: SourceStore}, nil
}

// Resolve returns the stored key if it is still within its validity window.
// Expired keys and keys without a readable timestamp are removed and reported
// absent. Without a stored key the fallback key, if any, is returned.
func (s *Store) Resolve(ctx context.Context) (Credential, bool, error) {
	key, ok, err := s.kv.Get(ctx, KeyAPIKey)
	if err != nil {
		return Credential{}, false, fmt.Errorf("credentials: read key: %w", err)
	}
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return s.fallbackCredential()
	}
	raw, ok, err := s.kv.Get(ctx, KeyIssuedAt)
	if err != nil {
		return Credential{}, false, fmt.Errorf("credentials: read timestamp: %w", err)
	}
	ms, perr := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if !ok || perr != nil {
		if err := s.Clear(ctx); err != nil {
			return Credential{}, false, err
		}
		return s.fallbackCredential()
	}
	issued := time.UnixMilli(ms)
	if s.now().Sub(issued) > Validity {
		if err := s.Clear(ctx); err != nil {
			return Credential{}, false, err
		}
		return s.fallbackCredential()
	}
	return Credential{Key: key, IssuedAt: issued, ExpiresAt: issued.Add(Validity), Source: SourceStore}, true, nil
}

// Clear removes both entries.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, KeyAPIKey, KeyIssuedAt); err != nil {
		return fmt.Errorf("credentials: clear: %w", err)
	}
	return nil
}

func (s *Store) fallbackCredential() (Credential, bool, error) {
	if s.fallback == "" {
		return Credential{}, false, nil
	}
	return Credential{Key: s.fallback, Source: SourceEnv}, true, nil
}
