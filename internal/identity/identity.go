// Package identity wraps the external identity provider. The service only
// ever verifies bearer tokens and registers users; password exchange and
// session refresh stay on the client SDK.
package identity

import (
	"context"
	"sync"

	"github.com/spendware/walletd/internal/errs"
)

// Verifier checks a bearer token and returns the owning user's UID.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// Provider adds account registration on top of verification.
type Provider interface {
	Verifier
	Register(ctx context.Context, email, password, displayName string) (string, error)
}

// StaticVerifier maps fixed tokens to UIDs. Development and test use only.
type StaticVerifier struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// NewStaticVerifier builds a verifier from a token -> UID map.
func NewStaticVerifier(tokens map[string]string) *StaticVerifier {
	m := make(map[string]string, len(tokens))
	for k, v := range tokens {
		m[k] = v
	}
	return &StaticVerifier{tokens: m}
}

// Add registers one more token mapping.
func (s *StaticVerifier) Add(token, uid string) {
	s.mu.Lock()
	s.tokens[token] = uid
	s.mu.Unlock()
}

func (s *StaticVerifier) Verify(_ context.Context, token string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uid, ok := s.tokens[token]
	if !ok {
		return "", errs.ErrNotFound
	}
	return uid, nil
}
