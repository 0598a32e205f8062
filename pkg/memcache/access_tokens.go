// pkg/mem/access_tokens.go
package mem

import (
	"context"
	"sync"
	"time"
)

// TokenStore holds short-lived credentials keyed by integration.
type TokenStore interface {
	// Get returns the token for key if present and not expired.
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, token string, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

type entry struct {
	token     string
	expiresAt time.Time
}

type AccessTokens struct {
	mu   sync.RWMutex
	data map[string]entry
	now  func() time.Time
}

func NewAccessTokens() *AccessTokens {
	return &AccessTokens{
		data: make(map[string]entry),
		now:  time.Now,
	}
}

func (s *AccessTokens) Set(_ context.Context, key string, token string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = entry{
		token:     token,
		expiresAt: s.now().Add(ttl),
	}
}

func (s *AccessTokens) Get(_ context.Context, key string) (string, bool) {
	s.mu.RLock()
	e, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return "", false
	}
	if !s.now().Before(e.expiresAt) {
		s.mu.Lock()
		// re-check: another writer may have refreshed it
		if cur, ok := s.data[key]; ok && !s.now().Before(cur.expiresAt) {
			delete(s.data, key)
		}
		s.mu.Unlock()
		return "", false
	}
	return e.token, true
}

func (s *AccessTokens) Delete(_ context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}
