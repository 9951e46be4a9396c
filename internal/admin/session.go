package admin

import (
	"context"
	"sync"
)

// TokenStore persists the admin token between runs
type TokenStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// TokenKey is the client state key holding the bearer token
const TokenKey = "admin_token"

// Session holds the admin bearer token in memory and mirrors it to a TokenStore
type Session struct {
	store TokenStore

	mu    sync.RWMutex
	token string
}

// NewSession creates an empty session. store may be nil for an in-memory session.
func NewSession(store TokenStore) *Session {
	return &Session{store: store}
}

// Load reads a previously saved token, if any
func (s *Session) Load(ctx context.Context) (string, error) {
	if s.store == nil {
		return s.Token(), nil
	}
	token, _, err := s.store.Get(ctx, TokenKey)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return token, nil
}

// Save keeps token in memory and in the store
func (s *Session) Save(ctx context.Context, token string) error {
	s.Use(token)
	if s.store == nil {
		return nil
	}
	return s.store.Set(ctx, TokenKey, token)
}

// Use sets the in-memory token without persisting it
func (s *Session) Use(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Clear forgets the token everywhere
func (s *Session) Clear(ctx context.Context) error {
	s.Use("")
	if s.store == nil {
		return nil
	}
	return s.store.Delete(ctx, TokenKey)
}

// Token returns the current token, empty when logged out
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated reports whether a token is held
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}
