package api

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TokenStore holds the bearer token for the process. When path is set the
// token is persisted there with mode 0600.
type TokenStore struct {
	mu    sync.RWMutex
	token string
	path  string
}

// NewTokenStore creates a store backed by path, loading any saved token.
// An empty path keeps the token in memory only.
func NewTokenStore(path string) *TokenStore {
	s := &TokenStore{path: path}
	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			s.token = strings.TrimSpace(string(data))
		}
	}
	return s
}

// Get returns the current token, or "" when logged out.
func (s *TokenStore) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Seed sets the token in memory without persisting it. Used for TALLY_TOKEN.
func (s *TokenStore) Seed(token string) {
	s.mu.Lock()
	s.token = strings.TrimSpace(token)
	s.mu.Unlock()
}

// Set stores and persists the token.
func (s *TokenStore) Set(token string) error {
	token = strings.TrimSpace(token)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("creating token dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing token: %w", err)
	}
	return nil
}

// Clear forgets the token and removes the saved copy.
func (s *TokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing token: %w", err)
	}
	return nil
}

// LoggedIn reports whether a token is present.
func (s *TokenStore) LoggedIn() bool { return s.Get() != "" }
