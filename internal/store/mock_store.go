// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite and to inject write failures

package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu     sync.RWMutex
	tokens map[string]*Token

	// SetErr, when non-nil, is returned from SetToken without writing
	SetErr error

	writes int
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		tokens: make(map[string]*Token),
	}
}

// SetToken upserts a token.
func (m *MockStore) SetToken(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SetErr != nil {
		return m.SetErr
	}
	if key == "" {
		return ErrEmptyKey
	}

	m.tokens[key] = &Token{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	m.writes++
	return nil
}

// GetToken retrieves a copy of a token.
func (m *MockStore) GetToken(ctx context.Context, key string) (*Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tok, ok := m.tokens[key]
	if !ok {
		return nil, ErrNotFound
	}
	result := *tok
	return &result, nil
}

// DeleteToken removes a token.
func (m *MockStore) DeleteToken(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tokens[key]; !ok {
		return ErrNotFound
	}
	delete(m.tokens, key)
	return nil
}

// ListTokens returns copies of all tokens ordered by key.
func (m *MockStore) ListTokens(ctx context.Context) ([]*Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tokens := make([]*Token, 0, len(m.tokens))
	for _, tok := range m.tokens {
		c := *tok
		tokens = append(tokens, &c)
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i].Key < tokens[j].Key })
	return tokens, nil
}

// Writes returns how many successful SetToken calls were made.
func (m *MockStore) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

// Ping always succeeds.
func (m *MockStore) Ping(ctx context.Context) error { return nil }

// Close is a no-op.
func (m *MockStore) Close() error { return nil }

var _ Store = (*MockStore)(nil)
