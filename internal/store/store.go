// ABOUTME: Store interface and data types for copilot persistence
// ABOUTME: Defines the Token record and the key-value contract for source credentials

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrEmptyKey is returned when a write is attempted without a key
var ErrEmptyKey = errors.New("empty key")

// Token is one stored source credential. Keys follow the "<sourceId>_token" pattern.
type Token struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// Store is the persistent key-value store for source tokens.
// Writes are last-write-wins; there is no locking discipline across writers.
type Store interface {
	SetToken(ctx context.Context, key, value string) error
	GetToken(ctx context.Context, key string) (*Token, error)
	DeleteToken(ctx context.Context, key string) error
	ListTokens(ctx context.Context) ([]*Token, error)

	// Ping reports whether the backing database is reachable
	Ping(ctx context.Context) error

	// Close releases any resources held by the store
	Close() error
}
