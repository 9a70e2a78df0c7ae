// ABOUTME: Tests for the SQLite token store
// ABOUTME: Covers upsert, lookup, deletion, listing and persistence across reopen

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func TestSQLiteStore_SetAndGetToken(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetToken(ctx, "jira_token", "abc123"))

	tok, err := store.GetToken(ctx, "jira_token")
	require.NoError(t, err)
	assert.Equal(t, "jira_token", tok.Key)
	assert.Equal(t, "abc123", tok.Value)
	assert.False(t, tok.UpdatedAt.IsZero())
}

func TestSQLiteStore_LastWriteWins(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetToken(ctx, "notion_token", "first"))
	require.NoError(t, store.SetToken(ctx, "notion_token", "second"))

	tok, err := store.GetToken(ctx, "notion_token")
	require.NoError(t, err)
	assert.Equal(t, "second", tok.Value)

	tokens, err := store.ListTokens(ctx)
	require.NoError(t, err)
	assert.Len(t, tokens, 1)
}

func TestSQLiteStore_GetToken_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetToken(context.Background(), "missing_token")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_SetToken_EmptyKey(t *testing.T) {
	store := setupTestStore(t)

	err := store.SetToken(context.Background(), "", "value")
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestSQLiteStore_DeleteToken(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetToken(ctx, "confluence_token", "xyz"))
	require.NoError(t, store.DeleteToken(ctx, "confluence_token"))

	_, err := store.GetToken(ctx, "confluence_token")
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.DeleteToken(ctx, "confluence_token")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_ListTokens_Ordered(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetToken(ctx, "notion_token", "n"))
	require.NoError(t, store.SetToken(ctx, "confluence_token", "c"))
	require.NoError(t, store.SetToken(ctx, "jira_token", "j"))

	tokens, err := store.ListTokens(ctx)
	require.NoError(t, err)
	require.Len(t, tokens, 3)
	assert.Equal(t, "confluence_token", tokens[0].Key)
	assert.Equal(t, "jira_token", tokens[1].Key)
	assert.Equal(t, "notion_token", tokens[2].Key)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "copilot.db")
	ctx := context.Background()

	first, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, first.SetToken(ctx, "jira_token", "abc123"))
	require.NoError(t, first.Close())

	second, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer second.Close()

	tok, err := second.GetToken(ctx, "jira_token")
	require.NoError(t, err)
	assert.Equal(t, "abc123", tok.Value)
}

func TestSQLiteStore_InMemory(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Ping(ctx))
	require.NoError(t, store.SetToken(ctx, "jira_token", "mem"))

	tok, err := store.GetToken(ctx, "jira_token")
	require.NoError(t, err)
	assert.Equal(t, "mem", tok.Value)
}
