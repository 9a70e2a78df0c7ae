// ABOUTME: Tests for the sealing store decorator
// ABOUTME: Verifies values are encrypted at rest and round-trip through the wrapper

package store

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealedStore_RoundTrip(t *testing.T) {
	inner := NewMockStore()
	sealed, err := NewSealedStore(inner, "passphrase")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, sealed.SetToken(ctx, "jira_token", "abc123"))

	raw, err := inner.GetToken(ctx, "jira_token")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(raw.Value, sealedPrefix))
	assert.NotContains(t, raw.Value, "abc123")

	tok, err := sealed.GetToken(ctx, "jira_token")
	require.NoError(t, err)
	assert.Equal(t, "abc123", tok.Value)
}

func TestSealedStore_NonceIsRandom(t *testing.T) {
	inner := NewMockStore()
	sealed, err := NewSealedStore(inner, "passphrase")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, sealed.SetToken(ctx, "a_token", "same"))
	require.NoError(t, sealed.SetToken(ctx, "b_token", "same"))

	a, _ := inner.GetToken(ctx, "a_token")
	b, _ := inner.GetToken(ctx, "b_token")
	assert.NotEqual(t, a.Value, b.Value)
}

func TestSealedStore_ReadsPlaintextRows(t *testing.T) {
	inner := NewMockStore()
	ctx := context.Background()
	require.NoError(t, inner.SetToken(ctx, "notion_token", "legacy-plain"))

	sealed, err := NewSealedStore(inner, "passphrase")
	require.NoError(t, err)

	tok, err := sealed.GetToken(ctx, "notion_token")
	require.NoError(t, err)
	assert.Equal(t, "legacy-plain", tok.Value)
}

func TestSealedStore_WrongKey(t *testing.T) {
	inner := NewMockStore()
	ctx := context.Background()

	writer, err := NewSealedStore(inner, "right")
	require.NoError(t, err)
	require.NoError(t, writer.SetToken(ctx, "jira_token", "abc123"))
	require.NoError(t, inner.SetToken(ctx, "notion_token", "plain"))

	reader, err := NewSealedStore(inner, "wrong")
	require.NoError(t, err)

	_, err = reader.GetToken(ctx, "jira_token")
	assert.ErrorIs(t, err, ErrUnseal)

	tokens, err := reader.ListTokens(ctx)
	assert.ErrorIs(t, err, ErrUnseal)
	require.Len(t, tokens, 2)
	assert.Equal(t, "", tokens[0].Value)
	assert.Equal(t, "plain", tokens[1].Value)
}

func TestNewSealedStore_EmptyKey(t *testing.T) {
	_, err := NewSealedStore(NewMockStore(), "")
	assert.Error(t, err)
}
