// ABOUTME: Tests for source token capture, disconnect and derived status
// ABOUTME: Runs against the in-memory mock store and a sealed SQLite store

package sources

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukasha-khalid-spursol/knowledge-weave-copilot/internal/store"
)

func TestService_SaveToken(t *testing.T) {
	st := store.NewMockStore()
	svc := NewService(st, nil)
	ctx := context.Background()

	src, err := svc.SaveToken(ctx, "jira", "abc123")
	require.NoError(t, err)
	assert.Equal(t, "Jira", src.Name)
	assert.Equal(t, "Jira token saved successfully", SavedMessage(src.Name))

	tok, err := st.GetToken(ctx, "jira_token")
	require.NoError(t, err)
	assert.Equal(t, "abc123", tok.Value)
}

func TestService_SaveToken_Empty(t *testing.T) {
	st := store.NewMockStore()
	svc := NewService(st, nil)

	for _, tok := range []string{"", "   ", "\t"} {
		_, err := svc.SaveToken(context.Background(), "notion", tok)
		assert.ErrorIs(t, err, ErrEmptyToken)
	}
	assert.Equal(t, 0, st.Writes())
}

func TestService_SaveToken_UnknownSource(t *testing.T) {
	st := store.NewMockStore()
	svc := NewService(st, nil)

	_, err := svc.SaveToken(context.Background(), "github", "abc")
	assert.ErrorIs(t, err, ErrUnknownSource)
	assert.Equal(t, 0, st.Writes())
}

func TestService_SaveToken_StoreFailure(t *testing.T) {
	st := store.NewMockStore()
	st.SetErr = errors.New("disk full")
	svc := NewService(st, nil)

	_, err := svc.SaveToken(context.Background(), "jira", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestService_LastWriteWins(t *testing.T) {
	st := store.NewMockStore()
	svc := NewService(st, nil)
	ctx := context.Background()

	_, err := svc.SaveToken(ctx, "confluence", "first")
	require.NoError(t, err)
	_, err = svc.SaveToken(ctx, "confluence", "second")
	require.NoError(t, err)

	tok, err := st.GetToken(ctx, "confluence_token")
	require.NoError(t, err)
	assert.Equal(t, "second", tok.Value)
}

func TestService_StatusLifecycle(t *testing.T) {
	svc := NewService(store.NewMockStore(), nil)
	ctx := context.Background()

	status, err := svc.Status(ctx, "jira")
	require.NoError(t, err)
	assert.Equal(t, StatusDisconnected, status)

	_, err = svc.SaveToken(ctx, "jira", "abc123")
	require.NoError(t, err)
	status, err = svc.Status(ctx, "jira")
	require.NoError(t, err)
	assert.Equal(t, StatusConnected, status)

	_, err = svc.DisconnectSource(ctx, "jira")
	require.NoError(t, err)
	status, err = svc.Status(ctx, "jira")
	require.NoError(t, err)
	assert.Equal(t, StatusDisconnected, status)

	// disconnecting again is fine
	_, err = svc.DisconnectSource(ctx, "jira")
	assert.NoError(t, err)

	_, err = svc.Status(ctx, "github")
	assert.ErrorIs(t, err, ErrUnknownSource)
	_, err = svc.DisconnectSource(ctx, "github")
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestService_StatusesWithSealedStore(t *testing.T) {
	ctx := context.Background()
	sqlite, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "tokens.db"))
	require.NoError(t, err)
	defer sqlite.Close()

	writer, err := store.NewSealedStore(sqlite, "key-one")
	require.NoError(t, err)
	_, err = NewService(writer, nil).SaveToken(ctx, "jira", "abc123")
	require.NoError(t, err)
	_, err = NewService(writer, nil).SaveToken(ctx, "notion", "n-token")
	require.NoError(t, err)

	ok := NewService(writer, nil).Statuses(ctx, All())
	require.Len(t, ok, 3)
	assert.Equal(t, StatusConnected, ok[0].Status)
	assert.Equal(t, StatusDisconnected, ok[1].Status)
	assert.Equal(t, StatusConnected, ok[2].Status)
	assert.Equal(t, 2, ConnectedCount(ok))

	rotated, err := store.NewSealedStore(sqlite, "key-two")
	require.NoError(t, err)
	bad := NewService(rotated, nil).Statuses(ctx, All())
	assert.Equal(t, StatusError, bad[0].Status)
	assert.Equal(t, StatusDisconnected, bad[1].Status)
	assert.Equal(t, 0, ConnectedCount(bad))
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		category Category
		want     []string
	}{
		{"all", "", "", []string{"jira", "confluence", "notion"}},
		{"by name", "note", "", []string{"notion"}},
		{"by description", "documentation", "", []string{"confluence"}},
		{"case insensitive", "JIRA", "", []string{"jira"}},
		{"by category", "", CategoryWorkspace, []string{"notion"}},
		{"category and query miss", "jira", CategoryWorkspace, nil},
		{"no match", "salesforce", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, s := range Filter(tt.query, tt.category) {
				got = append(got, s.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookupAndKeys(t *testing.T) {
	src, ok := Lookup("confluence")
	require.True(t, ok)
	assert.Equal(t, "confluence_token", src.TokenKey())
	assert.Equal(t, "notion_token", TokenKey("notion"))

	_, ok = Lookup("slack")
	assert.False(t, ok)
	assert.Len(t, FAQ, 6)
}
