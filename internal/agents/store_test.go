// ABOUTME: Tests for the agent preset store
// ABOUTME: Covers toggling, derived selection, creation and config seeding

package agents

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukasha-khalid-spursol/knowledge-weave-copilot/internal/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(DefaultPresets(), nil)
}

func TestStore_ToggleFlipsExactlyOne(t *testing.T) {
	s := newTestStore(t)
	before := s.List()

	enabled, err := s.Toggle("technical-support", 2)
	require.NoError(t, err)
	assert.True(t, enabled)

	after := s.List()
	require.Len(t, after, len(before))
	for i := range before {
		for j := range before[i].Sources {
			want := before[i].Sources[j].Enabled
			if before[i].ID == "technical-support" && j == 2 {
				want = !want
			}
			assert.Equal(t, want, after[i].Sources[j].Enabled, "%s source %d", before[i].ID, j)
		}
	}

	enabled, err = s.Toggle("technical-support", 2)
	require.NoError(t, err)
	assert.False(t, enabled)
	assert.Equal(t, before, s.List())
}

func TestStore_ToggleErrors(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Toggle("missing", 0)
	assert.ErrorIs(t, err, ErrAgentNotFound)

	_, err = s.Toggle("customer-insights", 3)
	assert.ErrorIs(t, err, ErrSourceIndex)

	_, err = s.Toggle("customer-insights", -1)
	assert.ErrorIs(t, err, ErrSourceIndex)
}

func TestStore_SelectedIsDerived(t *testing.T) {
	s := newTestStore(t)

	sel, ok := s.Selected("s1")
	require.True(t, ok)
	assert.Equal(t, "customer-insights", sel.ID)

	require.NoError(t, s.Select("s1", "sales-assistant"))
	_, err := s.Toggle("sales-assistant", 0)
	require.NoError(t, err)

	sel, ok = s.Selected("s1")
	require.True(t, ok)
	assert.True(t, sel.Sources[0].Enabled, "selected view reflects the toggle")

	assert.ErrorIs(t, s.Select("s1", "missing"), ErrAgentNotFound)
	sel, _ = s.Selected("s1")
	assert.Equal(t, "sales-assistant", sel.ID)
}

func TestStore_SelectionIsPerSession(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Select("alice", "technical-support"))
	require.NoError(t, s.Select("bob", "content-creator"))

	sel, _ := s.Selected("alice")
	assert.Equal(t, "technical-support", sel.ID)
	sel, _ = s.Selected("bob")
	assert.Equal(t, "content-creator", sel.ID)
	sel, _ = s.Selected("carol")
	assert.Equal(t, "customer-insights", sel.ID)
}

func TestStore_SelectionExpires(t *testing.T) {
	s := NewStore(DefaultPresets(), nil, WithSelectionTTL(time.Hour))
	now := time.Now()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Select("old", "sales-assistant"))
	now = now.Add(2 * time.Hour)

	sel, _ := s.Selected("old")
	assert.Equal(t, "customer-insights", sel.ID, "expired selection falls back to the first preset")

	require.NoError(t, s.Select("new", "technical-support"))
	s.mu.RLock()
	defer s.mu.RUnlock()
	assert.Len(t, s.selections, 1)
	assert.Contains(t, s.selections, "new")
}

func TestStore_ListReturnsCopies(t *testing.T) {
	s := newTestStore(t)

	list := s.List()
	list[0].Sources[0].Enabled = !list[0].Sources[0].Enabled
	list[0].Name = "changed"

	fresh := s.List()
	assert.NotEqual(t, list[0].Sources[0].Enabled, fresh[0].Sources[0].Enabled)
	assert.Equal(t, "Customer Insights", fresh[0].Name)
}

func TestStore_Create(t *testing.T) {
	s := newTestStore(t)
	n := 0
	s.idFunc = func() string {
		n++
		return fmt.Sprintf("generated-%d", n)
	}

	p, err := s.Create(Draft{Name: "  Release Notes  ", Tone: "Concise", Prompt: "Summarise merged work"})
	require.NoError(t, err)
	assert.Equal(t, "generated-1", p.ID)
	assert.Equal(t, "Release Notes", p.Name)
	assert.Equal(t, StatusActive, p.Status)
	require.Len(t, p.Sources, 3)
	for _, src := range p.Sources {
		assert.False(t, src.Enabled)
	}

	list := s.List()
	require.Len(t, list, 5)
	assert.Equal(t, "generated-1", list[4].ID)

	got, err := s.Get("generated-1")
	require.NoError(t, err)
	assert.Equal(t, "Summarise merged work", got.Prompt)
}

func TestStore_CreateRequiresName(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Create(Draft{Name: "   ", Tone: "x"})
	assert.ErrorIs(t, err, ErrNameRequired)
	assert.Len(t, s.List(), 4)
}

func TestStore_Empty(t *testing.T) {
	s := NewStore(nil, nil)
	_, ok := s.Selected("any")
	assert.False(t, ok)
	assert.Empty(t, s.List())
	_, err := s.Get("any")
	assert.ErrorIs(t, err, ErrAgentNotFound)
}

func TestFromConfig(t *testing.T) {
	presets := FromConfig([]config.AgentPreset{
		{Name: "Ops Runbook", Sources: []string{"confluence", "PagerDuty"}},
		{ID: "legal", Name: "Legal", Status: StatusInactive},
	})
	require.Len(t, presets, 2)

	ops := presets[0]
	assert.Equal(t, "ops-runbook", ops.ID)
	assert.Equal(t, StatusActive, ops.Status)
	assert.Equal(t, []PresetSource{
		{Name: "Jira", Enabled: false},
		{Name: "Confluence", Enabled: true},
		{Name: "Notion", Enabled: false},
		{Name: "PagerDuty", Enabled: true},
	}, ops.Sources)

	assert.Equal(t, "legal", presets[1].ID)
	assert.Equal(t, StatusInactive, presets[1].Status)
	assert.Equal(t, 0, presets[1].EnabledCount())
}

func TestFromConfig_UniqueDerivedIDs(t *testing.T) {
	n := 0
	newID := func() string {
		n++
		return fmt.Sprintf("generated-%d", n)
	}
	presets := fromConfig([]config.AgentPreset{
		{Name: "Support Bot"},
		{Name: "support-bot"},
		{Name: "!!!"},
		{Name: "Legal"},
		{ID: "legal", Name: "Legal Team"},
	}, newID)
	require.Len(t, presets, 5)

	ids := make([]string, len(presets))
	for i, p := range presets {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{"support-bot", "generated-1", "generated-2", "generated-3", "legal"}, ids)

	s := NewStore(presets, nil)
	for _, id := range ids {
		enabled, err := s.Toggle(id, 0)
		require.NoError(t, err, id)
		assert.True(t, enabled, id)
		require.NoError(t, s.Select("s", id))
		sel, ok := s.Selected("s")
		require.True(t, ok)
		assert.Equal(t, id, sel.ID)
	}
	for _, p := range s.List() {
		assert.True(t, p.Sources[0].Enabled, "%s toggled exactly once", p.ID)
	}
}

func TestFromConfig_RandomIDs(t *testing.T) {
	presets := FromConfig([]config.AgentPreset{{Name: "Ops"}, {Name: "ops"}, {Name: "???"}})
	require.Len(t, presets, 3)
	assert.Equal(t, "ops", presets[0].ID)
	assert.NotEmpty(t, presets[1].ID)
	assert.NotEmpty(t, presets[2].ID)
	assert.NotEqual(t, presets[1].ID, presets[2].ID)
	assert.NotEqual(t, "ops", presets[1].ID)
}

func TestFromConfig_Defaults(t *testing.T) {
	presets := FromConfig(nil)
	require.Len(t, presets, 4)
	assert.Equal(t, "customer-insights", presets[0].ID)
	assert.Equal(t, 2, presets[0].EnabledCount())
}
