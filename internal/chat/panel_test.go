// ABOUTME: Tests for the chat panel state machine
// ABOUTME: Covers success, failure, loading gate, placeholder lifecycle and team endpoint selection

package chat

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukasha-khalid-spursol/knowledge-weave-copilot/internal/backend"
)

// fakeBackend records calls and returns canned replies
type fakeBackend struct {
	mu       sync.Mutex
	calls    []string
	inflight int
	reqs  []backend.ChatRequest
	agent []int

	chatResp *backend.ChatResponse
	teamResp *backend.TeamResponse
	err      error

	// gate, when set, blocks every call until it is closed
	gate    chan struct{}
	entered chan struct{}
}

// record logs the call and waits on the gate. A canceled context releases
// the wait early.
func (f *fakeBackend) record(ctx context.Context, path string) error {
	f.mu.Lock()
	f.calls = append(f.calls, path)
	f.inflight++
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.inflight--
		f.mu.Unlock()
	}()

	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (f *fakeBackend) Chat(ctx context.Context, req backend.ChatRequest) (*backend.ChatResponse, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	if err := f.record(ctx, backend.PathChat); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.chatResp, nil
}

func (f *fakeBackend) TeamChat(ctx context.Context, message string) (*backend.TeamResponse, error) {
	if err := f.record(ctx, backend.PathTeamChat); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.teamResp, nil
}

func (f *fakeBackend) AgentChat(ctx context.Context, message string, agentNumber int) (*backend.ChatResponse, error) {
	f.mu.Lock()
	f.agent = append(f.agent, agentNumber)
	f.mu.Unlock()
	if err := f.record(ctx, backend.PathChatAgent); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.chatResp, nil
}

func (f *fakeBackend) outstanding() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inflight
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestPanel_SendSuccess(t *testing.T) {
	fb := &fakeBackend{chatResp: &backend.ChatResponse{Response: "Hi"}}
	p := NewPanel(KindSingle, fb, nil)

	require.NoError(t, p.Send(context.Background(), "Hello"))

	st := p.State()
	require.Len(t, st.Messages, 2)

	user := st.Messages[0]
	assert.Equal(t, RoleUser, user.Role)
	assert.Equal(t, "Hello", user.Content)
	assert.Equal(t, StatusComplete, user.Status)

	reply := st.Messages[1]
	assert.Equal(t, RoleAssistant, reply.Role)
	assert.Equal(t, "Hi", reply.Content)
	assert.Equal(t, StatusComplete, reply.Status)
	require.Len(t, reply.Sources, 2)
	assert.Equal(t, "JIRA-123: Authentication Implementation", reply.Sources[0].Title)
	assert.Equal(t, CitationJira, reply.Sources[0].Type)
	assert.Equal(t, "OAuth Setup Guide", reply.Sources[1].Title)
	assert.Equal(t, CitationConfluence, reply.Sources[1].Type)
	assert.NotEqual(t, user.ID, reply.ID)

	assert.False(t, st.Loading)
	assert.Empty(t, st.Input)
	assert.Empty(t, st.Notifications)

	require.Len(t, fb.reqs, 1)
	assert.Equal(t, "Hello", fb.reqs[0].Message)
	assert.Equal(t, "customer-insights", fb.reqs[0].Agent)
}

func TestPanel_SendFailure(t *testing.T) {
	for _, failure := range []error{
		&backend.StatusError{Path: "/chat", StatusCode: 500},
		errors.New("connection refused"),
		backend.ErrMalformed,
	} {
		fb := &fakeBackend{err: failure}
		p := NewPanel(KindSingle, fb, nil)
		p.SetInput("Hello")

		err := p.Send(context.Background(), "Hello")
		require.ErrorIs(t, err, failure)

		st := p.State()
		require.Len(t, st.Messages, 1)
		assert.Equal(t, "Hello", st.Messages[0].Content)
		assert.Equal(t, RoleUser, st.Messages[0].Role)
		assert.Equal(t, StatusError, st.Messages[0].Status)
		assert.False(t, st.Loading)
		assert.Empty(t, st.Input)

		require.Len(t, st.Notifications, 1)
		assert.Equal(t, VariantDestructive, st.Notifications[0].Variant)
		assert.Equal(t, singleFailure, st.Notifications[0].Description)
	}
}

func TestPanel_WhitespaceInputIsNoop(t *testing.T) {
	fb := &fakeBackend{chatResp: &backend.ChatResponse{Response: "Hi"}}
	p := NewPanel(KindSingle, fb, nil)

	for _, in := range []string{"", "   ", "\n\t "} {
		err := p.Send(context.Background(), in)
		assert.ErrorIs(t, err, ErrEmptyInput)
	}

	assert.Empty(t, p.State().Messages)
	assert.Equal(t, 0, fb.callCount())
}

func TestPanel_LoadingBetweenStartAndSettlement(t *testing.T) {
	fb := &fakeBackend{
		chatResp: &backend.ChatResponse{Response: "Hi"},
		gate:     make(chan struct{}),
		entered:  make(chan struct{}, 1),
	}
	p := NewPanel(KindSingle, fb, nil)
	assert.False(t, p.Loading())

	done := make(chan error, 1)
	go func() { done <- p.Send(context.Background(), "Hello") }()

	<-fb.entered
	st := p.State()
	assert.True(t, st.Loading)
	require.Len(t, st.Messages, 2)
	assert.True(t, st.Messages[1].IsPending())

	// A second send while loading is rejected and changes nothing
	err := p.Send(context.Background(), "again")
	assert.ErrorIs(t, err, ErrBusy)
	assert.Len(t, p.State().Messages, 2)

	close(fb.gate)
	require.NoError(t, <-done)

	st = p.State()
	assert.False(t, st.Loading)
	for _, m := range st.Messages {
		assert.False(t, m.IsPending())
	}
	assert.Equal(t, 1, fb.callCount())
}

func TestPanel_NoPendingAfterFailure(t *testing.T) {
	fb := &fakeBackend{err: errors.New("down")}
	p := NewPanel(KindTeam, fb, nil)

	_ = p.Send(context.Background(), "Hello")
	for _, m := range p.State().Messages {
		assert.False(t, m.IsPending())
	}
}

func TestPanel_TeamModes(t *testing.T) {
	tests := []struct {
		name      string
		selection string
		wantPath  string
		wantAgent int
	}{
		{"general", ModeGeneral, backend.PathChat, 0},
		{"team", ModeTeam, backend.PathTeamChat, 0},
		{"technical support", "technical-support", backend.PathChatAgent, 2},
		{"content creator", "content-creator", backend.PathChatAgent, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := &fakeBackend{
				chatResp: &backend.ChatResponse{Response: "answer"},
				teamResp: &backend.TeamResponse{Responses: backend.TeamResponses{Team: "combined"}},
			}
			p := NewPanel(KindTeam, fb, nil)
			require.NoError(t, p.Select(tt.selection))
			require.NoError(t, p.Send(context.Background(), "question"))

			require.Equal(t, []string{tt.wantPath}, fb.calls)
			if tt.wantAgent != 0 {
				assert.Equal(t, []int{tt.wantAgent}, fb.agent)
			}
			if tt.wantPath == backend.PathChat {
				assert.Empty(t, fb.reqs[0].Agent)
			}
		})
	}
}

func TestPanel_TeamReply(t *testing.T) {
	fb := &fakeBackend{teamResp: &backend.TeamResponse{
		Responses: backend.TeamResponses{Team: "## Findings"},
		Sources: []backend.AgentSources{
			{Agent: "jira", Sources: []string{"PROJ-1"}},
			{Agent: "notion", Sources: []string{"Roadmap", "Spec"}},
		},
	}}
	p := NewPanel(KindTeam, fb, nil)
	require.NoError(t, p.Select(ModeTeam))
	require.NoError(t, p.Send(context.Background(), "status"))

	msgs := p.State().Messages
	require.Len(t, msgs, 2)
	reply := msgs[1]
	assert.Equal(t, teamContent, reply.Content)
	require.NotNil(t, reply.Team)
	assert.Equal(t, "## Findings", reply.Team.Team)
	require.Len(t, reply.Team.Groups, 2)
	assert.Equal(t, "notion", reply.Team.Groups[1].Agent)
	assert.Equal(t, []string{"Roadmap", "Spec"}, reply.Team.Groups[1].Sources)
	assert.Empty(t, reply.Sources)
}

func TestPanel_TeamFailureText(t *testing.T) {
	p := NewPanel(KindTeam, &fakeBackend{err: errors.New("down")}, nil)
	_ = p.Send(context.Background(), "Hello")

	notes := p.TakeNotifications()
	require.Len(t, notes, 1)
	assert.Equal(t, teamFailure, notes[0].Description)
	assert.Empty(t, p.TakeNotifications())
}

func TestPanel_Select(t *testing.T) {
	single := NewPanel(KindSingle, &fakeBackend{}, nil)
	assert.Equal(t, "customer-insights", single.State().Selected)
	assert.ErrorIs(t, single.Select(ModeTeam), ErrUnknownAgent)
	assert.ErrorIs(t, single.Select("nope"), ErrUnknownAgent)
	require.NoError(t, single.Select("sales-assistant"))
	assert.Equal(t, "sales-assistant", single.State().Selected)

	team := NewPanel(KindTeam, &fakeBackend{}, nil)
	assert.Equal(t, ModeGeneral, team.State().Selected)
	require.NoError(t, team.Select(ModeTeam))
	require.NoError(t, team.Select("content-creator"))
}

func TestPanel_DefaultAgentAndReset(t *testing.T) {
	fb := &fakeBackend{chatResp: &backend.ChatResponse{Response: "Hi"}}
	p := NewPanel(KindSingle, fb, nil)

	require.NoError(t, p.SetDefault("technical-support"))
	require.NoError(t, p.Select("sales-assistant"))
	require.NoError(t, p.Send(context.Background(), "Hello"))

	p.Reset()
	st := p.State()
	assert.Empty(t, st.Messages)
	assert.Equal(t, "technical-support", st.Selected)
	assert.Equal(t, "technical-support", st.DefaultAgent)

	require.NoError(t, p.SetDefault(""))
	p.Reset()
	assert.Equal(t, "customer-insights", p.State().Selected)

	assert.ErrorIs(t, p.SetDefault("unknown"), ErrUnknownAgent)
}

func TestPanel_ResetDiscardsInFlight(t *testing.T) {
	fb := &fakeBackend{
		chatResp: &backend.ChatResponse{Response: "late"},
		gate:     make(chan struct{}),
		entered:  make(chan struct{}, 1),
	}
	p := NewPanel(KindSingle, fb, nil)

	x, err := p.Begin("Hello")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- x.Run(context.Background()) }()
	<-fb.entered

	p.Reset()
	assert.Empty(t, p.State().Messages)

	// The abandoned request is canceled and nothing new starts until it returns
	assert.ErrorIs(t, <-done, ErrDiscarded)
	assert.False(t, p.Loading())
	assert.Equal(t, 1, fb.callCount())
	assert.Zero(t, fb.outstanding())
	assert.Empty(t, p.State().Messages)

	close(fb.gate)
	require.NoError(t, p.Send(context.Background(), "Again"))
	assert.Len(t, p.State().Messages, 2)
}

func TestPanel_ResetKeepsSendGateUntilRequestReturns(t *testing.T) {
	fb := &fakeBackend{
		chatResp: &backend.ChatResponse{Response: "late"},
		gate:     make(chan struct{}),
		entered:  make(chan struct{}, 1),
	}
	p := NewPanel(KindSingle, fb, nil)

	x, err := p.Begin("one")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		// Hold the exchange open past Reset so the busy window is observable
		<-release
		done <- x.Run(ctx)
	}()

	p.Reset()
	assert.True(t, p.Loading())
	_, err = p.Begin("two")
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	assert.ErrorIs(t, <-done, ErrDiscarded)
	assert.Equal(t, 0, fb.callCount(), "a discarded exchange never reaches the backend")
	assert.False(t, p.Loading())

	_, err = p.Begin("two")
	assert.NoError(t, err)
}

func TestPanel_StateIsCopy(t *testing.T) {
	fb := &fakeBackend{teamResp: &backend.TeamResponse{
		Sources: []backend.AgentSources{{Agent: "jira", Sources: []string{"A"}}},
	}}
	p := NewPanel(KindTeam, fb, nil)
	require.NoError(t, p.Select(ModeTeam))
	require.NoError(t, p.Send(context.Background(), "q"))

	st := p.State()
	st.Messages[1].Team.Groups[0].Sources[0] = "mutated"
	st.Messages[0].Content = "mutated"

	fresh := p.State()
	assert.Equal(t, "A", fresh.Messages[1].Team.Groups[0].Sources[0])
	assert.Equal(t, "q", fresh.Messages[0].Content)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("team")
	require.NoError(t, err)
	assert.Equal(t, KindTeam, k)

	_, err = ParseKind("group")
	assert.ErrorIs(t, err, ErrUnknownKind)
}
