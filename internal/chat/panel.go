// ABOUTME: Chat panel state machine: idle -> request in flight -> idle
// ABOUTME: Holds messages, draft input, loading flag and agent selection for one panel

package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ukasha-khalid-spursol/knowledge-weave-copilot/internal/backend"
)

// Kind selects which backend contract a panel speaks
type Kind string

const (
	KindSingle Kind = "single"
	KindTeam   Kind = "team"
)

// ParseKind validates a kind from a URL segment
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindSingle, KindTeam:
		return Kind(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Panel errors
var (
	ErrEmptyInput   = errors.New("message is empty")
	ErrBusy         = errors.New("a request is already in flight")
	ErrUnknownAgent = errors.New("unknown agent")
	ErrUnknownKind  = errors.New("unknown panel kind")
	ErrDiscarded    = errors.New("panel was reset while the request was in flight")
)

// Failure descriptions shown when the backend cannot answer
const (
	singleFailure = "Failed to get response from the backend. Make sure your API is running."
	teamFailure   = "Failed to get response from the team chat API. Make sure your API is running."

	teamContent = "Team analysis completed"
)

// State is a point-in-time copy of a panel
type State struct {
	Kind          Kind
	Messages      []Message
	Input         string
	Loading       bool
	Selected      string
	DefaultAgent  string
	Notifications []Notification
}

// Panel is one chat surface. The mutex guards state only and is never held
// across a backend call.
type Panel struct {
	mu sync.Mutex

	kind    Kind
	client  backend.Chatter
	logger  *slog.Logger
	now     func() time.Time
	idFunc  func() string
	initial string

	messages      []Message
	input         string
	loading       bool
	selected      string
	defaultAgent  string
	notifications []Notification
	generation    uint64
	cancel        context.CancelFunc
}

// NewPanel creates an empty panel. Single panels start on the first catalogue
// agent, team panels on the general assistant.
func NewPanel(kind Kind, client backend.Chatter, logger *slog.Logger) *Panel {
	if logger == nil {
		logger = slog.Default()
	}
	initial := ModeGeneral
	if kind == KindSingle {
		initial = catalog[0].ID
	}
	return &Panel{
		kind:     kind,
		client:   client,
		logger:   logger.With("component", "chat", "panel", string(kind)),
		now:      time.Now,
		idFunc:   uuid.NewString,
		initial:  initial,
		selected: initial,
	}
}

// Kind returns the panel kind
func (p *Panel) Kind() Kind {
	return p.kind
}

// State returns a deep copy of the panel
func (p *Panel) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	msgs := make([]Message, len(p.messages))
	for i, m := range p.messages {
		msgs[i] = m.clone()
	}
	return State{
		Kind:          p.kind,
		Messages:      msgs,
		Input:         p.input,
		Loading:       p.loading,
		Selected:      p.selected,
		DefaultAgent:  p.defaultAgent,
		Notifications: append([]Notification(nil), p.notifications...),
	}
}

// Loading reports whether a request is in flight
func (p *Panel) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// TakeNotifications returns pending notifications and clears them.
func (p *Panel) TakeNotifications() []Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.notifications
	p.notifications = nil
	return out
}

// SetInput stores the draft text without sending it
func (p *Panel) SetInput(input string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.input = input
}

// Select changes which agent or mode the next send targets.
func (p *Panel) Select(selection string) error {
	if !p.validSelection(selection) {
		return fmt.Errorf("%w: %q", ErrUnknownAgent, selection)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selected = selection
	return nil
}

// SetDefault marks an agent as the one a reset panel returns to. An empty id
// clears the default.
func (p *Panel) SetDefault(agentID string) error {
	if agentID != "" {
		if _, ok := LookupAgent(agentID); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownAgent, agentID)
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.defaultAgent = agentID
	if agentID != "" {
		p.selected = agentID
	}
	return nil
}

// Reset starts a new conversation. An in-flight request is canceled and its
// result discarded; the panel stays loading until that request returns.
func (p *Panel) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.generation++
	if p.cancel != nil {
		p.cancel()
	}
	p.messages = nil
	p.input = ""
	p.notifications = nil
	if p.defaultAgent != "" {
		p.selected = p.defaultAgent
	} else {
		p.selected = p.initial
	}
}

func (p *Panel) validSelection(selection string) bool {
	if p.kind == KindTeam && (selection == ModeGeneral || selection == ModeTeam) {
		return true
	}
	_, ok := LookupAgent(selection)
	return ok
}

// Exchange is a send that has been accepted and is waiting for the backend.
type Exchange struct {
	panel       *Panel
	userMessage string
	message     string
	selection   string
	placeholder string
	generation  uint64
}

// Begin validates input, appends the user message and pending placeholder and
// raises the loading flag. The caller must call Run on the returned Exchange.
func (p *Panel) Begin(input string) (*Exchange, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return nil, ErrEmptyInput
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loading {
		return nil, ErrBusy
	}

	now := p.now()
	userID := p.idFunc()
	p.messages = append(p.messages, Message{
		ID:        userID,
		Role:      RoleUser,
		Content:   text,
		Status:    StatusComplete,
		CreatedAt: now,
	})

	placeholder := Message{
		ID:        p.idFunc(),
		Role:      RoleAssistant,
		Status:    StatusPending,
		CreatedAt: now,
	}
	p.messages = append(p.messages, placeholder)
	p.loading = true
	p.input = ""

	return &Exchange{
		panel:       p,
		userMessage: userID,
		message:     text,
		selection:   p.selected,
		placeholder: placeholder.ID,
		generation:  p.generation,
	}, nil
}

// Run performs the backend call and settles the panel. The loading flag is
// lowered on every path, including a discarded exchange.
func (x *Exchange) Run(ctx context.Context) error {
	p := x.panel
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p.mu.Lock()
	if p.generation != x.generation {
		p.loading = false
		p.mu.Unlock()
		return ErrDiscarded
	}
	p.cancel = cancel
	p.mu.Unlock()

	reply, err := p.call(ctx, x.message, x.selection)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.cancel = nil
	p.loading = false
	if p.generation != x.generation {
		return ErrDiscarded
	}

	p.removeLocked(x.placeholder)
	p.input = ""

	if err != nil {
		p.logger.Warn("chat request failed",
			"mode", x.selection,
			"error", err,
		)
		p.markFailedLocked(x.userMessage)
		p.notifications = append(p.notifications, Notification{
			Title:       "Error",
			Description: p.failureText(),
			Variant:     VariantDestructive,
		})
		return fmt.Errorf("sending message: %w", err)
	}

	reply.ID = p.idFunc()
	reply.Role = RoleAssistant
	reply.Status = StatusComplete
	reply.CreatedAt = p.now()
	p.messages = append(p.messages, reply)
	return nil
}

// Send runs a complete exchange synchronously.
func (p *Panel) Send(ctx context.Context, input string) error {
	x, err := p.Begin(input)
	if err != nil {
		return err
	}
	return x.Run(ctx)
}

func (p *Panel) call(ctx context.Context, message, selection string) (Message, error) {
	if p.kind == KindSingle {
		resp, err := p.client.Chat(ctx, backend.ChatRequest{Message: message, Agent: selection})
		if err != nil {
			return Message{}, err
		}
		return Message{Content: resp.Response, Sources: demoCitations()}, nil
	}

	switch selection {
	case ModeTeam:
		resp, err := p.client.TeamChat(ctx, message)
		if err != nil {
			return Message{}, err
		}
		team := &TeamReply{Team: resp.Responses.Team}
		for _, g := range resp.Sources {
			team.Groups = append(team.Groups, AgentSources{Agent: g.Agent, Sources: g.Sources})
		}
		return Message{Content: teamContent, Team: team}, nil

	case ModeGeneral:
		resp, err := p.client.Chat(ctx, backend.ChatRequest{Message: message})
		if err != nil {
			return Message{}, err
		}
		return Message{Content: resp.Response}, nil

	default:
		agent, ok := LookupAgent(selection)
		if !ok {
			return Message{}, fmt.Errorf("%w: %q", ErrUnknownAgent, selection)
		}
		resp, err := p.client.AgentChat(ctx, message, agent.Number)
		if err != nil {
			return Message{}, err
		}
		return Message{Content: resp.Response}, nil
	}
}

func (p *Panel) removeLocked(id string) {
	kept := p.messages[:0]
	for _, m := range p.messages {
		if m.ID == id && m.IsPending() {
			continue
		}
		kept = append(kept, m)
	}
	p.messages = kept
}

// markFailedLocked flags the user message a failed request was answering
func (p *Panel) markFailedLocked(id string) {
	for i := range p.messages {
		if p.messages[i].ID == id {
			p.messages[i].Status = StatusError
			return
		}
	}
}

func (p *Panel) failureText() string {
	if p.kind == KindTeam {
		return teamFailure
	}
	return singleFailure
}
