// ABOUTME: Message, citation and notification types held by a chat panel
// ABOUTME: Messages carry an explicit status so the pending placeholder is never matched by content

package chat

import "time"

// Role identifies who authored a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Status is the lifecycle state of a message
type Status string

const (
	StatusPending  Status = "pending"
	StatusComplete Status = "complete"
	StatusError    Status = "error"
)

// CitationType is the kind of system a citation points into
type CitationType string

const (
	CitationJira       CitationType = "jira"
	CitationConfluence CitationType = "confluence"
	CitationCode       CitationType = "code"
)

// Citation is a source reference attached to an assistant reply
type Citation struct {
	Title string
	Type  CitationType
	URL   string
}

// AgentSources lists the sources one agent contributed to a team reply
type AgentSources struct {
	Agent   string
	Sources []string
}

// TeamReply is the structured part of a team-mode answer
type TeamReply struct {
	Team   string
	Groups []AgentSources
}

// Message is one entry in a panel's conversation. Content never changes after
// a message is appended; a user message moves to StatusError when its
// request fails.
type Message struct {
	ID        string
	Role      Role
	Content   string
	Status    Status
	Sources   []Citation
	Team      *TeamReply
	CreatedAt time.Time
}

// IsPending reports whether the message is the in-flight placeholder
func (m Message) IsPending() bool {
	return m.Status == StatusPending
}

// Variant selects how a notification is styled
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification is a transient toast shown once to the user
type Notification struct {
	Title       string
	Description string
	Variant     Variant
}

// demoCitations is attached to every single-agent reply
func demoCitations() []Citation {
	return []Citation{
		{Title: "JIRA-123: Authentication Implementation", Type: CitationJira, URL: "#"},
		{Title: "OAuth Setup Guide", Type: CitationConfluence, URL: "#"},
	}
}

func (m Message) clone() Message {
	if m.Sources != nil {
		m.Sources = append([]Citation(nil), m.Sources...)
	}
	if m.Team != nil {
		team := *m.Team
		team.Groups = make([]AgentSources, len(m.Team.Groups))
		for i, g := range m.Team.Groups {
			team.Groups[i] = AgentSources{Agent: g.Agent, Sources: append([]string(nil), g.Sources...)}
		}
		m.Team = &team
	}
	return m
}
