// ABOUTME: Catalogue of chat-selectable agents and the team panel's mode values
// ABOUTME: Agent numbers are the ids the backend expects on /chat_agent

package chat

// ChatAgent is an agent the user can address from a chat panel
type ChatAgent struct {
	ID          string
	Number      int
	Name        string
	Description string
	Color       string
}

// Team panel modes besides addressing a specific agent
const (
	ModeGeneral = "general"
	ModeTeam    = "team"
)

var catalog = []ChatAgent{
	{
		ID:          "customer-insights",
		Number:      1,
		Name:        "Customer Insights",
		Description: "Provides detailed customer analysis and support insights",
		Color:       "blue",
	},
	{
		ID:          "technical-support",
		Number:      2,
		Name:        "Technical Support",
		Description: "Handles technical queries and troubleshooting",
		Color:       "green",
	},
	{
		ID:          "sales-assistant",
		Number:      3,
		Name:        "Sales Assistant",
		Description: "Supports sales processes and lead qualification",
		Color:       "orange",
	},
	{
		ID:          "content-creator",
		Number:      4,
		Name:        "Content Creator",
		Description: "Generates marketing content and documentation",
		Color:       "purple",
	},
}

// Agents returns a copy of the agent catalogue in display order.
func Agents() []ChatAgent {
	return append([]ChatAgent(nil), catalog...)
}

// LookupAgent finds a catalogue entry by slug.
func LookupAgent(id string) (ChatAgent, bool) {
	for _, a := range catalog {
		if a.ID == id {
			return a, true
		}
	}
	return ChatAgent{}, false
}

// SelectionLabel returns a display name for a panel selection value.
func SelectionLabel(selection string) string {
	switch selection {
	case ModeGeneral:
		return "General Assistant"
	case ModeTeam:
		return "Team Chat"
	}
	if a, ok := LookupAgent(selection); ok {
		return a.Name
	}
	return selection
}
