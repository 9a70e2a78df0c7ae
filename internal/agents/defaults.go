// ABOUTME: Built-in agent presets used when configuration seeds none

package agents

// DefaultPresets returns fresh copies of the built-in presets.
func DefaultPresets() []Preset {
	return []Preset{
		{
			ID:          "customer-insights",
			Name:        "Customer Insights",
			Description: "Provides detailed customer analysis and support insights",
			Tone:        "Empathetic",
			Prompt:      "You analyse customer feedback and support history. Summarise trends and cite the tickets you used.",
			Sources:     sourcesFor([]string{"Jira", "Notion"}),
			Status:      StatusActive,
		},
		{
			ID:          "technical-support",
			Name:        "Technical Support",
			Description: "Handles technical queries and troubleshooting",
			Tone:        "Precise",
			Prompt:      "You troubleshoot technical problems step by step using runbooks and known issues.",
			Sources:     sourcesFor([]string{"Jira", "Confluence"}),
			Status:      StatusActive,
		},
		{
			ID:          "sales-assistant",
			Name:        "Sales Assistant",
			Description: "Supports sales processes and lead qualification",
			Tone:        "Persuasive",
			Prompt:      "You help qualify leads and prepare account briefs from CRM notes and product docs.",
			Sources:     sourcesFor([]string{"Notion"}),
			Status:      StatusActive,
		},
		{
			ID:          "content-creator",
			Name:        "Content Creator",
			Description: "Generates marketing content and documentation",
			Tone:        "Friendly",
			Prompt:      "You draft marketing copy and documentation in the company voice.",
			Sources:     sourcesFor([]string{"Confluence", "Notion"}),
			Status:      StatusInactive,
		},
	}
}
