// ABOUTME: Fixed catalogue of connectable knowledge sources and the sources FAQ
// ABOUTME: Provides category/name filtering for the sources screen

package sources

import "strings"

// Category groups sources on the filter pills
type Category string

const (
	CategoryProjectManagement Category = "project-management"
	CategoryDocumentation     Category = "documentation"
	CategoryWorkspace         Category = "workspace"
)

// Categories lists the filter pills in display order
var Categories = []struct {
	ID    Category
	Label string
}{
	{CategoryProjectManagement, "Project Management"},
	{CategoryDocumentation, "Documentation"},
	{CategoryWorkspace, "Workspace"},
}

// Source is an external system whose API token can be captured
type Source struct {
	ID          string
	Name        string
	Description string
	Category    Category
}

// TokenKey is the key-value entry holding this source's token
func (s Source) TokenKey() string {
	return TokenKey(s.ID)
}

// TokenKey returns the storage key for a source id
func TokenKey(sourceID string) string {
	return sourceID + "_token"
}

var catalog = []Source{
	{ID: "jira", Name: "Jira", Description: "Project management and issue tracking", Category: CategoryProjectManagement},
	{ID: "confluence", Name: "Confluence", Description: "Team collaboration and documentation", Category: CategoryDocumentation},
	{ID: "notion", Name: "Notion", Description: "All-in-one workspace for notes and docs", Category: CategoryWorkspace},
}

// All returns the catalogue in display order
func All() []Source {
	return append([]Source(nil), catalog...)
}

// Lookup finds a source by id
func Lookup(id string) (Source, bool) {
	for _, s := range catalog {
		if s.ID == id {
			return s, true
		}
	}
	return Source{}, false
}

// Filter returns sources matching a free-text query against name and
// description and, when non-empty, a category.
func Filter(query string, category Category) []Source {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []Source
	for _, s := range catalog {
		if category != "" && s.Category != category {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(s.Name), q) &&
			!strings.Contains(strings.ToLower(s.Description), q) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// FAQEntry is one accordion item. Lines are rendered as separate paragraphs.
type FAQEntry struct {
	Question string
	Lines    []string
}

// FAQ is the question list under the sources grid
var FAQ = []FAQEntry{
	{
		Question: "How do I get my API token for each platform?",
		Lines: []string{
			"**Jira:** Go to your Atlassian Account Settings → Security → API tokens → Create API token",
			"**Confluence:** Same as Jira - use your Atlassian API token from Account Settings → Security → API tokens",
			"**Notion:** Visit notion.so/my-integrations → New integration → Copy the Internal Integration Token",
		},
	},
	{
		Question: "What permissions do I need for each integration?",
		Lines: []string{
			"**Jira:** Read access to projects, issues, and comments you want to include",
			"**Confluence:** Read access to spaces and pages you want to index",
			"**Notion:** Read content permission for databases and pages you want to connect",
		},
	},
	{
		Question: "How often is my data synchronized?",
		Lines: []string{
			"Your connected sources are synchronized in real-time when you start a chat session. This ensures you always have access to the latest information from your knowledge bases.",
		},
	},
	{
		Question: "Is my data secure and private?",
		Lines: []string{
			"Yes, your API tokens are stored securely and encrypted. We only access the data you explicitly grant permissions for, and all communication happens over secure HTTPS connections.",
		},
	},
	{
		Question: "Can I disconnect a source later?",
		Lines: []string{
			"Yes, you can disconnect any source at any time by clicking on the connected source and removing your API token. This will immediately stop access to that platform.",
		},
	},
	{
		Question: "What if my API token stops working?",
		Lines: []string{
			"If your token expires or is revoked, you'll receive an error message during chat sessions. Simply click on the source again and enter a new valid API token to restore connectivity.",
		},
	},
}
