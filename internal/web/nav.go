// ABOUTME: Sidebar navigation table and the fixed content of the sample pages
// ABOUTME: Tool items without a page fall through to the not-found route

package web

// NavItem is one sidebar link
type NavItem struct {
	Title string
	URL   string
	Icon  string
}

var navigationItems = []NavItem{
	{Title: "Home", URL: "/", Icon: "home"},
	{Title: "Sample: New Hire Onboarding", URL: "/onboarding", Icon: "users"},
	{Title: "Sample: IT Help Desk", URL: "/helpdesk", Icon: "message"},
	{Title: "Sample: Product & Engineering", URL: "/product", Icon: "wand"},
	{Title: "Sample: Sales & Support", URL: "/sales", Icon: "users"},
}

var toolItems = []NavItem{
	{Title: "Saved and Following", URL: "/saved", Icon: "bookmark"},
	{Title: "My Drafts", URL: "/drafts", Icon: "edit"},
	{Title: "Tasks", URL: "/tasks", Icon: "check"},
	{Title: "Chat", URL: "/chat", Icon: "message"},
	{Title: "AI Agent Center", URL: "/agents", Icon: "bot"},
	{Title: "Search Sources", URL: "/sources", Icon: "database"},
	{Title: "Analytics", URL: "/analytics", Icon: "chart"},
	{Title: "Card Manager", URL: "/cards", Icon: "card"},
	{Title: "Manage", URL: "/manage", Icon: "settings"},
}

// staticPage is a fixed informational screen
type staticPage struct {
	Path      string
	Title     string
	Icon      string
	CardTitle string
	Intro     string
	Items     []string
}

var staticPages = []staticPage{
	{
		Path:      "/onboarding",
		Title:     "New Hire Onboarding",
		Icon:      "users",
		CardTitle: "Welcome to Your Onboarding Journey",
		Intro:     "This is a sample onboarding page for new hires. Here you would typically find:",
		Items: []string{
			"Company introduction and culture overview",
			"Role-specific training materials",
			"Team introductions and contact information",
			"IT setup and access requests",
			"Benefits enrollment and HR documentation",
			"First week schedule and goals",
		},
	},
	{
		Path:      "/helpdesk",
		Title:     "IT Help Desk",
		Icon:      "message",
		CardTitle: "IT Support Center",
		Intro:     "Welcome to the IT Help Desk. Here you can find assistance with:",
		Items: []string{
			"Hardware troubleshooting and replacement requests",
			"Software installation and license management",
			"Network connectivity and VPN issues",
			"Account access and password resets",
			"Security incident reporting",
			"Equipment requests and procurement",
		},
	},
	{
		Path:      "/product",
		Title:     "Product & Engineering",
		Icon:      "wand",
		CardTitle: "Product Development Hub",
		Intro:     "Central hub for product development and engineering resources:",
		Items: []string{
			"Product roadmap and feature specifications",
			"Engineering standards and best practices",
			"API documentation and technical guides",
			"Code review processes and deployment procedures",
			"Architecture decisions and technical debt tracking",
			"Sprint planning and project management tools",
		},
	},
	{
		Path:      "/sales",
		Title:     "Sales & Support",
		Icon:      "users",
		CardTitle: "Sales & Customer Success Center",
		Intro:     "Resources and tools for sales and customer support teams:",
		Items: []string{
			"Sales playbooks and methodology guides",
			"Customer onboarding and success workflows",
			"Product pricing and competitive analysis",
			"Support ticket management and escalation procedures",
			"Customer health scoring and retention strategies",
			"Sales training materials and certification paths",
		},
	},
}
