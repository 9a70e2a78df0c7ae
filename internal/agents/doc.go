// Package agents holds the agent presets shown on the configuration screen.
//
// Presets live in memory for the lifetime of the process. Every mutation
// goes through the Store by preset id; the selected preset is stored as an
// id and resolved on each read, so a toggle is visible in both the list and
// the detail view. Create appends a validated draft.
package agents
