// Package chat implements the single-agent and team chat panels.
//
// A Panel walks one state machine: idle, request in flight, idle. Begin
// appends the user message and a pending assistant placeholder and raises
// the loading flag; Exchange.Run calls the backend and, on every path,
// removes the placeholder, clears the draft and lowers the flag. Failures
// record one destructive Notification and append no assistant message.
//
// Single panels post {message, agent} to /chat and attach demo citations.
// Team panels pick the endpoint from their selection: ModeGeneral posts to
// /chat, ModeTeam to /team_chat, an agent slug to /chat_agent?id=N.
//
// Hub keys panels by browser session and Kind, runs dispatched exchanges in
// the background and evicts panels left idle past the configured TTL.
package chat
