// Package server assembles the copilot process: it opens the token store,
// creates the backend client and chat hub, mounts the dashboard and health
// endpoints, and runs the HTTP server on a TCP address or a tailnet node
// until its context is canceled.
package server
