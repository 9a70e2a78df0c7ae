// Package sources captures API tokens for the fixed set of knowledge sources.
//
// Tokens are written to the key-value store under "<sourceId>_token" with
// last-write-wins semantics. They are never verified against the external
// system. Connection status is read back from the store: a stored token is
// connected, a missing one disconnected, and one the store cannot decrypt
// is reported as an error.
package sources
