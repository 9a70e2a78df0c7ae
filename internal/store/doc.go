// Package store provides persistent storage for source tokens.
//
// # Architecture
//
// Store is a small key-value contract. Implementations:
//
//   - SQLiteStore: modernc.org/sqlite backed table, WAL mode
//   - SealedStore: decorator that encrypts values with NaCl secretbox
//   - MockStore: in-memory implementation for tests
//
// # Keys
//
// Source tokens are stored under "<sourceId>_token" (for example
// "jira_token"). Values are opaque; nothing in this package validates them.
// Writes are last-write-wins.
//
// # Errors
//
//   - ErrNotFound: key missing on read or delete
//   - ErrEmptyKey: write without a key
//   - ErrUnseal: sealed value could not be decrypted
package store
