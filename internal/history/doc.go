// Package history keeps a SQLite ledger of reconciliation runs and the episode
// files each run placed into the library. It backs the history command and
// the status API; the reconciler itself never reads it, so the remote tree
// stays the only source of truth for what is already in place.
package history
