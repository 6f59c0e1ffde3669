// Package services defines shared utilities consumed by the reconciliation
// pipeline and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, task sources and show names for
//     logging.
//   - Structured error markers plus the Wrap helper so callers can tell a
//     missing show or object (ErrNotFound) from a failed request (ErrInternal).
package services
