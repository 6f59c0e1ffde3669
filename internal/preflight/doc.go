// Package preflight validates that the data directory, metadata provider,
// file store and task sources are usable before a pass runs. The check
// command renders the results.
package preflight
