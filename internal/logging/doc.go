// Package logging assembles structured slog loggers and formatting helpers used
// across showsync.
//
// It owns the console and JSON handlers, the optional size-rotated log file
// used in server mode, and context helpers that tag lines with the run ID,
// task and show being reconciled. NewNop serves tests and wiring code that
// must not fail.
package logging
