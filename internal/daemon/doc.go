// Package daemon coordinates the long-running showsync process.
//
// It owns the interval loop that drives reconciliation passes, a flock on the
// data directory so two loops never reconcile the same libraries, the history
// bookkeeping around each pass, and the optional HTTP status server. The
// reconciliation itself lives in the organizer package; the daemon only
// decides when it runs.
package daemon
