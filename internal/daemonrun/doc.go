// Package daemonrun wires configuration into a running showsync process: the
// file store, metadata resolver, notifier, history ledger, organizer and
// daemon loop.
package daemonrun
