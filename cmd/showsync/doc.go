// Package main hosts the showsync CLI entrypoint and command graph.
//
// server runs the reconciliation loop, once runs a single pass, push sends a
// manual notification. status, sync and logs talk to a running server; parse,
// history, check and config are operator aids.
// Every command resolves its configuration from the --data-dir directory.
package main
