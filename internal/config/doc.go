// Package config loads and validates the showsync configuration.
//
// Everything lives in a single data directory: config.toml carries the store,
// TMDB, push, sync, logging, API and Jellyfin sections while tasks.toml lists the
// source/destination pairs to reconcile. Missing files fall back to defaults
// so commands like push and parse work before a full setup exists; commands
// that reconcile call RequireSync to insist on credentials.
package config
