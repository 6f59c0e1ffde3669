// Package metadata resolves show directories to canonical show information
// through TMDB.
package metadata
