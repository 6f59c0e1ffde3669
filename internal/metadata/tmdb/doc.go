// Package tmdb provides the minimal TMDB API client used to resolve show
// directories to canonical names.
//
// It exposes TV search with an optional first-air year and TV detail
// retrieval. 404 answers map to services.ErrNotFound; rate limits and server
// errors are retried a few times before surfacing as services.ErrInternal.
package tmdb
