// Package api defines wire-format types and converters for the HTTP status
// endpoint. It translates history records and organizer reports into
// transport-friendly DTOs so consumers never couple to internal types.
//
// DTOs use camelCase JSON tags. Timestamps use RFC3339 with milliseconds in
// UTC; zero times are omitted.
package api
