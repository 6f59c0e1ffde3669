// Package library holds the pure reconciliation steps: grouping a listing
// into seasons, diffing a season against what the destination already holds,
// and wording the completion message. Nothing here talks to the network.
package library
