// Package util provides small generic helpers shared across the client:
// size parsing, secret masking, and pointer utilities.
package util
