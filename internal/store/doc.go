// Package store holds completed analyses in memory with TTL-based eviction.
// Entries are read-mostly; a background goroutine sweeps expired ones.
package store
