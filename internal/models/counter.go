package models

import "time"

// Counter represents the view counter for a single tracked resource.
type Counter struct {
	// Key is the storage identity, derived deterministically from the
	// namespace and identifier. Immutable once created.
	Key string
	// Namespace is the logical service the resource belongs to, e.g. "github".
	Namespace string
	// Identifier names the resource within its namespace, e.g. "owner/repo".
	Identifier string
	// Attrs holds namespace-specific fields, e.g. {"user": ..., "repo": ...}
	// for github resources.
	Attrs map[string]string
	// Total is the running view count. It only ever grows, and only via the
	// store's atomic increment.
	Total int64
	// LastUpdated is the timestamp of the most recent increment.
	LastUpdated time.Time
}
