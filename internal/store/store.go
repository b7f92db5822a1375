// Package store holds the persistence backends for the workout log.
package store

import (
	"context"
	"strings"

	"fitflow/internal/model"
)

// Store is an append-only workout log.
type Store interface {
	List(ctx context.Context) ([]model.PersistedLogEntry, error)
	Append(ctx context.Context, entry model.LogEntry) (model.PersistedLogEntry, error)
}

var (
	_ Store = (*Sheety)(nil)
	_ Store = (*Local)(nil)
)

// IsRemote reports whether target names a Sheety endpoint rather than a
// local database path.
func IsRemote(target string) bool {
	return strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://")
}
