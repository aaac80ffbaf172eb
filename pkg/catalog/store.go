// Package catalog caches the platform's app and function catalog in a
// local SQLite database so list and search keep working offline.
package catalog

import (
	"context"
	"time"

	"github.com/appforge-io/forgectl/pkg/client"
)

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=store.go Store

// SearchParams filters a catalog search.
type SearchParams struct {
	// Term is matched case-insensitively as a substring of a record's
	// name, display name, description, and tags. Empty matches everything.
	Term string
	// AppNames restricts the result to the named apps.
	AppNames []string
	// Limit caps the number of results. Zero means no limit.
	Limit int
}

// Store is the local catalog cache. Records are keyed by name, so upserts
// are idempotent and a sync can safely be re-run.
type Store interface {
	// UpsertApps inserts or updates the given apps.
	UpsertApps(ctx context.Context, apps []client.App) error
	// UpsertFunctions inserts or updates the given functions.
	UpsertFunctions(ctx context.Context, functions []client.Function) error
	// SearchApps returns cached apps matching the params, ordered by name.
	SearchApps(ctx context.Context, params SearchParams) ([]client.App, error)
	// SearchFunctions returns cached functions matching the params,
	// ordered by name.
	SearchFunctions(ctx context.Context, params SearchParams) ([]client.Function, error)
	// ReplaceAll atomically swaps the cache contents for the given records
	// and stamps the sync time.
	ReplaceAll(ctx context.Context, apps []client.App, functions []client.Function) error
	// LastSyncedAt returns when ReplaceAll last completed, or the zero
	// time if the cache has never been synced.
	LastSyncedAt(ctx context.Context) (time.Time, error)
	// Close releases the underlying database.
	Close() error
}
