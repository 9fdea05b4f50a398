package ports

import (
	"context"

	"go.trai.ch/slicecache/internal/core/domain"
)

//go:generate mockgen -source=profile_store.go -destination=mocks/mock_profile_store.go -package=mocks

// ProfileStore is the read side of the cache index.
type ProfileStore interface {
	// Lookup returns the entry for key or an error wrapping domain.ErrProfileNotFound.
	Lookup(key domain.ProfileKey) (domain.CacheEntry, error)
	// Get returns the raw record for key or an error wrapping domain.ErrProfileNotFound.
	Get(key domain.ProfileKey) (domain.ProfileRecord, error)
	// Entries lists the entries of a category sorted by key. An empty category lists all entries.
	Entries(category domain.Category) []domain.CacheEntry
}

// CacheIndex is the persistent profile cache.
type CacheIndex interface {
	ProfileStore
	// Refresh re-fetches every source and commits the merged index.
	Refresh(ctx context.Context, sources []domain.BundleSource) (*domain.RefreshReport, error)
	// RefreshKey re-fetches the document that provides key and commits the result.
	RefreshKey(ctx context.Context, key domain.ProfileKey) error
}

// IndexOpener opens the cache index described by the loaded settings.
type IndexOpener interface {
	// Open loads the index persisted in settings.CacheDir. Refreshes of the
	// returned index fetch with settings.Concurrency workers and settings.HTTPTimeout.
	Open(settings *domain.Settings) (CacheIndex, error)
}
