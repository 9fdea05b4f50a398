package ports

import (
	"context"

	"go.trai.ch/slicecache/internal/core/domain"
)

// BundleFetcher reads raw profile documents from bundle sources.
//
//go:generate mockgen -source=fetcher.go -destination=mocks/mock_fetcher.go -package=mocks
type BundleFetcher interface {
	// Fetch reads one bundle. prev is the state recorded by the last successful refresh
	// and lets local bundles skip files whose modification time did not increase.
	Fetch(ctx context.Context, src domain.BundleSource, prev domain.BundleState) (*domain.FetchedBundle, error)

	// FetchAll fetches every request with at most limit fetches in flight and returns
	// one result per request, in request order, once all of them have finished.
	FetchAll(ctx context.Context, reqs []domain.FetchRequest, limit int) []domain.FetchResult

	// FetchDocument re-reads a single document of a bundle.
	FetchDocument(ctx context.Context, src domain.BundleSource, location string) (domain.RawDocument, error)
}
