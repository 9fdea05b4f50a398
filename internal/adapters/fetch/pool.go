package fetch

import (
	"context"
	"runtime"

	"go.trai.ch/slicecache/internal/core/domain"
	"golang.org/x/sync/errgroup"
)

// FetchAll fetches every request concurrently with at most limit fetches in
// flight. A failed bundle does not cancel the others. Results are returned in
// request order.
func (f *Fetcher) FetchAll(ctx context.Context, reqs []domain.FetchRequest, limit int) []domain.FetchResult {
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	results := make([]domain.FetchResult, len(reqs))

	var g errgroup.Group
	g.SetLimit(limit)

	for i, req := range reqs {
		g.Go(func() error {
			bundle, err := f.Fetch(ctx, req.Source, req.Prev)
			results[i] = domain.FetchResult{Source: req.Source, Bundle: bundle, Err: err}
			return nil
		})
	}

	_ = g.Wait()
	return results
}
