package app

import (
	"context"
	"fmt"

	"go.trai.ch/slicecache/internal/adapters/watcher" //nolint:depguard // Debouncer is shared with the adapter
	"go.trai.ch/slicecache/internal/core/domain"
	"go.trai.ch/zerr"
)

// Watch refreshes the cache index once, then again after every burst of
// changes below the local bundle directories. It returns when ctx is done.
func (a *App) Watch(ctx context.Context) error {
	settings, _, err := a.load()
	if err != nil {
		return err
	}

	local := settings.LocalSources()
	if len(local) == 0 {
		return domain.ErrNothingToWatch
	}
	roots := make([]string, len(local))
	for i, src := range local {
		roots[i] = src.Origin
	}

	if _, err := a.Refresh(ctx); err != nil {
		return err
	}

	if err := a.watcher.Start(ctx, roots...); err != nil {
		return zerr.Wrap(err, "failed to start watcher")
	}
	defer func() { _ = a.watcher.Stop() }()

	batches := make(chan []string, 1)
	debouncer := watcher.NewDebouncer(a.debounceWindow, func(paths []string) {
		select {
		case batches <- paths:
		case <-ctx.Done():
		}
	})
	defer debouncer.Stop()

	go func() {
		for event := range a.watcher.Events() {
			debouncer.Add(event.Path)
		}
	}()

	a.logger.Info(fmt.Sprintf("watching %d bundle directories", len(roots)))

	for {
		select {
		case <-ctx.Done():
			return nil
		case paths := <-batches:
			a.logger.Info(fmt.Sprintf("%d profile paths changed", len(paths)))
			if _, err := a.Refresh(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				a.logger.Error(err)
			}
		}
	}
}
