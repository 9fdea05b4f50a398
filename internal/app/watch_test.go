package app_test

import (
	"context"
	"iter"
	"path/filepath"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/slicecache/internal/core/domain"
	"go.trai.ch/slicecache/internal/core/ports"
	"go.uber.org/mock/gomock"
)

func TestApp_Watch(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		f.quietLogger()
		f.app.WithDebounceWindow(100 * time.Millisecond)

		local := f.settings.Sources[1].Origin
		events := make(chan ports.WatchEvent)

		var refreshes atomic.Int32
		f.index.EXPECT().Refresh(gomock.Any(), f.settings.Sources).DoAndReturn(
			func(_ context.Context, _ []domain.BundleSource) (*domain.RefreshReport, error) {
				refreshes.Add(1)
				return &domain.RefreshReport{}, nil
			}).Times(2)
		f.watcher.EXPECT().Start(gomock.Any(), local).Return(nil)
		f.watcher.EXPECT().Events().Return(iter.Seq[ports.WatchEvent](func(yield func(ports.WatchEvent) bool) {
			for event := range events {
				if !yield(event) {
					return
				}
			}
		}))
		f.watcher.EXPECT().Stop().Return(nil)

		ctx, cancel := context.WithCancel(t.Context())
		done := make(chan error, 1)
		go func() { done <- f.app.Watch(ctx) }()

		synctest.Wait()
		assert.Equal(t, int32(1), refreshes.Load(), "initial refresh")

		events <- ports.WatchEvent{Path: filepath.Join(local, "a.ini"), Operation: ports.OpWrite}
		events <- ports.WatchEvent{Path: filepath.Join(local, "b.ini"), Operation: ports.OpCreate}
		events <- ports.WatchEvent{Path: filepath.Join(local, "a.ini"), Operation: ports.OpWrite}

		time.Sleep(50 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, int32(1), refreshes.Load(), "burst still settling")

		time.Sleep(100 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, int32(2), refreshes.Load(), "one refresh per burst")

		cancel()
		close(events)
		require.NoError(t, <-done)
	})
}

func TestApp_Watch_NothingToWatch(t *testing.T) {
	f := newFixture(t)
	f.settings.Sources = f.settings.Sources[:1]

	err := f.app.Watch(t.Context())
	require.ErrorIs(t, err, domain.ErrNothingToWatch)
}
