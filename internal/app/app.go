// Package app implements the application layer for slicecache.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"go.trai.ch/slicecache/internal/adapters/telemetry" //nolint:depguard // Tracing is configured by the app layer
	"go.trai.ch/slicecache/internal/adapters/watcher"   //nolint:depguard // Debouncer is shared with the adapter
	"go.trai.ch/slicecache/internal/core/domain"
	"go.trai.ch/slicecache/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

const refreshFlightKey = "refresh"

// App represents the main application logic.
type App struct {
	settingsLoader ports.SettingsLoader
	opener         ports.IndexOpener
	hasher         ports.Hasher
	slicer         ports.Slicer
	watcher        ports.Watcher
	logger         ports.Logger
	tracer         ports.Tracer

	configPath     string
	debounceWindow time.Duration

	mu       sync.Mutex
	settings *domain.Settings
	index    ports.CacheIndex

	refreshes singleflight.Group
}

// New creates a new App instance.
func New(
	settingsLoader ports.SettingsLoader,
	opener ports.IndexOpener,
	hasher ports.Hasher,
	slicer ports.Slicer,
	watch ports.Watcher,
	log ports.Logger,
	tracer ports.Tracer,
) *App {
	return &App{
		settingsLoader: settingsLoader,
		opener:         opener,
		hasher:         hasher,
		slicer:         slicer,
		watcher:        watch,
		logger:         log,
		tracer:         tracer,
		debounceWindow: watcher.DefaultDebounceWindow,
	}
}

// WithDebounceWindow sets how long Watch waits for a burst of changes to settle.
func (a *App) WithDebounceWindow(window time.Duration) *App {
	a.debounceWindow = window
	return a
}

// SetConfigPath selects the settings file. An empty path searches upward from
// the working directory. Settings already loaded are dropped.
func (a *App) SetConfigPath(path string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.configPath = path
	a.settings = nil
	a.index = nil
}

// SetLogJSON switches the logger to JSON output when it supports it.
func (a *App) SetLogJSON(enable bool) {
	if l, ok := a.logger.(interface{ SetJSON(bool) }); ok {
		l.SetJSON(enable)
	}
}

// EnableTracing reports span timings through the logger. The returned
// function flushes and stops tracing.
func (a *App) EnableTracing() func(context.Context) error {
	return telemetry.Setup(a.logger)
}

// load reads the settings file and opens the cache index on first use.
func (a *App) load() (*domain.Settings, ports.CacheIndex, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.index != nil {
		return a.settings, a.index, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to get working directory")
	}

	settings, err := a.settingsLoader.Load(a.configPath, cwd)
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to load settings")
	}

	index, err := a.opener.Open(settings)
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to open cache index")
	}

	a.settings = settings
	a.index = index
	return settings, index, nil
}

// Refresh re-fetches every configured bundle. Concurrent calls share one
// refresh. Per-bundle failures are reported, not returned.
func (a *App) Refresh(ctx context.Context) (*domain.RefreshReport, error) {
	settings, index, err := a.load()
	if err != nil {
		return nil, err
	}

	ctx, span := a.tracer.Start(ctx, "refresh", ports.WithAttribute("sources", len(settings.Sources)))
	defer span.End()

	v, err, shared := a.refreshes.Do(refreshFlightKey, func() (any, error) {
		report, err := index.Refresh(ctx, settings.Sources)
		if err != nil {
			return nil, err
		}
		a.logReport(report)
		return report, nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, zerr.Wrap(err, "refresh failed")
	}

	report, _ := v.(*domain.RefreshReport)
	if report == nil {
		report = &domain.RefreshReport{}
	}
	span.SetAttribute("shared", shared)
	span.SetAttribute("updated", len(report.Updated))
	span.SetAttribute("failed", len(report.Failed))
	return report, nil
}

func (a *App) logReport(report *domain.RefreshReport) {
	for _, change := range report.Versions {
		a.logger.Info(fmt.Sprintf("bundle %s %s from %s to %s", change.Origin, change.Direction, change.From, change.To))
	}
	for _, failure := range report.Failed {
		a.logger.Warn(fmt.Sprintf("bundle %s kept its previous profiles: %v", failure.Origin, failure.Err))
	}
	a.logger.Info(fmt.Sprintf("refreshed %d documents, %d unchanged, %d profiles purged",
		len(report.Updated), len(report.Unchanged), len(report.Purged)))
}

// List returns the cached entries of category sorted by key. An empty category lists all entries.
func (a *App) List(_ context.Context, category domain.Category) ([]domain.CacheEntry, error) {
	_, index, err := a.load()
	if err != nil {
		return nil, err
	}
	return index.Entries(category), nil
}

// CleanOptions selects what Clean removes.
type CleanOptions struct {
	// Cache removes the cache index and every cached document.
	Cache bool
	// Artifacts removes written configs, artifacts and their fingerprints.
	Artifacts bool
}

// Clean removes the cache directory and or the work directory.
func (a *App) Clean(_ context.Context, options CleanOptions) error {
	settings, _, err := a.load()
	if err != nil {
		return err
	}

	var errs error
	remove := func(path, name string) {
		a.logger.Info(fmt.Sprintf("removing %s...", name))
		if err := os.RemoveAll(path); err != nil {
			errs = errors.Join(errs, zerr.With(zerr.Wrap(err, "failed to remove "+name), "path", path))
			return
		}
		a.logger.Info("removed " + name)
	}

	if options.Cache {
		remove(settings.CacheDir, "profile cache")
		a.mu.Lock()
		a.index = nil
		a.mu.Unlock()
	}
	if options.Artifacts {
		remove(settings.WorkDir, "sliced artifacts")
	}

	return errs
}
