// Package watcher watches local profile bundles for changes.
package watcher

import (
	"context"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/slicecache/internal/core/domain"
	"go.trai.ch/slicecache/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

const eventChannelBuffer = 100

// Watcher implements ports.Watcher using fsnotify. Only directories and
// profile files produce events.
type Watcher struct {
	logger ports.Logger

	mu        sync.Mutex
	fsWatcher *fsnotify.Watcher
	events    chan ports.WatchEvent
}

// NewWatcher creates a watcher. The underlying fsnotify watcher is created by Start.
func NewWatcher(logger ports.Logger) *Watcher {
	return &Watcher{
		logger: logger,
		events: make(chan ports.WatchEvent, eventChannelBuffer),
	}
}

// Start begins watching every root recursively. Events stop when ctx is done
// or Stop is called.
func (w *Watcher) Start(ctx context.Context, roots ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fsWatcher != nil {
		return zerr.New("watcher already started")
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return zerr.Wrap(err, "failed to create file watcher")
	}

	for _, root := range roots {
		if _, err := os.Stat(root); err != nil {
			_ = fsWatcher.Close()
			return zerr.With(zerr.Wrap(err, "failed to watch bundle"), "path", root)
		}
		for dir := range watchRecursively(root) {
			if err := fsWatcher.Add(dir); err != nil {
				_ = fsWatcher.Close()
				return zerr.With(zerr.Wrap(err, "failed to watch directory"), "path", dir)
			}
		}
	}

	w.fsWatcher = fsWatcher
	go w.processEvents(ctx, fsWatcher)

	return nil
}

// Stop stops the watcher and releases all resources.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fsWatcher == nil {
		return nil
	}
	return w.fsWatcher.Close()
}

// Events returns an iterator of file system events. It ends once the watcher stops.
func (w *Watcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for event := range w.events {
			if !yield(event) {
				return
			}
		}
	}
}

// watchRecursively yields root and every directory below it that is not hidden.
func watchRecursively(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // Skip directories that cannot be read.
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && isHidden(d.Name()) {
				return fs.SkipDir
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func (w *Watcher) processEvents(ctx context.Context, fsWatcher *fsnotify.Watcher) {
	defer close(w.events)

	for {
		select {
		case <-ctx.Done():
			_ = fsWatcher.Close()
			return
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return
			}

			watchEvent, ok := convertEvent(event)
			if !ok {
				continue
			}

			// New directories are watched before their event is delivered.
			if watchEvent.Operation == ports.OpCreate {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !isHidden(info.Name()) {
					for dir := range watchRecursively(event.Name) {
						_ = fsWatcher.Add(dir)
					}
				}
			}

			select {
			case w.events <- watchEvent:
			case <-ctx.Done():
				_ = fsWatcher.Close()
				return
			}

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error: " + err.Error())
		}
	}
}

// convertEvent maps an fsnotify event to a watch event. Events for hidden
// entries and for files that are not profiles are dropped. Removed and renamed
// paths can no longer be inspected, so they pass unless their name rules them out.
func convertEvent(event fsnotify.Event) (ports.WatchEvent, bool) {
	name := filepath.Base(event.Name)
	if isHidden(name) {
		return ports.WatchEvent{}, false
	}

	var op ports.WatchOp
	switch {
	case event.Has(fsnotify.Write):
		op = ports.OpWrite
	case event.Has(fsnotify.Create):
		op = ports.OpCreate
	case event.Has(fsnotify.Remove):
		op = ports.OpRemove
	case event.Has(fsnotify.Rename):
		op = ports.OpRename
	default:
		return ports.WatchEvent{}, false
	}

	if !isProfile(name) {
		info, err := os.Stat(event.Name)
		switch {
		case err == nil && info.IsDir():
		case err != nil && (op == ports.OpRemove || op == ports.OpRename) && filepath.Ext(name) == "":
			// A removed directory.
		default:
			return ports.WatchEvent{}, false
		}
	}

	return ports.WatchEvent{Path: event.Name, Operation: op}, true
}

func isProfile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), domain.ProfileExt)
}
