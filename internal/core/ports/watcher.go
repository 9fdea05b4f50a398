package ports

import (
	"context"
	"iter"
)

//go:generate mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks

// WatchOp represents the type of file system operation.
type WatchOp uint8

const (
	// OpCreate indicates a file or directory was created.
	OpCreate WatchOp = iota
	// OpWrite indicates a file was modified.
	OpWrite
	// OpRemove indicates a file or directory was removed.
	OpRemove
	// OpRename indicates a file or directory was renamed.
	OpRename
)

// WatchEvent represents a file system event from the watcher.
type WatchEvent struct {
	// Path is the path of the file or directory that changed.
	Path string
	// Operation is the type of change that occurred.
	Operation WatchOp
}

// Watcher defines the interface for watching file system changes.
type Watcher interface {
	// Start begins watching the given root directories recursively.
	Start(ctx context.Context, roots ...string) error
	// Stop stops the watcher and releases all resources.
	Stop() error
	// Events returns an iterator of file system events.
	Events() iter.Seq[WatchEvent]
}
