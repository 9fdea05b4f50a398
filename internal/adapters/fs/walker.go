// Package fs provides file system adapters for walking and hashing files.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
	"strings"

	"go.trai.ch/slicecache/internal/core/domain"
)

// Walker enumerates profile files in local bundles.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkProfiles yields every profile file below root. Hidden directories are
// skipped and unreadable entries are ignored.
func (w *Walker) WalkProfiles(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == root {
					return err
				}
				return nil //nolint:nilerr // Skip entries that disappear or cannot be read.
			}

			if d.IsDir() {
				if path != root && w.shouldSkipDir(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}

			if !strings.EqualFold(filepath.Ext(path), domain.ProfileExt) {
				return nil
			}

			if !yield(path) {
				return filepath.SkipAll
			}

			return nil
		})
	}
}

// shouldSkipDir reports whether a directory is hidden (.git, .jj, editor state).
func (w *Walker) shouldSkipDir(name string) bool {
	return strings.HasPrefix(name, ".")
}
