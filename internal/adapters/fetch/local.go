package fetch

import (
	"os"

	"go.trai.ch/slicecache/internal/core/domain"
	"go.trai.ch/zerr"
)

// fetchLocalDir scans a directory bundle. Files whose modification time did
// not increase since prev are reported as unchanged and not read. Files that
// cannot be read are reported in Failed.
func (f *Fetcher) fetchLocalDir(src domain.BundleSource, prev domain.BundleState) (*domain.FetchedBundle, error) {
	info, err := os.Stat(src.Origin)
	if err != nil {
		return nil, fetchFailed(err, src.Origin)
	}
	if !info.IsDir() {
		return nil, zerr.With(zerr.Wrap(domain.ErrFetchFailed, "bundle is not a directory"), "location", src.Origin)
	}

	bundle := &domain.FetchedBundle{
		Source: src,
		Files:  make(map[string]int64),
	}

	for path := range f.walker.WalkProfiles(src.Origin) {
		stat, err := os.Stat(path)
		if err != nil {
			// Removed between walking and reading.
			continue
		}
		mtime := stat.ModTime().UnixNano()
		bundle.Files[path] = mtime

		if last, seen := prev.Files[path]; seen && mtime <= last {
			bundle.Unchanged = append(bundle.Unchanged, path)
			continue
		}

		doc, err := readLocal(path)
		if err != nil {
			// Forgotten so the next scan reads it again.
			delete(bundle.Files, path)
			bundle.Failed = append(bundle.Failed, &domain.BundleError{Origin: path, Err: err})
			continue
		}
		bundle.Documents = append(bundle.Documents, doc)
	}

	return bundle, nil
}
