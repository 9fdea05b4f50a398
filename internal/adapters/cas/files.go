package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/slicecache/internal/core/domain"
	"go.trai.ch/zerr"
)

// cacheFileName returns the content-addressed cache file of a document.
func cacheFileName(profilesDir, location string) string {
	hash := sha256.Sum256([]byte(location))
	return filepath.Join(profilesDir, hex.EncodeToString(hash[:])+".json")
}

func readCacheFile(path string) (map[domain.ProfileKey]domain.ProfileRecord, error) {
	//nolint:gosec // Path is constructed from the cache directory and a hashed name
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheFileReadFailed.Error()), "path", path)
	}

	var records map[domain.ProfileKey]domain.ProfileRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheFileReadFailed.Error()), "path", path)
	}
	return records, nil
}

func writeCacheFile(path string, records map[domain.ProfileKey]domain.ProfileRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrCacheFileWriteFailed.Error())
	}
	if err := atomicWriteFile(path, data, domain.PrivateFilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheFileWriteFailed.Error()), "path", path)
	}
	return nil
}

// loadSnapshot reads the persisted index. A missing file is an empty index.
func loadSnapshot(path string) (*snapshot, error) {
	//nolint:gosec // Path is the configured cache directory
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return emptySnapshot(), nil
		}
		return nil, zerr.With(zerr.Wrap(domain.ErrIndexReadFailed, err.Error()), "path", path)
	}
	if len(data) == 0 {
		return emptySnapshot(), nil
	}

	snap := emptySnapshot()
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrIndexReadFailed, err.Error()), "path", path)
	}
	if snap.Version != snapshotVersion {
		// Written by an older layout; the next refresh rebuilds it.
		return emptySnapshot(), nil
	}
	if snap.Bundles == nil {
		snap.Bundles = make(map[string]*bundleRecord)
	}
	for origin, rec := range snap.Bundles {
		if rec == nil {
			delete(snap.Bundles, origin)
		}
	}
	snap.merge()
	return snap, nil
}

func saveSnapshot(path string, snap *snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return zerr.Wrap(domain.ErrIndexWriteFailed, err.Error())
	}
	data = append(data, '\n')
	if err := atomicWriteFile(path, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrIndexWriteFailed, err.Error()), "path", path)
	}
	return nil
}

// atomicWriteFile writes data to a temporary file in the target directory and
// renames it over path.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// purgeOrphans removes files in profilesDir that no entry references and
// returns the removed paths.
func purgeOrphans(profilesDir string, refs map[string]struct{}) ([]string, error) {
	dirEntries, err := os.ReadDir(profilesDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var removed []string
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		path := filepath.Join(profilesDir, de.Name())
		if _, ok := refs[path]; ok {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, err
		}
		removed = append(removed, path)
	}
	return removed, nil
}
