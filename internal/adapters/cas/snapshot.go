package cas

import (
	"maps"
	"slices"

	"go.trai.ch/slicecache/internal/core/domain"
)

// snapshotVersion is bumped when the persisted index layout changes.
const snapshotVersion = 2

// bundleRecord is everything one bundle contributed to the index.
type bundleRecord struct {
	State   domain.BundleState                      `json:"state"`
	Entries map[domain.ProfileKey]domain.CacheEntry `json:"entries"`
}

// clone returns a copy whose maps can be modified.
func (b *bundleRecord) clone() *bundleRecord {
	state := b.State
	state.Documents = maps.Clone(b.State.Documents)
	state.Files = maps.Clone(b.State.Files)
	if state.Documents == nil {
		state.Documents = make(map[string]string)
	}
	entries := maps.Clone(b.Entries)
	if entries == nil {
		entries = make(map[domain.ProfileKey]domain.CacheEntry)
	}
	return &bundleRecord{State: state, Entries: entries}
}

// snapshot is one generation of the index. It is never mutated after being
// published, and bundle records are shared between generations.
type snapshot struct {
	Version int `json:"version"`
	// Order lists the bundle origins in configured order. Later origins win key conflicts.
	Order   []string                 `json:"order"`
	Bundles map[string]*bundleRecord `json:"bundles"`

	entries map[domain.ProfileKey]domain.CacheEntry
}

func emptySnapshot() *snapshot {
	return &snapshot{
		Version: snapshotVersion,
		Bundles: make(map[string]*bundleRecord),
		entries: make(map[domain.ProfileKey]domain.CacheEntry),
	}
}

// clone returns a shallow copy that can be modified and published.
func (s *snapshot) clone() *snapshot {
	return &snapshot{
		Version: snapshotVersion,
		Order:   slices.Clone(s.Order),
		Bundles: maps.Clone(s.Bundles),
	}
}

// merge computes the key view from the bundles in configured order.
func (s *snapshot) merge() {
	s.entries = make(map[domain.ProfileKey]domain.CacheEntry)
	for _, origin := range s.Order {
		rec, ok := s.Bundles[origin]
		if !ok {
			continue
		}
		maps.Copy(s.entries, rec.Entries)
	}
}

// referenced returns the set of files used by any bundle, including shadowed entries.
func (s *snapshot) referenced() map[string]struct{} {
	refs := make(map[string]struct{})
	for _, rec := range s.Bundles {
		for _, entry := range rec.Entries {
			refs[entry.SourcePath] = struct{}{}
		}
	}
	return refs
}
