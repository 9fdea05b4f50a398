// Package cas implements the content-addressed profile cache index.
package cas

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/bluele/gcache"
	"github.com/hashicorp/go-version"
	"go.trai.ch/slicecache/internal/core/domain"
	"go.trai.ch/slicecache/internal/core/ports"
	"go.trai.ch/slicecache/internal/engine/bundle"
	"go.trai.ch/zerr"
)

var _ ports.CacheIndex = (*Index)(nil)

// parsedCacheSize bounds the number of parsed documents kept in memory.
const parsedCacheSize = 128

// Index implements ports.CacheIndex. Writers serialize on a mutex and publish
// a new snapshot when done; readers load the current snapshot without locking.
type Index struct {
	dir         string
	fetcher     ports.BundleFetcher
	logger      ports.Logger
	concurrency int

	mu     sync.Mutex
	snap   atomic.Pointer[snapshot]
	parsed gcache.Cache
}

// Open loads the index persisted in dir. A missing index is empty.
func Open(dir string, fetcher ports.BundleFetcher, logger ports.Logger, concurrency int) (*Index, error) {
	dir = filepath.Clean(dir)
	snap, err := loadSnapshot(domain.IndexPath(dir))
	if err != nil {
		return nil, err
	}

	ix := &Index{
		dir:         dir,
		fetcher:     fetcher,
		logger:      logger,
		concurrency: concurrency,
		parsed:      gcache.New(parsedCacheSize).ARC().Build(),
	}
	ix.snap.Store(snap)
	return ix, nil
}

// Lookup returns the entry for key.
func (ix *Index) Lookup(key domain.ProfileKey) (domain.CacheEntry, error) {
	entry, ok := ix.snap.Load().entries[key]
	if !ok {
		return domain.CacheEntry{}, notFound(key)
	}
	return entry, nil
}

// Get returns a copy of the raw record for key.
func (ix *Index) Get(key domain.ProfileKey) (domain.ProfileRecord, error) {
	entry, ok := ix.snap.Load().entries[key]
	if !ok {
		return nil, notFound(key)
	}

	records, err := ix.records(entry)
	if err != nil {
		return nil, zerr.With(err, "key", key.String())
	}
	record, ok := records[key]
	if !ok {
		return nil, zerr.With(notFound(key), "source", entry.SourcePath)
	}
	return record.Clone(), nil
}

// Entries lists the entries of category sorted by key. An empty category lists all.
func (ix *Index) Entries(category domain.Category) []domain.CacheEntry {
	snap := ix.snap.Load()
	out := make([]domain.CacheEntry, 0, len(snap.entries))
	for _, entry := range snap.entries {
		if category == "" || entry.Category == category {
			out = append(out, entry)
		}
	}
	slices.SortFunc(out, func(a, b domain.CacheEntry) int {
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}

// Refresh fetches every source and commits the merged result. Failures of
// single bundles are reported and leave that bundle's previous entries in
// place; only errors that prevent the commit are returned.
func (ix *Index) Refresh(ctx context.Context, sources []domain.BundleSource) (*domain.RefreshReport, error) {
	if len(sources) == 0 {
		return nil, domain.ErrNoSources
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	prev := ix.snap.Load()

	var (
		order []string
		reqs  []domain.FetchRequest
	)
	for _, src := range sources {
		if slices.Contains(order, src.Origin) {
			continue
		}
		order = append(order, src.Origin)
		req := domain.FetchRequest{Source: src}
		if rec, ok := prev.Bundles[src.Origin]; ok {
			req.Prev = rec.State
		}
		reqs = append(reqs, req)
	}

	results := ix.fetcher.FetchAll(ctx, reqs, ix.concurrency)
	if err := ctx.Err(); err != nil {
		return nil, zerr.Wrap(err, "refresh canceled")
	}

	next := &snapshot{
		Version: snapshotVersion,
		Order:   order,
		Bundles: make(map[string]*bundleRecord, len(order)),
	}
	report := &domain.RefreshReport{}
	writes := make(map[string]map[domain.ProfileKey]domain.ProfileRecord)

	for _, res := range results {
		origin := res.Source.Origin
		old := prev.Bundles[origin]

		err := res.Err
		if err == nil {
			var rec *bundleRecord
			rec, err = ix.ingest(old, res.Bundle, report, writes)
			if err == nil {
				next.Bundles[origin] = rec
				if old != nil {
					if change, ok := versionChange(origin, old.State.Version, rec.State.Version); ok {
						report.Versions = append(report.Versions, change)
					}
				}
				continue
			}
		}

		report.Failed = append(report.Failed, &domain.BundleError{Origin: origin, Err: err})
		if old != nil {
			next.Bundles[origin] = old
		}
	}

	if err := ix.commit(next, writes); err != nil {
		return nil, err
	}

	for key := range prev.entries {
		if _, ok := next.entries[key]; !ok {
			report.Purged = append(report.Purged, key)
		}
	}
	slices.Sort(report.Purged)

	return report, nil
}

// RefreshKey re-fetches the single document that provides key and commits it.
func (ix *Index) RefreshKey(ctx context.Context, key domain.ProfileKey) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	prev := ix.snap.Load()
	entry, ok := prev.entries[key]
	if !ok {
		return notFound(key)
	}
	old, ok := prev.Bundles[entry.BundleOrigin]
	if !ok {
		return notFound(key)
	}

	src := domain.BundleSource{Origin: entry.BundleOrigin}
	doc, err := ix.fetcher.FetchDocument(ctx, src, entry.Document)
	if err != nil {
		return zerr.With(err, "key", key.String())
	}
	doc.Header = old.State.Documents[entry.Document]

	parsed, err := bundle.Parse(doc.Text, bundle.ParseOptions{Source: doc.Location, Header: doc.Header})
	if err != nil {
		return zerr.With(err, "key", key.String())
	}

	rec := old.clone()
	maps.DeleteFunc(rec.Entries, func(_ domain.ProfileKey, e domain.CacheEntry) bool {
		return e.Document == entry.Document
	})

	writes := make(map[string]map[domain.ProfileKey]domain.ProfileRecord)
	ix.addDocument(rec, src, entry.Document, parsed, writes)
	if !src.Kind().Remote() {
		if rec.State.Files == nil {
			rec.State.Files = make(map[string]int64)
		}
		rec.State.Files[entry.Document] = doc.ModTime
	}

	next := prev.clone()
	next.Bundles[entry.BundleOrigin] = rec
	return ix.commit(next, writes)
}

// ingest turns a fetched bundle into its new record. Remote bundles fail as a
// whole on a malformed document. A malformed or unreadable local file is
// reported on its own, keeps its previous entries and is forgotten so the next
// refresh reads it again.
func (ix *Index) ingest(
	old *bundleRecord,
	fetched *domain.FetchedBundle,
	report *domain.RefreshReport,
	writes map[string]map[domain.ProfileKey]domain.ProfileRecord,
) (*bundleRecord, error) {
	src := fetched.Source
	remote := src.Kind().Remote()

	rec := &bundleRecord{
		State: domain.BundleState{
			Kind:      src.Kind(),
			Documents: make(map[string]string),
		},
		Entries: make(map[domain.ProfileKey]domain.CacheEntry),
	}
	if !remote {
		rec.State.Files = maps.Clone(fetched.Files)
		if rec.State.Files == nil {
			rec.State.Files = make(map[string]int64)
		}
	}

	carry := func(document string) {
		if old == nil {
			return
		}
		for key, entry := range old.Entries {
			if entry.Document == document {
				rec.Entries[key] = entry
			}
		}
		if hint, ok := old.State.Documents[document]; ok {
			rec.State.Documents[document] = hint
		}
	}

	for _, path := range fetched.Unchanged {
		carry(path)
	}

	var (
		updated []string
		failed  []*domain.BundleError
		pending = make(map[string]map[domain.ProfileKey]domain.ProfileRecord)
	)
	for _, unreadable := range fetched.Failed {
		failed = append(failed, unreadable)
		carry(unreadable.Origin)
	}
	for _, doc := range fetched.Documents {
		parsed, err := bundle.Parse(doc.Text, bundle.ParseOptions{Source: doc.Location, Header: doc.Header})
		if err != nil {
			if remote {
				return nil, err
			}
			failed = append(failed, &domain.BundleError{Origin: doc.Location, Err: err})
			delete(rec.State.Files, doc.Location)
			carry(doc.Location)
			continue
		}
		rec.State.Documents[doc.Location] = doc.Header
		ix.addDocument(rec, src, doc.Location, parsed, pending)
		updated = append(updated, doc.Location)
	}

	if rec.State.Version == "" && old != nil && len(fetched.Unchanged) > 0 {
		rec.State.Version = old.State.Version
	}

	maps.Copy(writes, pending)
	report.Updated = append(report.Updated, updated...)
	report.Unchanged = append(report.Unchanged, fetched.Unchanged...)
	report.Failed = append(report.Failed, failed...)
	return rec, nil
}

// addDocument records the entries of one parsed document in rec and queues its
// records for writing to the document's cache file. Local files are copied
// too, so reads never see edits made after the refresh.
func (ix *Index) addDocument(
	rec *bundleRecord,
	src domain.BundleSource,
	location string,
	parsed *bundle.Document,
	writes map[string]map[domain.ProfileKey]domain.ProfileRecord,
) {
	sourcePath := cacheFileName(domain.ProfilesPath(ix.dir), location)
	writes[sourcePath] = parsed.Records

	for _, key := range parsed.Keys() {
		rec.Entries[key] = domain.CacheEntry{
			Key:               key,
			Category:          key.Category(),
			ID:                key.ID(),
			SourcePath:        sourcePath,
			BundleOrigin:      src.Origin,
			Document:          location,
			HasExplicitHeader: parsed.Explicit,
		}
	}
	if parsed.Version != "" {
		rec.State.Version = parsed.Version
	}
}

// commit writes pending cache files, persists next and publishes it. Cache
// files no longer referenced are removed afterwards.
func (ix *Index) commit(next *snapshot, writes map[string]map[domain.ProfileKey]domain.ProfileRecord) error {
	for _, path := range slices.Sorted(maps.Keys(writes)) {
		if err := writeCacheFile(path, writes[path]); err != nil {
			return err
		}
	}

	next.merge()
	if err := saveSnapshot(domain.IndexPath(ix.dir), next); err != nil {
		return err
	}
	ix.snap.Store(next)
	ix.parsed.Purge()

	removed, err := purgeOrphans(domain.ProfilesPath(ix.dir), next.referenced())
	if err != nil {
		ix.logger.Warn("failed to purge orphaned cache files: " + err.Error())
	}
	if len(removed) > 0 {
		ix.logger.Info(fmt.Sprintf("purged %d orphaned cache files", len(removed)))
	}
	return nil
}

// records returns the parsed document backing entry.
func (ix *Index) records(entry domain.CacheEntry) (map[domain.ProfileKey]domain.ProfileRecord, error) {
	if cached, err := ix.parsed.Get(entry.SourcePath); err == nil {
		if records, ok := cached.(map[domain.ProfileKey]domain.ProfileRecord); ok {
			return records, nil
		}
	}

	records, err := readCacheFile(entry.SourcePath)
	if err != nil {
		return nil, err
	}

	_ = ix.parsed.Set(entry.SourcePath, records)
	return records, nil
}

func versionChange(origin, from, to string) (domain.VersionChange, bool) {
	if from == "" || to == "" || from == to {
		return domain.VersionChange{}, false
	}

	change := domain.VersionChange{Origin: origin, From: from, To: to, Direction: domain.VersionChanged}
	fromVersion, errFrom := version.NewVersion(from)
	toVersion, errTo := version.NewVersion(to)
	if errFrom == nil && errTo == nil {
		switch {
		case toVersion.GreaterThan(fromVersion):
			change.Direction = domain.VersionUpgraded
		case toVersion.LessThan(fromVersion):
			change.Direction = domain.VersionDowngraded
		}
	}
	return change, true
}

func notFound(key domain.ProfileKey) error {
	return zerr.With(zerr.Wrap(domain.ErrProfileNotFound, "no cached profile"), "key", key.String())
}
