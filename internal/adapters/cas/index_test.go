package cas_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/slicecache/internal/adapters/cas"
	"go.trai.ch/slicecache/internal/adapters/fetch"
	"go.trai.ch/slicecache/internal/adapters/fs"
	"go.trai.ch/slicecache/internal/core/domain"
	"go.trai.ch/slicecache/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

// bundleServer serves mutable documents and counts requests per path.
type bundleServer struct {
	*httptest.Server

	mu     sync.Mutex
	docs   map[string]string
	status map[string]int
	hits   map[string]int
}

func newBundleServer(t *testing.T, docs map[string]string) *bundleServer {
	t.Helper()
	s := &bundleServer{docs: docs, status: map[string]int{}, hits: map[string]int{}}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.hits[r.URL.Path]++
		if code, ok := s.status[r.URL.Path]; ok {
			w.WriteHeader(code)
			return
		}
		body, ok := s.docs[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *bundleServer) set(path, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[path] = body
}

func (s *bundleServer) fail(path string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[path] = code
}

func (s *bundleServer) hitCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func newLogger(t *testing.T) *mocks.MockLogger {
	t.Helper()
	log := mocks.NewMockLogger(gomock.NewController(t))
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).AnyTimes()
	return log
}

func openIndex(t *testing.T, dir string, server *httptest.Server) *cas.Index {
	t.Helper()
	log := newLogger(t)
	f := fetch.New(fs.NewWalker(), log)
	if server != nil {
		f.SetClient(server.Client())
	}
	ix, err := cas.Open(dir, f, log, 2)
	require.NoError(t, err)
	return ix
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	require.NoError(t, os.WriteFile(path, []byte(content), domain.PrivateFilePerm))
}

func touch(t *testing.T, path string, offset time.Duration) {
	t.Helper()
	at := time.Now().Add(offset)
	require.NoError(t, os.Chtimes(path, at, at))
}

func cacheFiles(t *testing.T, cacheDir string) []string {
	t.Helper()
	entries, err := os.ReadDir(domain.ProfilesPath(cacheDir))
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

const manifest = `[
	{"type": "print", "label": "0.20mm", "path": "print/base.ini"},
	{"type": "filament", "label": "PLA", "path": "filament/pla.ini"}
]`

func remoteDocs() map[string]string {
	return map[string]string{
		"/bundle/manifest.json":    manifest,
		"/bundle/print/base.ini":   "[print:0.20mm]\nlayer_height = 0.2\nperimeters = 2\n",
		"/bundle/filament/pla.ini": "temperature = 215\n",
	}
}

func TestIndex_RefreshRemoteManifest(t *testing.T) {
	server := newBundleServer(t, remoteDocs())
	cacheDir := t.TempDir()
	ix := openIndex(t, cacheDir, server.Server)

	src := domain.BundleSource{Origin: server.URL + "/bundle/manifest.json"}
	report, err := ix.Refresh(t.Context(), []domain.BundleSource{src})
	require.NoError(t, err)
	require.NoError(t, report.Err())
	assert.Len(t, report.Updated, 2)

	entry, err := ix.Lookup("print:0.20mm")
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryPrint, entry.Category)
	assert.Equal(t, src.Origin, entry.BundleOrigin)
	assert.Equal(t, server.URL+"/bundle/print/base.ini", entry.Document)
	assert.True(t, entry.HasExplicitHeader)
	assert.Equal(t, domain.ProfilesPath(cacheDir), filepath.Dir(entry.SourcePath))

	pla, err := ix.Lookup("filament:PLA")
	require.NoError(t, err)
	assert.False(t, pla.HasExplicitHeader)

	record, err := ix.Get("filament:PLA")
	require.NoError(t, err)
	assert.Equal(t, domain.ProfileRecord{"temperature": "215"}, record)

	keys := make([]domain.ProfileKey, 0)
	for _, e := range ix.Entries("") {
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []domain.ProfileKey{"filament:PLA", "print:0.20mm"}, keys)
	assert.Len(t, ix.Entries(domain.CategoryPrint), 1)
	assert.Empty(t, ix.Entries(domain.CategoryPrinter))
}

func TestIndex_RefreshIsIdempotent(t *testing.T) {
	server := newBundleServer(t, remoteDocs())
	cacheDir := t.TempDir()
	ix := openIndex(t, cacheDir, server.Server)
	sources := []domain.BundleSource{{Origin: server.URL + "/bundle/manifest.json"}}

	_, err := ix.Refresh(t.Context(), sources)
	require.NoError(t, err)
	firstIndex, err := os.ReadFile(domain.IndexPath(cacheDir))
	require.NoError(t, err)
	firstFiles := cacheFiles(t, cacheDir)
	firstEntries := ix.Entries("")

	report, err := ix.Refresh(t.Context(), sources)
	require.NoError(t, err)
	assert.Empty(t, report.Purged)

	secondIndex, err := os.ReadFile(domain.IndexPath(cacheDir))
	require.NoError(t, err)
	assert.Equal(t, string(firstIndex), string(secondIndex))
	assert.Equal(t, firstFiles, cacheFiles(t, cacheDir))
	assert.Len(t, firstFiles, 2)
	assert.Equal(t, firstEntries, ix.Entries(""))
}

func TestIndex_TouchedLocalFileIsReparsedAlone(t *testing.T) {
	bundleDir := t.TempDir()
	a := filepath.Join(bundleDir, "a.ini")
	b := filepath.Join(bundleDir, "b.ini")
	writeFile(t, a, "[print:A]\nperimeters = 2\n")
	writeFile(t, b, "[print:B]\nperimeters = 3\n")

	ix := openIndex(t, t.TempDir(), nil)
	sources := []domain.BundleSource{{Origin: bundleDir}}

	report, err := ix.Refresh(t.Context(), sources)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a, b}, report.Updated)

	writeFile(t, a, "[print:A]\nperimeters = 4\n")
	touch(t, a, time.Hour)

	report, err = ix.Refresh(t.Context(), sources)
	require.NoError(t, err)
	assert.Equal(t, []string{a}, report.Updated)
	assert.Equal(t, []string{b}, report.Unchanged)

	record, err := ix.Get("print:A")
	require.NoError(t, err)
	assert.Equal(t, "4", record["perimeters"])

	entry, err := ix.Lookup("print:B")
	require.NoError(t, err)
	assert.Equal(t, b, entry.Document)
}

func TestIndex_LocalRecordsAreFixedBetweenRefreshes(t *testing.T) {
	bundleDir := t.TempDir()
	path := filepath.Join(bundleDir, "print.ini")
	writeFile(t, path, "[print:A]\nperimeters = 2\n")

	cacheDir := t.TempDir()
	ix := openIndex(t, cacheDir, nil)
	_, err := ix.Refresh(t.Context(), []domain.BundleSource{{Origin: bundleDir}})
	require.NoError(t, err)

	entry, err := ix.Lookup("print:A")
	require.NoError(t, err)
	assert.Equal(t, path, entry.Document)
	assert.Equal(t, domain.ProfilesPath(cacheDir), filepath.Dir(entry.SourcePath))

	writeFile(t, path, "[print:Z]\nperimeters = 9\n")

	for _, reader := range []*cas.Index{ix, openIndex(t, cacheDir, nil)} {
		_, err := reader.Lookup("print:A")
		require.NoError(t, err)

		record, err := reader.Get("print:A")
		require.NoError(t, err)
		assert.Equal(t, domain.ProfileRecord{"perimeters": "2"}, record)
	}

	require.NoError(t, os.Remove(path))
	record, err := openIndex(t, cacheDir, nil).Get("print:A")
	require.NoError(t, err)
	assert.Equal(t, "2", record["perimeters"])
}

func TestIndex_UnreadableLocalFileKeepsEntries(t *testing.T) {
	bundleDir := t.TempDir()
	path := filepath.Join(bundleDir, "print.ini")
	writeFile(t, path, "[print:A]\nperimeters = 2\n")
	writeFile(t, filepath.Join(bundleDir, "other.ini"), "[print:B]\nperimeters = 3\n")

	ix := openIndex(t, t.TempDir(), nil)
	sources := []domain.BundleSource{{Origin: bundleDir}}
	_, err := ix.Refresh(t.Context(), sources)
	require.NoError(t, err)

	// A directory behind a profile name cannot be read as a file.
	target := t.TempDir()
	touch(t, target, time.Hour)
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.Symlink(target, path))

	report, err := ix.Refresh(t.Context(), sources)
	require.NoError(t, err)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, path, report.Failed[0].Origin)
	require.ErrorIs(t, report.Err(), domain.ErrFetchFailed)
	assert.Empty(t, report.Purged)

	record, err := ix.Get("print:A")
	require.NoError(t, err)
	assert.Equal(t, "2", record["perimeters"])

	require.NoError(t, os.Remove(path))
	writeFile(t, path, "[print:A]\nperimeters = 5\n")

	report, err = ix.Refresh(t.Context(), sources)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, report.Updated)

	record, err = ix.Get("print:A")
	require.NoError(t, err)
	assert.Equal(t, "5", record["perimeters"])
}

func TestIndex_DeletedLocalFileDropsEntries(t *testing.T) {
	bundleDir := t.TempDir()
	a := filepath.Join(bundleDir, "a.ini")
	writeFile(t, a, "[print:A]\nperimeters = 2\n")
	writeFile(t, filepath.Join(bundleDir, "b.ini"), "[print:B]\nperimeters = 3\n")

	ix := openIndex(t, t.TempDir(), nil)
	sources := []domain.BundleSource{{Origin: bundleDir}}
	_, err := ix.Refresh(t.Context(), sources)
	require.NoError(t, err)

	require.NoError(t, os.Remove(a))
	report, err := ix.Refresh(t.Context(), sources)
	require.NoError(t, err)
	assert.Equal(t, []domain.ProfileKey{"print:A"}, report.Purged)

	_, err = ix.Lookup("print:A")
	require.ErrorIs(t, err, domain.ErrProfileNotFound)
	_, err = ix.Lookup("print:B")
	require.NoError(t, err)
}

func TestIndex_FailedBundleKeepsPreviousEntries(t *testing.T) {
	good := newBundleServer(t, map[string]string{
		"/good.ini": "[print:good]\nperimeters = 2\n",
	})
	flaky := newBundleServer(t, map[string]string{
		"/flaky.ini": "[print:flaky]\nperimeters = 5\n",
	})

	log := newLogger(t)
	f := fetch.New(fs.NewWalker(), log)
	ix, err := cas.Open(t.TempDir(), f, log, 0)
	require.NoError(t, err)

	sources := []domain.BundleSource{
		{Origin: good.URL + "/good.ini"},
		{Origin: flaky.URL + "/flaky.ini"},
	}
	_, err = ix.Refresh(t.Context(), sources)
	require.NoError(t, err)

	good.set("/good.ini", "[print:good]\nperimeters = 3\n")
	flaky.fail("/flaky.ini", http.StatusInternalServerError)

	report, err := ix.Refresh(t.Context(), sources)
	require.NoError(t, err)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, sources[1].Origin, report.Failed[0].Origin)
	require.ErrorIs(t, report.Err(), domain.ErrFetchFailed)
	assert.Empty(t, report.Purged)

	record, err := ix.Get("print:good")
	require.NoError(t, err)
	assert.Equal(t, "3", record["perimeters"])

	record, err = ix.Get("print:flaky")
	require.NoError(t, err)
	assert.Equal(t, "5", record["perimeters"])
}

func TestIndex_UnconfiguredBundleIsPurged(t *testing.T) {
	server := newBundleServer(t, map[string]string{
		"/a.ini": "[print:a]\nperimeters = 2\n",
		"/b.ini": "[print:b]\nperimeters = 2\n",
	})
	cacheDir := t.TempDir()
	ix := openIndex(t, cacheDir, server.Server)

	a := domain.BundleSource{Origin: server.URL + "/a.ini"}
	b := domain.BundleSource{Origin: server.URL + "/b.ini"}
	_, err := ix.Refresh(t.Context(), []domain.BundleSource{a, b})
	require.NoError(t, err)
	assert.Len(t, cacheFiles(t, cacheDir), 2)

	report, err := ix.Refresh(t.Context(), []domain.BundleSource{a})
	require.NoError(t, err)
	assert.Equal(t, []domain.ProfileKey{"print:b"}, report.Purged)
	assert.Len(t, cacheFiles(t, cacheDir), 1)

	_, err = ix.Get("print:b")
	require.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestIndex_OrphanCacheFilesAreRemoved(t *testing.T) {
	server := newBundleServer(t, remoteDocs())
	cacheDir := t.TempDir()
	stray := filepath.Join(domain.ProfilesPath(cacheDir), "stray.json")
	writeFile(t, stray, "{}")

	ix := openIndex(t, cacheDir, server.Server)
	_, err := ix.Refresh(t.Context(), []domain.BundleSource{{Origin: server.URL + "/bundle/manifest.json"}})
	require.NoError(t, err)

	assert.NoFileExists(t, stray)
	assert.Len(t, cacheFiles(t, cacheDir), 2)
}

func TestIndex_ReloadsWithoutFetching(t *testing.T) {
	server := newBundleServer(t, remoteDocs())
	cacheDir := t.TempDir()
	ix := openIndex(t, cacheDir, server.Server)
	_, err := ix.Refresh(t.Context(), []domain.BundleSource{{Origin: server.URL + "/bundle/manifest.json"}})
	require.NoError(t, err)
	server.Close()

	reopened := openIndex(t, cacheDir, nil)
	assert.Equal(t, ix.Entries(""), reopened.Entries(""))

	record, err := reopened.Get("print:0.20mm")
	require.NoError(t, err)
	assert.Equal(t, domain.ProfileRecord{"layer_height": "0.2", "perimeters": "2"}, record)
}

func TestIndex_RefreshKeyFetchesOneDocument(t *testing.T) {
	server := newBundleServer(t, remoteDocs())
	ix := openIndex(t, t.TempDir(), server.Server)
	_, err := ix.Refresh(t.Context(), []domain.BundleSource{{Origin: server.URL + "/bundle/manifest.json"}})
	require.NoError(t, err)

	server.set("/bundle/print/base.ini", "[print:0.20mm]\nlayer_height = 0.25\n[print:0.20mm_fast]\ninherits = 0.20mm\n")
	require.NoError(t, ix.RefreshKey(t.Context(), "print:0.20mm"))

	assert.Equal(t, 1, server.hitCount("/bundle/manifest.json"))
	assert.Equal(t, 1, server.hitCount("/bundle/filament/pla.ini"))
	assert.Equal(t, 2, server.hitCount("/bundle/print/base.ini"))

	record, err := ix.Get("print:0.20mm")
	require.NoError(t, err)
	assert.Equal(t, domain.ProfileRecord{"layer_height": "0.25"}, record)

	_, err = ix.Lookup("print:0.20mm_fast")
	require.NoError(t, err)

	require.ErrorIs(t, ix.RefreshKey(t.Context(), "print:missing"), domain.ErrProfileNotFound)
}

func TestIndex_RefreshKeyLocalFile(t *testing.T) {
	bundleDir := t.TempDir()
	path := filepath.Join(bundleDir, "print.ini")
	writeFile(t, path, "[print:A]\nperimeters = 2\n")

	ix := openIndex(t, t.TempDir(), nil)
	_, err := ix.Refresh(t.Context(), []domain.BundleSource{{Origin: bundleDir}})
	require.NoError(t, err)

	writeFile(t, path, "[print:A]\nperimeters = 7\n")
	require.NoError(t, ix.RefreshKey(t.Context(), "print:A"))

	record, err := ix.Get("print:A")
	require.NoError(t, err)
	assert.Equal(t, "7", record["perimeters"])
}

func TestIndex_LaterSourceWins(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeFile(t, filepath.Join(first, "p.ini"), "[print:shared]\nperimeters = 1\n")
	shadow := filepath.Join(second, "p.ini")
	writeFile(t, shadow, "[print:shared]\nperimeters = 2\n")

	ix := openIndex(t, t.TempDir(), nil)
	sources := []domain.BundleSource{{Origin: first}, {Origin: second}}
	_, err := ix.Refresh(t.Context(), sources)
	require.NoError(t, err)

	record, err := ix.Get("print:shared")
	require.NoError(t, err)
	assert.Equal(t, "2", record["perimeters"])

	require.NoError(t, os.Remove(shadow))
	report, err := ix.Refresh(t.Context(), sources)
	require.NoError(t, err)
	assert.Empty(t, report.Purged)

	record, err = ix.Get("print:shared")
	require.NoError(t, err)
	assert.Equal(t, "1", record["perimeters"])
}

func TestIndex_MalformedLocalFileIsRetried(t *testing.T) {
	bundleDir := t.TempDir()
	path := filepath.Join(bundleDir, "broken.ini")
	writeFile(t, path, "[print:A]\nperimeters = 2\n")

	ix := openIndex(t, t.TempDir(), nil)
	sources := []domain.BundleSource{{Origin: bundleDir}}
	_, err := ix.Refresh(t.Context(), sources)
	require.NoError(t, err)

	writeFile(t, path, "[print:A]\nthis is not a key value line\n")
	touch(t, path, time.Hour)

	report, err := ix.Refresh(t.Context(), sources)
	require.NoError(t, err)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, path, report.Failed[0].Origin)
	require.ErrorIs(t, report.Err(), domain.ErrMalformedProfile)

	_, err = ix.Lookup("print:A")
	require.NoError(t, err)

	writeFile(t, path, "[print:A]\nperimeters = 9\n")
	touch(t, path, time.Hour)

	report, err = ix.Refresh(t.Context(), sources)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, report.Updated)

	record, err := ix.Get("print:A")
	require.NoError(t, err)
	assert.Equal(t, "9", record["perimeters"])
}

func TestIndex_ReportsVersionChanges(t *testing.T) {
	server := newBundleServer(t, map[string]string{
		"/vendor.ini": "[vendor]\nconfig_version = 1.4.0\n[print:a]\nperimeters = 2\n",
	})
	ix := openIndex(t, t.TempDir(), server.Server)
	sources := []domain.BundleSource{{Origin: server.URL + "/vendor.ini"}}

	report, err := ix.Refresh(t.Context(), sources)
	require.NoError(t, err)
	assert.Empty(t, report.Versions)

	server.set("/vendor.ini", "[vendor]\nconfig_version = 1.10.0\n[print:a]\nperimeters = 2\n")
	report, err = ix.Refresh(t.Context(), sources)
	require.NoError(t, err)
	require.Len(t, report.Versions, 1)
	assert.Equal(t, domain.VersionUpgraded, report.Versions[0].Direction)
	assert.Equal(t, "1.4.0", report.Versions[0].From)
	assert.Equal(t, "1.10.0", report.Versions[0].To)

	server.set("/vendor.ini", "[vendor]\nconfig_version = 1.2.0\n[print:a]\nperimeters = 2\n")
	report, err = ix.Refresh(t.Context(), sources)
	require.NoError(t, err)
	require.Len(t, report.Versions, 1)
	assert.Equal(t, domain.VersionDowngraded, report.Versions[0].Direction)
}

func TestIndex_RefreshWithoutSources(t *testing.T) {
	ix := openIndex(t, t.TempDir(), nil)
	_, err := ix.Refresh(t.Context(), nil)
	require.ErrorIs(t, err, domain.ErrNoSources)
}

func TestOpen_CorruptIndex(t *testing.T) {
	cacheDir := t.TempDir()
	writeFile(t, domain.IndexPath(cacheDir), "{not json")

	log := newLogger(t)
	_, err := cas.Open(cacheDir, fetch.New(fs.NewWalker(), log), log, 1)
	require.ErrorIs(t, err, domain.ErrIndexReadFailed)
}
