// Package fetch reads raw profile documents from local and remote bundles.
package fetch

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"go.trai.ch/slicecache/internal/adapters/fs"
	"go.trai.ch/slicecache/internal/core/domain"
	"go.trai.ch/slicecache/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.BundleFetcher = (*Fetcher)(nil)

// DefaultTimeout bounds a single HTTP request when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// unknownHeader is the hint for remote documents that are not listed in a manifest.
const unknownHeader = "unknown:unknown"

// Fetcher implements ports.BundleFetcher over HTTP and the local filesystem.
type Fetcher struct {
	mu     sync.RWMutex
	client *http.Client
	walker *fs.Walker
	logger ports.Logger
	// limit bounds the documents of one manifest fetched at once.
	limit int
}

// New creates a Fetcher using the given walker for local directories.
func New(walker *fs.Walker, logger ports.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: DefaultTimeout},
		walker: walker,
		logger: logger,
	}
}

// SetTimeout replaces the HTTP client timeout. Zero restores the default.
func (f *Fetcher) SetTimeout(timeout time.Duration) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.client = &http.Client{Timeout: timeout}
}

// SetClient replaces the HTTP client. Used for testing.
func (f *Fetcher) SetClient(client *http.Client) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.client = client
}

// SetConcurrency bounds the manifest entries fetched at once. Zero or less
// uses the number of CPUs.
func (f *Fetcher) SetConcurrency(limit int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limit = limit
}

func (f *Fetcher) entryLimit() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.limit <= 0 {
		return runtime.NumCPU()
	}
	return f.limit
}

func (f *Fetcher) httpClient() *http.Client {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.client
}

// Fetch reads every document of src that needs parsing.
func (f *Fetcher) Fetch(ctx context.Context, src domain.BundleSource, prev domain.BundleState) (*domain.FetchedBundle, error) {
	var (
		bundle *domain.FetchedBundle
		err    error
	)

	switch src.Kind() {
	case domain.SourceRemoteINI:
		bundle, err = f.fetchRemoteINI(ctx, src)
	case domain.SourceRemoteManifest, domain.SourceLocalManifest:
		bundle, err = f.fetchManifest(ctx, src)
	case domain.SourceLocalDir:
		bundle, err = f.fetchLocalDir(src, prev)
	}
	if err != nil {
		return nil, err
	}
	return bundle, nil
}

// FetchDocument re-reads one document. For remote bundles location is a URL,
// for local bundles a file path.
func (f *Fetcher) FetchDocument(ctx context.Context, src domain.BundleSource, location string) (domain.RawDocument, error) {
	if src.Kind().Remote() {
		text, err := f.get(ctx, location)
		if err != nil {
			return domain.RawDocument{}, err
		}
		return domain.RawDocument{Location: location, Text: text}, nil
	}
	return readLocal(location)
}

// get downloads url and fails on any status other than 200.
func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fetchFailed(err, url)
	}

	resp, err := f.httpClient().Do(req)
	if err != nil {
		return nil, fetchFailed(err, url)
	}
	defer resp.Body.Close() //nolint:errcheck // Body is fully read below

	if resp.StatusCode != http.StatusOK {
		err := zerr.With(zerr.Wrap(domain.ErrFetchFailed, "unexpected status"), "url", url)
		return nil, zerr.With(err, "status_code", resp.StatusCode)
	}

	text, err := readAll(resp)
	if err != nil {
		return nil, fetchFailed(err, url)
	}

	f.logger.Info("fetched " + url + " (" + humanize.Bytes(uint64(len(text))) + ")")
	return text, nil
}

// readLocal reads one local profile file together with its modification time.
func readLocal(path string) (domain.RawDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.RawDocument{}, fetchFailed(err, path)
	}
	text, err := os.ReadFile(path) //nolint:gosec // Path comes from the configured bundle
	if err != nil {
		return domain.RawDocument{}, fetchFailed(err, path)
	}
	return domain.RawDocument{
		Location: filepath.Clean(path),
		Text:     text,
		ModTime:  info.ModTime().UnixNano(),
	}, nil
}

// fetchFailed wraps a transport or filesystem error so that it matches both
// domain.ErrFetchFailed and the underlying cause.
func fetchFailed(cause error, location string) error {
	return zerr.With(&Error{Location: location, Err: cause}, "location", location)
}

// Error is a fetch failure of one location.
type Error struct {
	Location string
	Err      error
}

// Error implements error.
func (e *Error) Error() string {
	return domain.ErrFetchFailed.Error() + ": " + e.Err.Error()
}

// Unwrap exposes both domain.ErrFetchFailed and the cause.
func (e *Error) Unwrap() []error {
	return []error{domain.ErrFetchFailed, e.Err}
}
