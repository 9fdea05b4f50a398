package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
	"go.trai.ch/slicecache/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// maxBodySize caps a single downloaded document.
const maxBodySize = 64 << 20

// ManifestEntry is one profile listed by a bundle manifest.
type ManifestEntry struct {
	Type  string
	Label string
	Path  string
}

// Header returns the key hint for the entry's document.
func (e ManifestEntry) Header() string {
	if e.Type == "" || e.Label == "" {
		return ""
	}
	return e.Type + ":" + e.Label
}

// ParseManifest decodes a manifest: a JSON array of {type, label, path}
// objects. Comments and trailing commas are tolerated.
func ParseManifest(text []byte) ([]ManifestEntry, error) {
	data := jsonc.ToJSON(text)
	if !gjson.ValidBytes(data) {
		return nil, zerr.Wrap(domain.ErrMalformedManifest, "manifest is not valid JSON")
	}

	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, zerr.Wrap(domain.ErrMalformedManifest, "manifest is not an array")
	}

	var (
		entries []ManifestEntry
		bad     error
	)
	root.ForEach(func(idx, value gjson.Result) bool {
		p := value.Get("path")
		if !value.IsObject() || p.Type != gjson.String || strings.TrimSpace(p.String()) == "" {
			bad = zerr.With(zerr.Wrap(domain.ErrMalformedManifest, "entry has no path"), "index", idx.Int())
			return false
		}
		entries = append(entries, ManifestEntry{
			Type:  strings.TrimSpace(value.Get("type").String()),
			Label: strings.TrimSpace(value.Get("label").String()),
			Path:  strings.TrimSpace(p.String()),
		})
		return true
	})
	if bad != nil {
		return nil, bad
	}
	return entries, nil
}

// ResolveEntry makes an entry path absolute relative to the manifest location.
func ResolveEntry(manifest, entry string) string {
	if isURL(entry) {
		return entry
	}
	if !isURL(manifest) {
		if filepath.IsAbs(entry) {
			return filepath.Clean(entry)
		}
		return filepath.Join(filepath.Dir(manifest), entry)
	}

	u, err := url.Parse(manifest)
	if err != nil {
		return strings.TrimRight(manifest, "/") + "/" + strings.TrimLeft(entry, "/")
	}
	u.Path = path.Join(path.Dir(u.Path), strings.TrimLeft(entry, "/"))
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

func isURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func (f *Fetcher) fetchManifest(ctx context.Context, src domain.BundleSource) (*domain.FetchedBundle, error) {
	remote := src.Kind().Remote()

	var (
		text []byte
		err  error
	)
	if remote {
		text, err = f.get(ctx, src.Origin)
	} else {
		text, err = os.ReadFile(src.Origin) //nolint:gosec // Path comes from the settings file
		if err != nil {
			err = fetchFailed(err, src.Origin)
		}
	}
	if err != nil {
		return nil, err
	}

	entries, err := ParseManifest(text)
	if err != nil {
		return nil, zerr.With(err, "manifest", src.Origin)
	}

	docs, err := f.fetchEntries(ctx, src, entries)
	if err != nil {
		return nil, err
	}

	bundle := &domain.FetchedBundle{Source: src, Documents: docs}
	if !remote {
		bundle.Files = make(map[string]int64, len(docs))
		for _, doc := range docs {
			bundle.Files[doc.Location] = doc.ModTime
		}
	}
	return bundle, nil
}

// fetchEntries fetches the documents listed by a manifest concurrently and
// returns them in manifest order. The first failure cancels the rest.
func (f *Fetcher) fetchEntries(
	ctx context.Context,
	src domain.BundleSource,
	entries []ManifestEntry,
) ([]domain.RawDocument, error) {
	docs := make([]domain.RawDocument, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.entryLimit())

	for i, entry := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fetchFailed(err, src.Origin)
			}
			doc, err := f.FetchDocument(gctx, src, ResolveEntry(src.Origin, entry.Path))
			if err != nil {
				return zerr.With(err, "manifest", src.Origin)
			}
			doc.Header = entry.Header()
			docs[i] = doc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (f *Fetcher) fetchRemoteINI(ctx context.Context, src domain.BundleSource) (*domain.FetchedBundle, error) {
	text, err := f.get(ctx, src.Origin)
	if err != nil {
		return nil, err
	}
	return &domain.FetchedBundle{
		Source: src,
		Documents: []domain.RawDocument{{
			Location: src.Origin,
			Header:   unknownHeader,
			Text:     text,
		}},
	}, nil
}

func readAll(resp *http.Response) ([]byte, error) {
	return io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
}
