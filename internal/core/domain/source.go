package domain

import (
	"net/url"
	"strings"
)

// SourceKind classifies how a bundle origin is fetched.
type SourceKind uint8

const (
	// SourceLocalDir is a local directory scanned recursively for profile files.
	SourceLocalDir SourceKind = iota
	// SourceLocalManifest is a local JSON manifest whose entries are filesystem paths.
	SourceLocalManifest
	// SourceRemoteINI is a single remote profile file.
	SourceRemoteINI
	// SourceRemoteManifest is a remote JSON manifest whose entries are URL paths.
	SourceRemoteManifest
)

// String implements fmt.Stringer.
func (k SourceKind) String() string {
	switch k {
	case SourceLocalDir:
		return "local-dir"
	case SourceLocalManifest:
		return "local-manifest"
	case SourceRemoteINI:
		return "remote-ini"
	case SourceRemoteManifest:
		return "remote-manifest"
	default:
		return "unknown"
	}
}

// Remote reports whether documents of this kind are fetched over HTTP.
func (k SourceKind) Remote() bool {
	return k == SourceRemoteINI || k == SourceRemoteManifest
}

// BundleSource is a configured origin of profiles, identified by its URL or path.
type BundleSource struct {
	Origin string
}

// Kind derives the source kind from the origin.
func (s BundleSource) Kind() SourceKind {
	manifest := strings.HasSuffix(strings.ToLower(s.path()), ManifestExt)
	if isRemote(s.Origin) {
		if manifest {
			return SourceRemoteManifest
		}
		return SourceRemoteINI
	}
	if manifest {
		return SourceLocalManifest
	}
	return SourceLocalDir
}

// String implements fmt.Stringer.
func (s BundleSource) String() string {
	return s.Origin
}

func (s BundleSource) path() string {
	if !isRemote(s.Origin) {
		return s.Origin
	}
	u, err := url.Parse(s.Origin)
	if err != nil {
		return s.Origin
	}
	return u.Path
}

func isRemote(origin string) bool {
	lower := strings.ToLower(origin)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// BundleState is what the index remembers about a bundle between refreshes.
type BundleState struct {
	Kind SourceKind `json:"kind"`
	// Documents maps each fetched document to the header hint it was parsed with.
	Documents map[string]string `json:"documents,omitempty"`
	// Files maps each local profile file to its modification time in UnixNano.
	Files map[string]int64 `json:"files,omitempty"`
	// Version is the vendor config_version announced by the bundle, if any.
	Version string `json:"version,omitempty"`
}

// RawDocument is the unparsed text of one document in a bundle.
type RawDocument struct {
	// Location is the URL or path the text was read from.
	Location string
	// Header is the key to assume when the text carries no section header.
	Header string
	Text   []byte
	// ModTime is the file modification time in UnixNano for local documents.
	ModTime int64
}

// FetchedBundle is the result of fetching one bundle source.
type FetchedBundle struct {
	Source BundleSource
	// Documents holds every document that has to be parsed.
	Documents []RawDocument
	// Unchanged lists local files whose modification time did not increase.
	Unchanged []string
	// Files maps every local file seen by this scan to its modification time.
	Files map[string]int64
	// Failed lists local files that were found but could not be read.
	Failed []*BundleError
}

// FetchRequest asks for one bundle, given what was known about it after the last refresh.
type FetchRequest struct {
	Source BundleSource
	Prev   BundleState
}

// FetchResult carries either a fetched bundle or the error that prevented it.
type FetchResult struct {
	Source BundleSource
	Bundle *FetchedBundle
	Err    error
}
