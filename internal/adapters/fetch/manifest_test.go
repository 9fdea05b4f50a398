package fetch_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/slicecache/internal/adapters/fetch"
	"go.trai.ch/slicecache/internal/core/domain"
)

func TestParseManifest(t *testing.T) {
	entries, err := fetch.ParseManifest([]byte(`[
		{"type": "print", "label": "Fine", "path": "print/fine.ini"},
		{"path": "misc.ini"}
	]`))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "print:Fine", entries[0].Header())
	assert.Empty(t, entries[1].Header())
}

func TestParseManifest_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "not json", input: `[{`},
		{name: "object", input: `{"path": "a.ini"}`},
		{name: "entry without path", input: `[{"type": "print"}]`},
		{name: "entry not object", input: `["a.ini"]`},
		{name: "empty path", input: `[{"path": " "}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fetch.ParseManifest([]byte(tt.input))
			require.ErrorIs(t, err, domain.ErrMalformedManifest)
		})
	}
}

func TestResolveEntry(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		entry    string
		want     string
	}{
		{
			name:     "remote relative",
			manifest: "https://example.com/profiles/manifest.json",
			entry:    "print/a.ini",
			want:     "https://example.com/profiles/print/a.ini",
		},
		{
			name:     "remote leading slash stays under manifest dir",
			manifest: "https://example.com/profiles/manifest.json",
			entry:    "/print/a.ini",
			want:     "https://example.com/profiles/print/a.ini",
		},
		{
			name:     "remote query dropped",
			manifest: "https://example.com/p/manifest.json?ref=main",
			entry:    "a.ini",
			want:     "https://example.com/p/a.ini",
		},
		{
			name:     "absolute url entry",
			manifest: "https://example.com/manifest.json",
			entry:    "https://cdn.example.com/a.ini",
			want:     "https://cdn.example.com/a.ini",
		},
		{
			name:     "local relative",
			manifest: filepath.Join("/data", "bundle", "manifest.json"),
			entry:    "print/a.ini",
			want:     filepath.Join("/data", "bundle", "print", "a.ini"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fetch.ResolveEntry(tt.manifest, tt.entry))
		})
	}
}
