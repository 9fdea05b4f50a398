package fs_test

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/slicecache/internal/adapters/fs"
	"go.trai.ch/slicecache/internal/core/domain"
)

func TestWalker_WalkProfiles(t *testing.T) {
	root := t.TempDir()
	files := []string{
		"printer.ini",
		"nested/filament.INI",
		"nested/deeper/print.ini",
		"notes.txt",
		".git/config.ini",
		"nested/.cache/stale.ini",
	}
	for _, f := range files {
		path := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
		require.NoError(t, os.WriteFile(path, []byte("k = v\n"), domain.PrivateFilePerm))
	}

	w := fs.NewWalker()
	got := slices.Sorted(w.WalkProfiles(root))

	want := []string{
		filepath.Join(root, "nested/deeper/print.ini"),
		filepath.Join(root, "nested/filament.INI"),
		filepath.Join(root, "printer.ini"),
	}
	assert.Equal(t, want, got)
}

func TestWalker_WalkProfiles_StopsEarly(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.ini", "b.ini", "c.ini"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), nil, domain.PrivateFilePerm))
	}

	w := fs.NewWalker()
	count := 0
	for range w.WalkProfiles(root) {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestWalker_WalkProfiles_MissingRoot(t *testing.T) {
	w := fs.NewWalker()
	got := slices.Collect(w.WalkProfiles(filepath.Join(t.TempDir(), "missing")))
	assert.Empty(t, got)
}
