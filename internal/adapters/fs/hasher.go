package fs

import (
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/slicecache/internal/core/domain"
	"go.trai.ch/slicecache/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher computes content checksums with XXHash.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// ComputeFileHash computes the XXHash of a file's content.
func (h *Hasher) ComputeFileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}

	return hasher.Sum64(), nil
}

// HashFile returns the hex checksum of the file at path. Only the content
// contributes; two files with different names and equal bytes hash equally.
func (h *Hasher) HashFile(path string) (string, error) {
	sum, err := h.ComputeFileHash(path)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrHashFailed.Error()), "path", path)
	}
	return format(sum), nil
}

// HashBytes returns the hex checksum of data.
func (h *Hasher) HashBytes(data []byte) string {
	return format(xxhash.Sum64(data))
}

func format(sum uint64) string {
	return fmt.Sprintf("%016x", sum)
}
