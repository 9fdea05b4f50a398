// Package memo decides whether a previously sliced artifact can be reused.
package memo

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/slicecache/internal/core/domain"
	"go.trai.ch/slicecache/internal/core/ports"
	"go.trai.ch/zerr"
)

// partialSuffix marks an artifact that has not been accepted yet.
const partialSuffix = ".partial"

// Memoizer keeps one fingerprint beside each produced artifact.
type Memoizer struct {
	hasher ports.Hasher
}

// New creates a Memoizer that checksums inputs with hasher.
func New(hasher ports.Hasher) *Memoizer {
	return &Memoizer{hasher: hasher}
}

// Fingerprint hashes the contents of the geometry file and the written config file.
func (m *Memoizer) Fingerprint(geometryPath, configPath string) (domain.BuildFingerprint, error) {
	geometry, err := m.hasher.HashFile(geometryPath)
	if err != nil {
		return domain.BuildFingerprint{}, zerr.Wrap(err, "failed to fingerprint geometry")
	}
	config, err := m.hasher.HashFile(configPath)
	if err != nil {
		return domain.BuildFingerprint{}, zerr.Wrap(err, "failed to fingerprint config")
	}
	return domain.BuildFingerprint{GeometryChecksum: geometry, ConfigChecksum: config}, nil
}

// FingerprintPath returns the fingerprint file stored beside outputPath.
func FingerprintPath(outputPath string) string {
	return strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + domain.FingerprintExt
}

// PartialPath returns where the slicer writes before the result replaces outputPath.
func PartialPath(outputPath string) string {
	ext := filepath.Ext(outputPath)
	return strings.TrimSuffix(outputPath, ext) + partialSuffix + ext
}

// ShouldSkip reports whether the artifact at outputPath was produced from the
// same inputs as fp. A missing artifact, a missing fingerprint or an
// unreadable fingerprint is a miss.
func (m *Memoizer) ShouldSkip(fp domain.BuildFingerprint, outputPath string) (bool, error) {
	if _, err := os.Stat(outputPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, zerr.With(zerr.Wrap(err, "failed to stat artifact"), "path", outputPath)
	}

	data, err := os.ReadFile(FingerprintPath(outputPath)) //nolint:gosec // Derived from artifact path
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, zerr.With(zerr.Wrap(err, "failed to read fingerprint"), "path", outputPath)
	}

	var stored domain.BuildFingerprint
	if err := json.Unmarshal(data, &stored); err != nil {
		return false, nil //nolint:nilerr // A corrupt fingerprint is a cache miss.
	}

	return stored.Matches(fp), nil
}

// Record writes fp beside outputPath. The file is written to a temporary name
// and renamed so a partial write is never read back as a valid fingerprint.
func (m *Memoizer) Record(fp domain.BuildFingerprint, outputPath string) error {
	data, err := json.MarshalIndent(fp, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrFingerprintWriteFailed.Error())
	}
	data = append(data, '\n')

	path := FingerprintPath(outputPath)
	if err := atomicWriteFile(path, data); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFingerprintWriteFailed.Error()), "path", path)
	}
	return nil
}

// Commit moves the artifact written to partialPath over outputPath and records
// fp for it. The previous fingerprint is removed first, so a failure part way
// leaves a miss rather than a fingerprint describing other bytes.
func (m *Memoizer) Commit(fp domain.BuildFingerprint, partialPath, outputPath string) error {
	fpPath := FingerprintPath(outputPath)
	if err := os.Remove(fpPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zerr.With(zerr.Wrap(err, domain.ErrFingerprintWriteFailed.Error()), "path", fpPath)
	}
	if err := os.Rename(partialPath, outputPath); err != nil {
		err = zerr.With(zerr.Wrap(err, domain.ErrArtifactCopyFailed.Error()), "from", partialPath)
		return zerr.With(err, "to", outputPath)
	}
	return m.Record(fp, outputPath)
}

// Reuse copies the artifact at outputPath to destination.
func (m *Memoizer) Reuse(outputPath, destination string) error {
	if destination == "" || filepath.Clean(destination) == filepath.Clean(outputPath) {
		return nil
	}

	if err := copyFile(outputPath, destination); err != nil {
		err = zerr.With(zerr.Wrap(err, domain.ErrArtifactCopyFailed.Error()), "from", outputPath)
		return zerr.With(err, "to", destination)
	}
	return nil
}

func copyFile(from, to string) error {
	src, err := os.Open(from) //nolint:gosec // Artifact path is produced by the memoizer
	if err != nil {
		return err
	}
	defer src.Close() //nolint:errcheck // Read-only file

	dir := filepath.Dir(to)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".artifact-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := io.Copy(tmp, src); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, domain.FilePerm); err != nil {
		return err
	}
	return os.Rename(tmpPath, to)
}

func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".fingerprint-*.json")
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
	if err := os.Chmod(tmpPath, domain.FilePerm); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
