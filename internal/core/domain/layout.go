package domain

import "path/filepath"

const (
	// CacheDirName is the default name of the profile cache directory.
	CacheDirName = ".slicecache"

	// ProfilesDirName is the name of the directory holding one cache file per fetched document.
	ProfilesDirName = "profiles"

	// IndexFileName is the name of the persisted cache index.
	IndexFileName = "cache.json"

	// SettingsFileName is the name of the settings file.
	SettingsFileName = "slicecache.yaml"

	// WorkDirName is the name of the directory under os.TempDir used for configs and artifacts.
	WorkDirName = "slicecache"

	// ProfileExt is the extension of profile files scanned in local bundles.
	ProfileExt = ".ini"

	// ManifestExt marks a bundle origin as a manifest.
	ManifestExt = ".json"

	// FingerprintExt is the extension of fingerprint files stored beside artifacts.
	FingerprintExt = ".json"

	// DefaultSlicerCommand is the slicer invocation used when none is configured.
	DefaultSlicerCommand = "flatpak run com.prusa3d.PrusaSlicer"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// IndexPath returns the path of the cache index inside cacheDir.
func IndexPath(cacheDir string) string {
	return filepath.Join(cacheDir, IndexFileName)
}

// ProfilesPath returns the directory holding document cache files inside cacheDir.
func ProfilesPath(cacheDir string) string {
	return filepath.Join(cacheDir, ProfilesDirName)
}
