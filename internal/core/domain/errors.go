package domain

import "go.trai.ch/zerr"

var (
	// ErrFetchFailed is returned when a bundle or one of its documents cannot be downloaded or read.
	ErrFetchFailed = zerr.New("failed to fetch bundle")

	// ErrMalformedProfile is returned when profile text cannot be parsed.
	ErrMalformedProfile = zerr.New("malformed profile")

	// ErrMalformedManifest is returned when a bundle manifest is not a JSON array of entries.
	ErrMalformedManifest = zerr.New("malformed manifest")

	// ErrProfileNotFound is returned when a profile key is absent from the cache index.
	ErrProfileNotFound = zerr.New("profile not found")

	// ErrCyclicInheritance is returned when a profile's inherits chain refers back to itself.
	ErrCyclicInheritance = zerr.New("cyclic inheritance")

	// ErrInvalidProfileKey is returned when a profile key is not of the form category:id.
	ErrInvalidProfileKey = zerr.New("invalid profile key, expected category:id")

	// ErrUnknownCategory is returned when a profile key names a category that cannot be resolved.
	ErrUnknownCategory = zerr.New("unknown profile category, expected printer, filament or print")

	// ErrIndexReadFailed is returned when the cache index cannot be loaded from disk.
	ErrIndexReadFailed = zerr.New("failed to read cache index")

	// ErrIndexWriteFailed is returned when the cache index cannot be persisted.
	ErrIndexWriteFailed = zerr.New("failed to write cache index")

	// ErrCacheFileReadFailed is returned when a profile cache file cannot be read.
	ErrCacheFileReadFailed = zerr.New("failed to read profile cache file")

	// ErrCacheFileWriteFailed is returned when a profile cache file cannot be written.
	ErrCacheFileWriteFailed = zerr.New("failed to write profile cache file")

	// ErrHashFailed is returned when a file's content hash cannot be computed.
	ErrHashFailed = zerr.New("failed to hash file")

	// ErrFingerprintWriteFailed is returned when a build fingerprint cannot be persisted.
	ErrFingerprintWriteFailed = zerr.New("failed to write build fingerprint")

	// ErrArtifactCopyFailed is returned when a cached artifact cannot be copied to its destination.
	ErrArtifactCopyFailed = zerr.New("failed to copy artifact")

	// ErrSlicingFailed is returned when the external slicer reports a failure.
	ErrSlicingFailed = zerr.New("slicing failed")

	// ErrSlicerCommandEmpty is returned when no slicer command is configured.
	ErrSlicerCommandEmpty = zerr.New("slicer command is empty")

	// ErrConfigNotFound is returned when the settings file does not exist.
	ErrConfigNotFound = zerr.New("settings file not found")

	// ErrConfigReadFailed is returned when the settings file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read settings file")

	// ErrConfigParseFailed is returned when the settings file is not valid YAML.
	ErrConfigParseFailed = zerr.New("failed to parse settings file")

	// ErrInvalidConfig is returned when a settings value is out of range.
	ErrInvalidConfig = zerr.New("invalid settings")

	// ErrNoSources is returned when a refresh is requested without any configured bundle source.
	ErrNoSources = zerr.New("no bundle sources configured")

	// ErrInvalidInjection is returned when an injection flag cannot be parsed.
	ErrInvalidInjection = zerr.New("invalid injection, expected kind:trigger:value[:command]")

	// ErrInvalidOverride is returned when an override flag is not of the form key=value.
	ErrInvalidOverride = zerr.New("invalid override, expected key=value")

	// ErrNoProfilesSelected is returned when a resolve or slice names no profile.
	ErrNoProfilesSelected = zerr.New("no profiles selected")

	// ErrNothingToWatch is returned when watching is requested without a local bundle directory.
	ErrNothingToWatch = zerr.New("no local bundle directory to watch")
)
