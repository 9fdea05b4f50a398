// Package config provides the settings loader for slicecache.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"go.trai.ch/slicecache/internal/core/domain"
	"go.trai.ch/slicecache/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.SettingsLoader = (*Loader)(nil)

// DefaultHTTPTimeout is used when the settings file sets no http_timeout.
const DefaultHTTPTimeout = 30 * time.Second

// Loader implements ports.SettingsLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads the settings file at path, or the nearest slicecache.yaml at or
// above cwd when path is empty. Relative paths in the file are resolved
// against the file's directory.
func (l *Loader) Load(path, cwd string) (*domain.Settings, error) {
	configPath, err := l.findConfiguration(path, cwd)
	if err != nil {
		return nil, err
	}

	var file Settingsfile
	if err := readAndUnmarshalYAML(configPath, &file); err != nil {
		return nil, err
	}

	if file.Version != "" && file.Version != SchemaVersion {
		l.Logger.Warn("unknown settings version " + file.Version + " in " + configPath)
	}

	return buildSettings(configPath, &file)
}

func (l *Loader) findConfiguration(path, cwd string) (string, error) {
	if path != "" {
		if !filepath.IsAbs(path) {
			path = filepath.Join(cwd, path)
		}
		path = filepath.Clean(path)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "no such file"), "path", path)
			}
			return "", zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "path", path)
		}
		return path, nil
	}

	currentDir := filepath.Clean(cwd)
	for {
		candidate := filepath.Join(currentDir, domain.SettingsFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "no "+domain.SettingsFileName+" found"), "cwd", cwd)
}

func buildSettings(configPath string, file *Settingsfile) (*domain.Settings, error) {
	configDir := filepath.Dir(configPath)

	settings := &domain.Settings{
		Path:        configPath,
		CacheDir:    resolvePath(configDir, file.CacheDir, filepath.Join(configDir, domain.CacheDirName)),
		WorkDir:     resolvePath(configDir, file.WorkDir, filepath.Join(os.TempDir(), domain.WorkDirName)),
		Slicer:      strings.TrimSpace(file.Slicer),
		Concurrency: file.Concurrency,
		HTTPTimeout: DefaultHTTPTimeout,
	}

	if settings.Slicer == "" {
		settings.Slicer = domain.DefaultSlicerCommand
	}

	switch {
	case file.Concurrency < 0:
		return nil, invalid(configPath, "concurrency", "must not be negative")
	case file.Concurrency == 0:
		settings.Concurrency = runtime.NumCPU()
	}

	if raw := strings.TrimSpace(file.HTTPTimeout); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, invalid(configPath, "http_timeout", err.Error())
		}
		if timeout <= 0 {
			return nil, invalid(configPath, "http_timeout", "must be positive")
		}
		settings.HTTPTimeout = timeout
	}

	seen := make(map[string]struct{}, len(file.Sources))
	for i, raw := range file.Sources {
		origin := strings.TrimSpace(raw)
		if origin == "" {
			return nil, zerr.With(invalid(configPath, "sources", "empty source"), "index", i)
		}
		src := domain.BundleSource{Origin: origin}
		if !src.Kind().Remote() {
			src.Origin = resolvePath(configDir, origin, "")
		}
		if _, dup := seen[src.Origin]; dup {
			continue
		}
		seen[src.Origin] = struct{}{}
		settings.Sources = append(settings.Sources, src)
	}

	return settings, nil
}

// resolvePath makes configured relative to dir, falling back to def when empty.
func resolvePath(dir, configured, def string) string {
	configured = strings.TrimSpace(configured)
	if configured == "" {
		return filepath.Clean(def)
	}
	if strings.HasPrefix(configured, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, configured[2:])
		}
	}
	if filepath.IsAbs(configured) {
		return filepath.Clean(configured)
	}
	return filepath.Clean(filepath.Join(dir, configured))
}

func invalid(configPath, field, reason string) error {
	err := zerr.With(zerr.Wrap(domain.ErrInvalidConfig, reason), "field", field)
	return zerr.With(err, "path", configPath)
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is validated by caller
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "path", configPath)
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, parseErr.Error()), "path", configPath)
	}

	return nil
}
