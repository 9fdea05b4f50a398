package ports

import "go.trai.ch/slicecache/internal/core/domain"

// SettingsLoader defines the interface for loading the settings file.
//
//go:generate mockgen -source=settings_loader.go -destination=mocks/mock_settings_loader.go -package=mocks
type SettingsLoader interface {
	// Load reads the settings file at path. An empty path searches upward from cwd
	// for the default settings file name.
	Load(path, cwd string) (*domain.Settings, error)
}
