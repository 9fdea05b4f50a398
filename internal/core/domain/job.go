package domain

import "time"

// SliceJob is one invocation of the external slicer.
type SliceJob struct {
	// Command is the slicer invocation, split into arguments before running.
	Command      string
	ConfigPath   string
	GeometryPath string
	OutputPath   string
}

// GcodeStats are the estimates the slicer writes into an artifact.
type GcodeStats struct {
	PrintTime     string
	FilamentGrams string
}

// Settings is the loaded settings file with relative paths made absolute.
type Settings struct {
	// Path is the settings file the values were loaded from.
	Path        string
	CacheDir    string
	WorkDir     string
	Slicer      string
	Concurrency int
	HTTPTimeout time.Duration
	Sources     []BundleSource
}

// LocalSources returns the sources that are local directories.
func (s *Settings) LocalSources() []BundleSource {
	var local []BundleSource
	for _, src := range s.Sources {
		if src.Kind() == SourceLocalDir {
			local = append(local, src)
		}
	}
	return local
}
