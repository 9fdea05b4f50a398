package config

// SchemaVersion is the settings file version this loader understands.
const SchemaVersion = "1"

// Settingsfile represents the structure of the slicecache.yaml settings file.
type Settingsfile struct {
	Version     string   `yaml:"version"`
	CacheDir    string   `yaml:"cache_dir"`
	WorkDir     string   `yaml:"work_dir"`
	Slicer      string   `yaml:"slicer"`
	Concurrency int      `yaml:"concurrency"`
	HTTPTimeout string   `yaml:"http_timeout"`
	Sources     []string `yaml:"sources"`
}
