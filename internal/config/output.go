package config

// OutputConfig configures rendering and export.
type OutputConfig struct {
	Format  string `yaml:"format"`  // renderer for generate/preview
	Path    string `yaml:"path"`    // export destination
	Title   string `yaml:"title"`   // report heading
	Compact bool   `yaml:"compact"` // omit empty slots where supported
	Style   string `yaml:"style"`   // glamour style for "pretty"
}

// StoreConfig configures the plan history database.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Driver  string `yaml:"driver"` // sqlite3 (cgo) or sqlite (pure Go)
	Path    string `yaml:"path"`
}

// WatchConfig configures the file watcher.
type WatchConfig struct {
	Debounce string `yaml:"debounce"`
}
