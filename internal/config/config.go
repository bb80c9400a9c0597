package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"perkplan/internal/planner"
)

// DefaultConfigFile is looked up in the workspace root when --config is not given.
const DefaultConfigFile = "perkplan.yaml"

// Config holds all perkplan configuration.
type Config struct {
	// Core settings
	Name string `yaml:"name"`

	// Inputs to the planner
	Catalog   CatalogConfig   `yaml:"catalog"`
	Selection SelectionConfig `yaml:"selection"`
	Slots     SlotsConfig     `yaml:"slots"`
	Stats     map[string]int  `yaml:"stats"`
	Policy    PolicyConfig    `yaml:"policy"`

	// Where results go
	Output OutputConfig `yaml:"output"`
	Store  StoreConfig  `yaml:"store"`
	Watch  WatchConfig  `yaml:"watch"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name: "perkplan",

		Catalog: CatalogConfig{
			Path: "perks_flattened_full.json",
		},

		Selection: SelectionConfig{
			Path: "selection.yaml",
		},

		Slots: SlotsConfig{
			First: 2,
			Last:  100,
		},

		Stats: map[string]int{
			"S": 10, "P": 10, "E": 10, "C": 10, "I": 10, "A": 10, "L": 10,
		},

		Policy: PolicyConfig{
			Eligibility: "always",
		},

		Output: OutputConfig{
			Format: "table",
			Path:   "perk_plan_output.txt",
			Title:  "Fallout 4 Perk Planner Output",
		},

		Store: StoreConfig{
			Enabled: true,
			Driver:  "sqlite3",
			Path:    filepath.Join(".perkplan", "plans.db"),
		},

		Watch: WatchConfig{
			Debounce: "300ms",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("PERKPLAN_CATALOG"); path != "" {
		c.Catalog.Path = path
	}
	if path := os.Getenv("PERKPLAN_SELECTION"); path != "" {
		c.Selection.Path = path
	}
	if path := os.Getenv("PERKPLAN_DB"); path != "" {
		c.Store.Path = path
	}
	if driver := os.Getenv("PERKPLAN_DB_DRIVER"); driver != "" {
		c.Store.Driver = driver
	}
	if level := os.Getenv("PERKPLAN_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if v := os.Getenv("PERKPLAN_STORE_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Store.Enabled = enabled
		}
	}
}

// GetDebounce returns the watcher debounce as a duration.
func (c *Config) GetDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return 300 * time.Millisecond
	}
	return d
}

// ValidDrivers lists the supported database/sql driver names.
var ValidDrivers = []string{"sqlite3", "sqlite"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Catalog.Path == "" {
		return fmt.Errorf("catalog path not configured (set catalog.path or PERKPLAN_CATALOG)")
	}
	if c.Slots.First > c.Slots.Last {
		return fmt.Errorf("invalid slot range %d..%d", c.Slots.First, c.Slots.Last)
	}
	if _, ok := planner.PolicyByName(c.Policy.Eligibility); !ok {
		return fmt.Errorf("invalid eligibility policy: %s (valid: %v)", c.Policy.Eligibility, planner.PolicyNames)
	}
	if c.Store.Enabled && !contains(ValidDrivers, c.Store.Driver) {
		return fmt.Errorf("invalid store driver: %s (valid: %v)", c.Store.Driver, ValidDrivers)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// FindWorkspaceRoot attempts to find the project root by looking for
// perkplan.yaml or go.mod. If not found, returns the current working directory.
func FindWorkspaceRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	originalDir := dir
	for {
		if _, err := os.Stat(filepath.Join(dir, DefaultConfigFile)); err == nil {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return originalDir, nil
}

// DefaultConfigPath returns perkplan.yaml in the workspace root.
func DefaultConfigPath() string {
	root, err := FindWorkspaceRoot()
	if err != nil {
		return DefaultConfigFile
	}
	return filepath.Join(root, DefaultConfigFile)
}

// Resolve makes a relative path absolute against base. Config paths are
// relative to the config file's directory.
func Resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
