package config

// CatalogConfig locates the catalog file.
type CatalogConfig struct {
	Path            string `yaml:"path"`
	AllowDuplicates bool   `yaml:"allow_duplicates"`
}

// SelectionItem is one active item declared inline in the config.
type SelectionItem struct {
	Item     string `yaml:"item"`
	MaxRank  int    `yaml:"max_rank"`
	Priority int    `yaml:"priority"`
}

// SelectionConfig locates the selection file. Inline items are merged over
// the file's entries.
type SelectionConfig struct {
	Path  string          `yaml:"path"`
	Items []SelectionItem `yaml:"items,omitempty"`
}

// SlotsConfig is the inclusive slot range to plan.
type SlotsConfig struct {
	First int `yaml:"first"`
	Last  int `yaml:"last"`
}

// PolicyConfig selects the eligibility policy: "always" accepts every entry,
// "requirements" checks stats against each entry's requirement.
type PolicyConfig struct {
	Eligibility string `yaml:"eligibility"`
}
