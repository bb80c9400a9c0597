package selection

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk selection document. JSON is a subset of YAML, so one
// decoder reads both.
type File struct {
	Items []Entry `yaml:"items" json:"items"`
}

// Parse decodes a selection document.
func Parse(data []byte) (*Selection, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse selection: %w", err)
	}
	return New(f.Items...)
}

// Load reads a selection file.
func Load(path string) (*Selection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read selection: %w", err)
	}
	sel, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sel, nil
}

// Save writes s as YAML.
func (s *Selection) Save(path string) error {
	data, err := yaml.Marshal(File{Items: s.Entries()})
	if err != nil {
		return fmt.Errorf("failed to marshal selection: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write selection: %w", err)
	}
	return nil
}
