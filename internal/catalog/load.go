package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects the catalog file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks a format from the file extension. Unknown extensions
// are treated as JSON, the flattened-perks export format.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// yamlDocument accepts either a bare list or {entries: [...]}.
type yamlDocument struct {
	Entries []Entry `yaml:"entries"`
}

// Parse decodes entries from r and builds a validated Catalog.
func Parse(r io.Reader, format Format, opts ...Option) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var entries []Entry
	switch format {
	case FormatYAML:
		entries, err = decodeYAML(data)
	case FormatJSON:
		// Extra keys such as descriptions are ignored, as in YAML.
		err = json.Unmarshal(data, &entries)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return New(entries, opts...)
}

// decodeYAML picks the document form from the root node so decode errors
// name the offending field.
func decodeYAML(data []byte) ([]Entry, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return nil, nil
	}
	node := root.Content[0]
	switch node.Kind {
	case yaml.SequenceNode:
		var list []Entry
		if err := node.Decode(&list); err != nil {
			return nil, err
		}
		return list, nil
	case yaml.MappingNode:
		var doc yamlDocument
		if err := node.Decode(&doc); err != nil {
			return nil, err
		}
		return doc.Entries, nil
	default:
		return nil, fmt.Errorf("line %d: expected a list of entries or a mapping with entries", node.Line)
	}
}

// Load reads a catalog file, choosing the decoder from its extension.
func Load(path string, opts ...Option) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	cat, err := Parse(f, FormatFromPath(path), opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}
