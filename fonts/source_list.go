package fonts

import (
	"fmt"

	yaml "gopkg.in/yaml.v3"
)

// ListEntry describes one family in an explicit YAML font list, the way it
// appears in program configuration.
type ListEntry struct {
	Family string   `yaml:"family" validate:"required"`
	Styles []string `yaml:"styles" validate:"required,min=1,dive,required"`
}

// LoadList builds a catalog from YAML data holding a sequence of ListEntry.
// Useful for tests and for pinning a known catalog without touching the file
// system.
func LoadList(data []byte) (*Catalog, error) {
	var entries []ListEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("unable to parse font list: %w", err)
	}
	return FromList(entries)
}

// FromList builds a catalog from already decoded list entries.
func FromList(entries []ListEntry) (*Catalog, error) {
	c := NewCatalog()
	for _, e := range entries {
		if len(e.Family) == 0 {
			return nil, fmt.Errorf("font list entry with empty family name")
		}
		if len(e.Styles) == 0 {
			return nil, fmt.Errorf("font list entry '%s' has no styles", e.Family)
		}
		for _, s := range e.Styles {
			if len(s) == 0 {
				return nil, fmt.Errorf("font list entry '%s' has empty style name", e.Family)
			}
			c.Add(Name{Family: e.Family, Style: s})
		}
	}
	return c, nil
}
