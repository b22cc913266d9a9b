package config

import (
	"fmt"

	yaml "gopkg.in/yaml.v3"
)

// Specification of font catalog source kind.
type CatalogSourceKind int

const (
	// CatalogSourceDir scans a directory tree for font files.
	CatalogSourceDir CatalogSourceKind = iota
	// CatalogSourceCache reads a previously built SQLite font cache.
	CatalogSourceCache
	// CatalogSourceList takes fonts literally from configuration.
	CatalogSourceList
)

var catalogSourceNames = map[CatalogSourceKind]string{
	CatalogSourceDir:   "dir",
	CatalogSourceCache: "cache",
	CatalogSourceList:  "list",
}

func (k CatalogSourceKind) String() string {
	if name, ok := catalogSourceNames[k]; ok {
		return name
	}
	return fmt.Sprintf("CatalogSourceKind(%d)", int(k))
}

// CatalogSourceKindNames returns all valid source kind names.
func CatalogSourceKindNames() []string {
	return []string{
		catalogSourceNames[CatalogSourceDir],
		catalogSourceNames[CatalogSourceCache],
		catalogSourceNames[CatalogSourceList],
	}
}

func ParseCatalogSourceKind(name string) (CatalogSourceKind, error) {
	for k, n := range catalogSourceNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%s is not a valid CatalogSourceKind", name)
}

func (k CatalogSourceKind) MarshalYAML() (any, error) {
	return k.String(), nil
}

func (k *CatalogSourceKind) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseCatalogSourceKind(name)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
