package fonts

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fonts.db")

	c := NewCatalog()
	c.Add(Name{Family: "Roboto", Style: "Regular"})
	c.Add(Name{Family: "Roboto", Style: "Bold"})
	c.Add(Name{Family: "Open Sans", Style: "Light"})

	if err := SaveCache(path, c); err != nil {
		t.Fatalf("SaveCache() error = %v", err)
	}
	got, err := LoadCache(path)
	if err != nil {
		t.Fatalf("LoadCache() error = %v", err)
	}

	if got.Len() != c.Len() {
		t.Errorf("LoadCache() returned %d entries, want %d", got.Len(), c.Len())
	}
	if diff := cmp.Diff(c.Families(), got.Families()); diff != "" {
		t.Errorf("families mismatch (-want +got):\n%s", diff)
	}
	for _, n := range c.Entries() {
		if !got.Has(n) {
			t.Errorf("cached catalog is missing %s", n.Key())
		}
	}
}

func TestLoadCacheMissingFile(t *testing.T) {
	if _, err := LoadCache(filepath.Join(t.TempDir(), "absent.db")); err == nil {
		t.Error("LoadCache() expected error for missing file")
	}
}
