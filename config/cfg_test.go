package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rupor-github/gencfg"

	"fontwrench/fonts"
)

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}

	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}

	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}

	if len(cfg.Catalog.Sources) != 0 {
		t.Errorf("Default catalog sources = %v, want none", cfg.Catalog.Sources)
	}

	if cfg.Logging.ConsoleLogger.Level != "normal" {
		t.Errorf("Default console level = %q, want normal", cfg.Logging.ConsoleLogger.Level)
	}

	if cfg.Logging.FileLogger.Level != "none" {
		t.Errorf("Default file level = %q, want none", cfg.Logging.FileLogger.Level)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `version: 1
catalog:
  sources:
    - kind: list
      fonts:
        - family: Helvetica
          styles: [Regular, Bold]
    - kind: cache
      path: fonts.db
logging:
  console:
    level: debug
  file:
    level: none
reporting:
  destination: report.zip
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if len(cfg.Catalog.Sources) != 2 {
		t.Fatalf("Catalog sources length = %d, want 2", len(cfg.Catalog.Sources))
	}

	if cfg.Catalog.Sources[0].Kind != CatalogSourceList {
		t.Errorf("First source kind = %v, want list", cfg.Catalog.Sources[0].Kind)
	}

	if len(cfg.Catalog.Sources[0].Fonts) != 1 || cfg.Catalog.Sources[0].Fonts[0].Family != "Helvetica" {
		t.Errorf("First source fonts = %+v, want Helvetica entry", cfg.Catalog.Sources[0].Fonts)
	}

	if cfg.Catalog.Sources[1].Kind != CatalogSourceCache {
		t.Errorf("Second source kind = %v, want cache", cfg.Catalog.Sources[1].Kind)
	}

	if cfg.Logging.ConsoleLogger.Level != "debug" {
		t.Errorf("Console level = %q, want debug", cfg.Logging.ConsoleLogger.Level)
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	_, err := LoadConfiguration("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfiguration_UnknownFields(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "unknown.yaml")

	configWithUnknown := `version: 1
unknown_field: value
`

	if err := os.WriteFile(configPath, []byte(configWithUnknown), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if _, err := LoadConfiguration(configPath); err == nil {
		t.Error("Expected error for unknown fields")
	}
}

func TestLoadConfiguration_ValidationError(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid_values.yaml")

	// Invalid version number
	configWithInvalidVersion := `version: 2
`

	if err := os.WriteFile(configPath, []byte(configWithInvalidVersion), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if _, err := LoadConfiguration(configPath); err == nil {
		t.Error("Expected validation error for invalid version")
	}
}

func TestLoadConfiguration_BadSourceKind(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bad_kind.yaml")

	configContent := `version: 1
catalog:
  sources:
    - kind: registry
      path: somewhere
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if _, err := LoadConfiguration(configPath); err == nil {
		t.Error("Expected error for unknown catalog source kind")
	}
}

func TestLoadConfiguration_WithOptions(t *testing.T) {
	option := func(opts *gencfg.ProcessingOptions) {
		// Options are opaque, just test that we can pass them
	}

	cfg, err := LoadConfiguration("", option)
	if err != nil {
		t.Fatalf("LoadConfiguration() with options error = %v", err)
	}

	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	if len(data) == 0 {
		t.Error("Prepare() returned empty data")
	}

	// Verify it's valid YAML by trying to unmarshal
	cfg := &Config{}
	if _, err = unmarshalConfig(data, cfg, true); err != nil {
		t.Errorf("Prepared config is not valid: %v", err)
	}
}

func TestDump(t *testing.T) {
	cfg := &Config{
		Version: 1,
		Catalog: CatalogConfig{
			Sources: []CatalogSourceConfig{
				{Kind: CatalogSourceCache, Path: "fonts.db"},
			},
		},
	}

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}

	if len(data) == 0 {
		t.Error("Dump() returned empty data")
	}

	// Verify we can load it back
	cfg2 := &Config{}
	if _, err = unmarshalConfig(data, cfg2, false); err != nil {
		t.Errorf("Dumped config cannot be loaded: %v", err)
	}

	if len(cfg2.Catalog.Sources) != 1 || cfg2.Catalog.Sources[0].Kind != CatalogSourceCache {
		t.Errorf("Catalog sources mismatch after dump/load: %+v", cfg2.Catalog.Sources)
	}
}

func TestCatalogConfigPrepare(t *testing.T) {
	conf := CatalogConfig{
		Sources: []CatalogSourceConfig{
			{Kind: CatalogSourceList, Fonts: []fonts.ListEntry{{Family: "Helvetica", Styles: []string{"Regular", "Bold"}}}},
			{Kind: CatalogSourceList, Fonts: []fonts.ListEntry{{Family: "HELVETICA", Styles: []string{"regular"}}}},
		},
	}

	catalog, err := conf.Prepare(nil)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	// duplicate (family, style) from the later source is folded away
	if catalog.Len() != 2 {
		t.Errorf("catalog size = %d, want 2", catalog.Len())
	}
}

func TestCatalogConfigPrepare_SourceFailure(t *testing.T) {
	conf := CatalogConfig{
		Sources: []CatalogSourceConfig{
			{Kind: CatalogSourceCache, Path: "/nonexistent/fonts.db"},
		},
	}

	if _, err := conf.Prepare(nil); err == nil {
		t.Error("Expected error for unreadable cache source")
	}
}

func TestCatalogSourceKindRoundTrip(t *testing.T) {
	for _, name := range CatalogSourceKindNames() {
		k, err := ParseCatalogSourceKind(name)
		if err != nil {
			t.Fatalf("ParseCatalogSourceKind(%q) error = %v", name, err)
		}
		if k.String() != name {
			t.Errorf("String() = %q, want %q", k.String(), name)
		}
	}

	if _, err := ParseCatalogSourceKind("bogus"); err == nil {
		t.Error("Expected error for invalid kind name")
	}
}
