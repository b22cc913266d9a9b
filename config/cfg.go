package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
	"go.uber.org/zap"

	"fontwrench/fonts"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	// CatalogSourceConfig describes one source of locally available fonts.
	// Depending on kind either a path (dir, cache) or an explicit font list
	// is expected.
	CatalogSourceConfig struct {
		Kind  CatalogSourceKind `yaml:"kind"`
		Path  string            `yaml:"path,omitempty" sanitize:"path_clean" validate:"omitempty,filepath|dirpath"`
		Fonts []fonts.ListEntry `yaml:"fonts,omitempty"`
	}

	CatalogConfig struct {
		Sources []CatalogSourceConfig `yaml:"sources"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Catalog   CatalogConfig  `yaml:"catalog"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

// Prepare builds the font catalog by merging all configured sources, earlier
// sources winning on duplicate (family, style) pairs.
func (conf *CatalogConfig) Prepare(log *zap.Logger) (*fonts.Catalog, error) {
	cats := make([]*fonts.Catalog, 0, len(conf.Sources))
	for i, src := range conf.Sources {
		var (
			c   *fonts.Catalog
			err error
		)
		switch src.Kind {
		case CatalogSourceDir:
			c, err = fonts.LoadDir(src.Path, log)
		case CatalogSourceCache:
			c, err = fonts.LoadCache(src.Path)
		case CatalogSourceList:
			c, err = fonts.FromList(src.Fonts)
		default:
			err = fmt.Errorf("unknown catalog source kind")
		}
		if err != nil {
			return nil, fmt.Errorf("unable to prepare catalog source %d: %w", i, err)
		}
		cats = append(cats, c)
	}
	return fonts.Merge(cats...), nil
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to
// provide sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a
// byte slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
