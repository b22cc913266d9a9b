package fonts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/h2non/filetype"
	"go.uber.org/zap"
	"golang.org/x/image/font/sfnt"
)

// LoadDir builds a catalog by scanning a directory tree for font files and
// reading family/subfamily names from their name tables. Files that are not
// fonts or cannot be parsed are skipped with a debug log entry, they never
// fail the scan. Symbolic links are not followed.
func LoadDir(dir string, log *zap.Logger) (*Catalog, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("font-dir")

	c := NewCatalog()
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				log.Debug("Skipping unreadable directory", zap.String("path", path), zap.Error(err))
				return fs.SkipDir
			}
			log.Debug("Skipping unreadable entry", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.IsDir() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			log.Debug("Unable to read file", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !filetype.IsFont(data) {
			return nil
		}
		names, err := fontNames(data)
		if err != nil {
			// woff and friends match the font kind but are not sfnt parseable
			log.Debug("Unable to parse font file", zap.String("path", path), zap.Error(err))
			return nil
		}
		for _, n := range names {
			log.Debug("Catalog entry", zap.String("path", path), zap.String("family", n.Family), zap.String("style", n.Style))
			c.Add(n)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to scan font directory '%s': %w", dir, err)
	}
	return c, nil
}

// fontNames extracts (family, style) pairs from sfnt data, handling both
// single fonts and collections.
func fontNames(data []byte) ([]Name, error) {
	coll, err := sfnt.ParseCollection(data)
	if err != nil {
		return nil, err
	}
	var out []Name
	for i := 0; i < coll.NumFonts(); i++ {
		f, err := coll.Font(i)
		if err != nil {
			return nil, err
		}
		n, err := sfntName(f)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func sfntName(f *sfnt.Font) (Name, error) {
	var buf sfnt.Buffer

	// typographic names are authoritative when present, legacy family/
	// subfamily fold weights into the family name
	family, err := f.Name(&buf, sfnt.NameIDTypographicFamily)
	if err != nil {
		if !errors.Is(err, sfnt.ErrNotFound) {
			return Name{}, err
		}
		if family, err = f.Name(&buf, sfnt.NameIDFamily); err != nil {
			return Name{}, err
		}
	}
	style, err := f.Name(&buf, sfnt.NameIDTypographicSubfamily)
	if err != nil {
		if !errors.Is(err, sfnt.ErrNotFound) {
			return Name{}, err
		}
		if style, err = f.Name(&buf, sfnt.NameIDSubfamily); err != nil {
			return Name{}, err
		}
	}
	return Name{Family: family, Style: style}, nil
}
