package fonts

import (
	"sort"

	"github.com/maruel/natural"
)

const styleRegular = "regular"

// Catalog is a snapshot of locally available fonts. Entries keep the order in
// which they were added (host/source order) - BestStyle relies on it for its
// last-resort pick. Lookups are case-insensitive on family, exact on style
// except where noted.
type Catalog struct {
	entries  []Name
	keys     map[Key]struct{}
	families map[string]*familyStyles // folded family
}

type familyStyles struct {
	display string // casing of the first entry seen for the family
	styles  []Name // catalog order
}

func NewCatalog() *Catalog {
	return &Catalog{
		keys:     make(map[Key]struct{}),
		families: make(map[string]*familyStyles),
	}
}

// Add registers an entry, ignoring duplicates of an already known
// (family, style) key.
func (c *Catalog) Add(n Name) {
	key := n.Key()
	if _, ok := c.keys[key]; ok {
		return
	}
	c.keys[key] = struct{}{}
	c.entries = append(c.entries, n)

	fam, ok := c.families[key.Family]
	if !ok {
		fam = &familyStyles{display: n.Family}
		c.families[key.Family] = fam
	}
	fam.styles = append(fam.styles, n)
}

func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entries returns all catalog entries in source order.
func (c *Catalog) Entries() []Name {
	out := make([]Name, len(c.entries))
	copy(out, c.entries)
	return out
}

// HasFamily reports whether at least one entry exists for the family.
func (c *Catalog) HasFamily(family string) bool {
	_, ok := c.families[Fold(family)]
	return ok
}

// Has reports whether the exact (family, style) pair is available.
func (c *Catalog) Has(n Name) bool {
	_, ok := c.keys[n.Key()]
	return ok
}

// Styles returns the family's entries in catalog order, nil when the family
// is unknown.
func (c *Catalog) Styles(family string) []Name {
	fam, ok := c.families[Fold(family)]
	if !ok {
		return nil
	}
	out := make([]Name, len(fam.styles))
	copy(out, fam.styles)
	return out
}

// Families returns display names of all known families, sorted
// lexicographically.
func (c *Catalog) Families() []string {
	out := make([]string, 0, len(c.families))
	for _, fam := range c.families {
		out = append(out, fam.display)
	}
	sort.Strings(out)
	return out
}

// StyleNames returns family display name to style names, style lists in
// natural order so that numbered weights ("Condensed 75") line up the way a
// picker wants them.
func (c *Catalog) StyleNames() map[string][]string {
	out := make(map[string][]string, len(c.families))
	for _, fam := range c.families {
		styles := make([]string, 0, len(fam.styles))
		for _, s := range fam.styles {
			styles = append(styles, s.Style)
		}
		sort.Sort(natural.StringSlice(styles))
		out[fam.display] = styles
	}
	return out
}

// BestStyle picks the replacement style to use within family when requested
// may not exist there: exact case-insensitive match first, then "Regular",
// then whatever entry the catalog lists first for the family. Returns false
// when the family has no entries at all - callers must treat that as "family
// not available" and reject the operation.
func (c *Catalog) BestStyle(family, requested string) (Name, bool) {
	fam, ok := c.families[Fold(family)]
	if !ok || len(fam.styles) == 0 {
		return Name{}, false
	}
	want := Fold(requested)
	for _, s := range fam.styles {
		if Fold(s.Style) == want {
			return s, true
		}
	}
	for _, s := range fam.styles {
		if Fold(s.Style) == styleRegular {
			return s, true
		}
	}
	return fam.styles[0], true
}

// Merge combines catalogs into a new one, earlier catalogs winning on
// duplicate keys.
func Merge(cats ...*Catalog) *Catalog {
	out := NewCatalog()
	for _, c := range cats {
		if c == nil {
			continue
		}
		for _, n := range c.entries {
			out.Add(n)
		}
	}
	return out
}
