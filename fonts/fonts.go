// Package fonts models font identities the way the editing host names them
// and keeps the catalog of locally available fonts.
package fonts

import (
	"fmt"

	"golang.org/x/text/cases"
)

var folder = cases.Fold()

// Fold normalizes a string for case-insensitive comparisons. Families and
// styles coming from documents and catalogs are matched after folding, never
// byte-for-byte.
func Fold(s string) string {
	return folder.String(s)
}

// Name is a font as the host names it: family plus a named style within the
// family. Both parts keep their original casing for display and for writes
// back to the host.
type Name struct {
	Family string `json:"family" yaml:"family"`
	Style  string `json:"style" yaml:"style"`
}

func (n Name) String() string {
	return n.Family + " " + n.Style
}

// Key is a case-folded Name with structural equality, used for matching,
// load deduplication and catalog lookups.
type Key struct {
	Family string
	Style  string
}

func (n Name) Key() Key {
	return Key{Family: Fold(n.Family), Style: Fold(n.Style)}
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.Family, k.Style)
}

// SameFamily reports whether two family names refer to the same family.
func SameFamily(a, b string) bool {
	return Fold(a) == Fold(b)
}
