// Package document defines the contract the font tooling needs from the
// editing host - reading text nodes and their font runs, writing font
// attributes back, loading fonts and driving selection - plus a complete
// in-memory host implementation used by the command line tools and tests.
package document

import (
	"context"
	"errors"

	"fontwrench/fonts"
)

// NodeID is an opaque host-assigned text node identity.
type NodeID string

// Run is a contiguous span of characters within one text node sharing the
// same font and size. Start is inclusive, End exclusive. Runs of a node
// partition its full character range with no gaps or overlaps.
type Run struct {
	Start int
	End   int
	Font  fonts.Name
	Size  float64
}

// Segmentation is a node's font assignment decomposed into runs, together
// with whether each attribute is uniform across the node. It is always
// derived from the live document, never cached.
type Segmentation struct {
	Length      int
	Runs        []Run
	UniformFont bool
	UniformSize bool
}

// Uniform reports whether both font and size are uniform, in which case the
// node can be written as a whole instead of range by range.
func (s Segmentation) Uniform() bool {
	return s.UniformFont && s.UniformSize
}

// Fonts returns the distinct (family, style) pairs present in the node, in
// run order. This is exactly the set that must be loaded before any write.
func (s Segmentation) Fonts() []fonts.Name {
	seen := make(map[fonts.Key]struct{}, len(s.Runs))
	var out []fonts.Name
	for _, r := range s.Runs {
		key := r.Font.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r.Font)
	}
	return out
}

// HasFamily reports whether any run uses the family.
func (s Segmentation) HasFamily(family string) bool {
	want := fonts.Fold(family)
	for _, r := range s.Runs {
		if fonts.Fold(r.Font.Family) == want {
			return true
		}
	}
	return false
}

// Host is everything the scanner, mutation engine and selection tracker need
// from the editing host. Implementations are not required to be safe for
// concurrent use - all operations are driven strictly one at a time.
type Host interface {
	// TextNodes enumerates every text node on the active page in document
	// order.
	TextNodes(ctx context.Context) ([]NodeID, error)

	// Segments decomposes a node into runs at the grain of "font or size
	// differs". A node with uniform formatting yields exactly one run.
	Segments(id NodeID) (Segmentation, error)

	// AvailableFonts lists the locally available font catalog.
	AvailableFonts(ctx context.Context) ([]fonts.Name, error)

	// LoadFont makes a font usable for writes. The host rejects font
	// attribute writes touching ranges whose fonts were not loaded first.
	LoadFont(ctx context.Context, font fonts.Name) error

	SetRangeFont(id NodeID, start, end int, font fonts.Name) error
	SetRangeSize(id NodeID, start, end int, size float64) error
	SetNodeFont(id NodeID, font fonts.Name) error
	SetNodeSize(id NodeID, size float64) error

	SetSelection(ids []NodeID) error
	FocusOn(ids []NodeID)

	// OnSelectionChange subscribes to selection change notifications. The
	// returned function cancels the subscription.
	OnSelectionChange(fn func(ids []NodeID)) (cancel func())
}

var (
	ErrUnknownNode   = errors.New("unknown text node")
	ErrBadRange      = errors.New("range outside of node text")
	ErrFontNotKnown  = errors.New("font is not available")
	ErrFontNotLoaded = errors.New("font was not loaded before write")
)
