// Package selection keeps track of the one piece of cross-request state the
// font tooling has: which family, if any, the last "select by font" action
// targeted. The recorded family stays set only while the live selection
// still contains a node using it.
package selection

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"fontwrench/document"
)

var ErrInvalidRequest = errors.New("invalid selection request")

type Tracker struct {
	host document.Host
	log  *zap.Logger

	family string // display casing of the recorded family, empty when none
}

func New(host document.Host, log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{host: host, log: log.Named("selection")}
}

// Family returns the currently recorded family, empty when no font filter is
// active.
func (t *Tracker) Family() string {
	return t.family
}

// SelectByFamily replaces the host selection with every text node containing
// at least one run of the family and focuses the viewport on them. The
// family is recorded only when something was selected.
func (t *Tracker) SelectByFamily(ctx context.Context, family string) (int, error) {
	if len(strings.TrimSpace(family)) == 0 {
		return 0, ErrInvalidRequest
	}

	ids, err := t.host.TextNodes(ctx)
	if err != nil {
		return 0, fmt.Errorf("unable to enumerate text nodes: %w", err)
	}
	var matched []document.NodeID
	for _, id := range ids {
		seg, err := t.host.Segments(id)
		if err != nil {
			t.log.Debug("Skipping unreadable node", zap.String("node", string(id)), zap.Error(err))
			continue
		}
		if seg.HasFamily(family) {
			matched = append(matched, id)
		}
	}

	// record before touching the host selection: hosts may deliver the
	// resulting selection-change notification synchronously and the recorded
	// family must already reflect what is being selected
	t.family = ""
	if len(matched) > 0 {
		t.family = family
	}
	if err := t.host.SetSelection(matched); err != nil {
		t.family = ""
		return 0, fmt.Errorf("unable to set selection: %w", err)
	}
	if len(matched) > 0 {
		t.host.FocusOn(matched)
	}
	t.log.Debug("Selected by family", zap.String("family", family), zap.Int("count", len(matched)))
	return len(matched), nil
}

// SelectionChanged handles an external selection change. It returns true
// when the boundary should signal that no font filter is active anymore:
// when nothing is recorded, when the selection went empty, or when no
// selected node uses the recorded family. In all of those cases the recorded
// family is cleared before returning, stale state never survives the call.
func (t *Tracker) SelectionChanged(ids []document.NodeID) bool {
	if len(t.family) == 0 {
		return true
	}
	if len(ids) == 0 {
		t.family = ""
		return true
	}
	for _, id := range ids {
		seg, err := t.host.Segments(id)
		if err != nil {
			continue
		}
		if seg.HasFamily(t.family) {
			return false
		}
	}
	t.log.Debug("Selection no longer contains recorded family", zap.String("family", t.family))
	t.family = ""
	return true
}
