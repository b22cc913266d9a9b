// Package mutate implements bulk font substitution across the text nodes of
// the active page. Three operations are supported - replace a family,
// replace a style within a family, replace a size within a family - all
// driven by the same per-node state machine which honors the host constraint
// that every font present in a node must be loaded before any range of the
// node can be written.
package mutate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"fontwrench/document"
	"fontwrench/fonts"
)

var (
	// ErrInvalidRequest marks caller contract violations (blank names,
	// non-positive sizes). The boundary drops these silently, they are not
	// user-facing errors.
	ErrInvalidRequest = errors.New("invalid replacement request")

	// ErrFamilyNotAvailable is returned when a family replacement targets a
	// family absent from the catalog. Nothing is mutated in that case.
	ErrFamilyNotAvailable = errors.New("font family is not available")
)

// Progress is emitted after each candidate node reaches a terminal state.
// Current increases by exactly one per node and ends at Total.
type Progress struct {
	Current int
	Total   int
}

// Outcome is the terminal state of one node.
type Outcome int

const (
	// OutcomeSkipped - no run of the node matched the predicate, or the node
	// could not be read. Skipped nodes count neither as success nor failure.
	OutcomeSkipped Outcome = iota
	// OutcomeDone - at least one matched run was rewritten.
	OutcomeDone
	// OutcomeFailed - runs matched but none could be rewritten.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeDone:
		return "done"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// NodeResult records how one node went through the operation. The result
// list is the single source of truth for failure reporting, there is no side
// channel.
type NodeResult struct {
	ID        document.NodeID
	Outcome   Outcome
	Matched   int // runs matching the predicate
	Rewritten int // runs actually changed
	Reason    string
}

// Summary describes one finished operation.
type Summary struct {
	Updated int    // nodes with at least one rewritten run
	Target  string // echo of the operation's target name
	Nodes   []NodeResult
}

type Engine struct {
	host document.Host
	log  *zap.Logger
}

func New(host document.Host, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{host: host, log: log.Named("mutate")}
}

// change is what a matched run should become. Exactly one attribute is set
// per operation kind.
type change struct {
	font *fonts.Name
	size *float64
}

// operation unifies the three replacement variants: a predicate picking runs
// and a resolver producing the replacement for one matched run.
type operation struct {
	target  string
	match   func(r document.Run) bool
	resolve func(r document.Run) change
}

// ReplaceFamily rewrites every run using oldFamily to newFamily, mapping
// each run's existing style to the best available style of the new family.
// The target family must exist in the catalog or the whole operation is
// rejected before any node is touched.
func (e *Engine) ReplaceFamily(ctx context.Context, oldFamily, newFamily string, progress func(Progress)) (*Summary, error) {
	if blank(oldFamily) || blank(newFamily) {
		return nil, ErrInvalidRequest
	}
	catalog, err := e.catalogSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if !catalog.HasFamily(newFamily) {
		return nil, fmt.Errorf("%w: %s", ErrFamilyNotAvailable, newFamily)
	}

	want := fonts.Fold(oldFamily)
	op := operation{
		target: newFamily,
		match: func(r document.Run) bool {
			return fonts.Fold(r.Font.Family) == want
		},
		resolve: func(r document.Run) change {
			// family has at least one entry, checked above
			best, _ := catalog.BestStyle(newFamily, r.Font.Style)
			return change{font: &best}
		},
	}
	return e.run(ctx, op, progress)
}

// ReplaceStyle rewrites runs using (family, oldStyle) to the literal
// newStyle within the same family. The new style is not pre-validated, the
// load attempt during rewriting is the validation and fails per run.
func (e *Engine) ReplaceStyle(ctx context.Context, family, oldStyle, newStyle string, progress func(Progress)) (*Summary, error) {
	if blank(family) || blank(oldStyle) || blank(newStyle) {
		return nil, ErrInvalidRequest
	}

	wantFamily, wantStyle := fonts.Fold(family), fonts.Fold(oldStyle)
	op := operation{
		target: family + " " + newStyle,
		match: func(r document.Run) bool {
			return fonts.Fold(r.Font.Family) == wantFamily && fonts.Fold(r.Font.Style) == wantStyle
		},
		resolve: func(r document.Run) change {
			replacement := fonts.Name{Family: r.Font.Family, Style: newStyle}
			return change{font: &replacement}
		},
	}
	return e.run(ctx, op, progress)
}

// ReplaceSize rewrites runs of the family using oldSize to newSize, leaving
// fonts alone. Sizes must be positive.
func (e *Engine) ReplaceSize(ctx context.Context, family string, oldSize, newSize float64, progress func(Progress)) (*Summary, error) {
	if blank(family) || oldSize <= 0 || newSize <= 0 {
		return nil, ErrInvalidRequest
	}

	wantFamily := fonts.Fold(family)
	op := operation{
		target: family + " " + strconv.FormatFloat(newSize, 'f', -1, 64),
		match: func(r document.Run) bool {
			return fonts.Fold(r.Font.Family) == wantFamily && r.Size == oldSize
		},
		resolve: func(r document.Run) change {
			size := newSize
			return change{size: &size}
		},
	}
	return e.run(ctx, op, progress)
}

func (e *Engine) catalogSnapshot(ctx context.Context) (*fonts.Catalog, error) {
	available, err := e.host.AvailableFonts(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to query font catalog: %w", err)
	}
	catalog := fonts.NewCatalog()
	for _, n := range available {
		catalog.Add(n)
	}
	return catalog, nil
}

// candidate is a node that passed the scanning state with at least one
// matching run.
type candidate struct {
	id      document.NodeID
	seg     document.Segmentation
	matched []document.Run
}

// run drives the operation over the whole page: a scanning pass over every
// node to find candidates, then each candidate through loading and rewriting
// to a terminal state, strictly one node at a time.
func (e *Engine) run(ctx context.Context, op operation, progress func(Progress)) (*Summary, error) {
	ids, err := e.host.TextNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to enumerate text nodes: %w", err)
	}

	summary := &Summary{Target: op.target}

	// Scanning: decompose every node, decide candidacy. Unreadable and
	// unmatched nodes are done here - they reach Skipped without entering
	// the load/rewrite states.
	var candidates []candidate
	for _, id := range ids {
		seg, err := e.host.Segments(id)
		if err != nil {
			e.log.Debug("Skipping unreadable node", zap.String("node", string(id)), zap.Error(err))
			summary.Nodes = append(summary.Nodes, NodeResult{ID: id, Outcome: OutcomeSkipped, Reason: err.Error()})
			continue
		}
		var matched []document.Run
		for _, r := range seg.Runs {
			if op.match(r) {
				matched = append(matched, r)
			}
		}
		if len(matched) == 0 {
			summary.Nodes = append(summary.Nodes, NodeResult{ID: id, Outcome: OutcomeSkipped})
			continue
		}
		candidates = append(candidates, candidate{id: id, seg: seg, matched: matched})
	}

	loads := make(loadCache)
	total := len(candidates)
	for done, cand := range candidates {
		res := e.processNode(ctx, cand, op, loads)
		if res.Outcome == OutcomeDone {
			summary.Updated++
		}
		summary.Nodes = append(summary.Nodes, res)
		if progress != nil {
			progress(Progress{Current: done + 1, Total: total})
		}
	}

	e.log.Info("Replacement finished",
		zap.String("target", op.target),
		zap.Int("candidates", total),
		zap.Int("updated", summary.Updated))
	return summary, nil
}

// processNode walks one candidate through LoadingExistingFonts and Rewriting
// to a terminal state. Failures stay contained in the returned result.
func (e *Engine) processNode(ctx context.Context, cand candidate, op operation, loads loadCache) NodeResult {
	res := NodeResult{ID: cand.id, Matched: len(cand.matched)}

	// LoadingExistingFonts: every distinct font present anywhere in the
	// node, matched or not, is loaded before the first write. Failures for
	// fonts the operation does not intend to rewrite are tolerated.
	for _, f := range cand.seg.Fonts() {
		if err := loads.load(ctx, e.host, f); err != nil {
			e.log.Debug("Unable to load node font",
				zap.String("node", string(cand.id)),
				zap.String("font", f.String()),
				zap.Error(err))
		}
	}

	// Rewriting: resolve, load and write each matched run, whole-node when
	// the node is uniform. A failed run is left unchanged and does not stop
	// the others.
	var firstErr error
	for _, r := range cand.matched {
		ch := op.resolve(r)
		if ch.font != nil {
			if err := loads.load(ctx, e.host, *ch.font); err != nil {
				e.log.Debug("Unable to load replacement font",
					zap.String("node", string(cand.id)),
					zap.String("font", ch.font.String()),
					zap.Error(err))
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
		}
		if err := e.write(cand, r, ch); err != nil {
			e.log.Debug("Unable to rewrite run",
				zap.String("node", string(cand.id)),
				zap.Int("start", r.Start),
				zap.Int("end", r.End),
				zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		res.Rewritten++
	}

	if res.Rewritten > 0 {
		res.Outcome = OutcomeDone
	} else {
		res.Outcome = OutcomeFailed
		if firstErr != nil {
			res.Reason = firstErr.Error()
		}
	}
	return res
}

func (e *Engine) write(cand candidate, r document.Run, ch change) error {
	switch {
	case ch.font != nil && cand.seg.Uniform():
		return e.host.SetNodeFont(cand.id, *ch.font)
	case ch.font != nil:
		return e.host.SetRangeFont(cand.id, r.Start, r.End, *ch.font)
	case ch.size != nil && cand.seg.Uniform():
		return e.host.SetNodeSize(cand.id, *ch.size)
	case ch.size != nil:
		return e.host.SetRangeSize(cand.id, r.Start, r.End, *ch.size)
	default:
		return nil
	}
}

// loadCache deduplicates font loads within one operation. The first attempt
// decides - later calls replay its result without going back to the host.
type loadCache map[fonts.Key]error

func (c loadCache) load(ctx context.Context, host document.Host, font fonts.Name) error {
	key := font.Key()
	if err, ok := c[key]; ok {
		return err
	}
	err := host.LoadFont(ctx, font)
	c[key] = err
	return err
}

func blank(s string) bool {
	return len(strings.TrimSpace(s)) == 0
}
