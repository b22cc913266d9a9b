package document

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"fontwrench/fonts"
)

// Memory is an in-memory host holding one page of text nodes. It mimics the
// constraints of a real editing host: fonts must be installed to load and
// loaded to write, reads may be made to fail per node, and selection changes
// notify subscribers.
type Memory struct {
	order []NodeID
	nodes map[NodeID]*node

	installed []fonts.Name // catalog, install order
	known     map[fonts.Key]struct{}
	loaded    map[fonts.Key]struct{}
	loadLog   []fonts.Key

	selection []NodeID
	focused   []NodeID
	listeners map[int]func(ids []NodeID)
	nextSub   int
}

type node struct {
	text    string
	runs    []Run // normalized partition of [0, len(text))
	readErr error
}

func NewMemory() *Memory {
	return &Memory{
		nodes:     make(map[NodeID]*node),
		known:     make(map[fonts.Key]struct{}),
		loaded:    make(map[fonts.Key]struct{}),
		listeners: make(map[int]func(ids []NodeID)),
	}
}

// Install registers a font as locally available. Only installed fonts can be
// loaded.
func (m *Memory) Install(names ...fonts.Name) {
	for _, n := range names {
		key := n.Key()
		if _, ok := m.known[key]; ok {
			continue
		}
		m.known[key] = struct{}{}
		m.installed = append(m.installed, n)
	}
}

// InstallCatalog registers every catalog entry.
func (m *Memory) InstallCatalog(c *fonts.Catalog) {
	m.Install(c.Entries()...)
}

// AddNode creates a text node from an explicit run list. Runs must partition
// the text exactly.
func (m *Memory) AddNode(text string, runs []Run) (NodeID, error) {
	if err := checkPartition(len(text), runs); err != nil {
		return "", err
	}
	id := NodeID(uuid.NewString())
	m.nodes[id] = &node{text: text, runs: normalize(runs)}
	m.order = append(m.order, id)
	return id, nil
}

// AddUniformNode creates a node with a single run covering all of its text.
func (m *Memory) AddUniformNode(text string, font fonts.Name, size float64) NodeID {
	id, err := m.AddNode(text, []Run{{Start: 0, End: len(text), Font: font, Size: size}})
	if err != nil {
		// single full-length run always partitions
		panic(err)
	}
	return id
}

// SetReadError makes subsequent Segments calls for the node fail, emulating a
// host that throws on attribute access.
func (m *Memory) SetReadError(id NodeID, err error) {
	if n, ok := m.nodes[id]; ok {
		n.readErr = err
	}
}

func (m *Memory) TextNodes(_ context.Context) ([]NodeID, error) {
	out := make([]NodeID, len(m.order))
	copy(out, m.order)
	return out, nil
}

func (m *Memory) Segments(id NodeID) (Segmentation, error) {
	n, ok := m.nodes[id]
	if !ok {
		return Segmentation{}, fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	if n.readErr != nil {
		return Segmentation{}, n.readErr
	}
	runs := make([]Run, len(n.runs))
	copy(runs, n.runs)
	seg := Segmentation{Length: len(n.text), Runs: runs, UniformFont: true, UniformSize: true}
	for _, r := range runs[1:] {
		if r.Font.Key() != runs[0].Font.Key() {
			seg.UniformFont = false
		}
		if r.Size != runs[0].Size {
			seg.UniformSize = false
		}
	}
	return seg, nil
}

func (m *Memory) AvailableFonts(_ context.Context) ([]fonts.Name, error) {
	out := make([]fonts.Name, len(m.installed))
	copy(out, m.installed)
	return out, nil
}

func (m *Memory) LoadFont(ctx context.Context, font fonts.Name) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := font.Key()
	if _, ok := m.known[key]; !ok {
		return fmt.Errorf("%w: %s", ErrFontNotKnown, key)
	}
	m.loaded[key] = struct{}{}
	m.loadLog = append(m.loadLog, key)
	return nil
}

// LoadLog returns the sequence of successful load calls, for verifying
// load-before-write ordering.
func (m *Memory) LoadLog() []fonts.Key {
	out := make([]fonts.Key, len(m.loadLog))
	copy(out, m.loadLog)
	return out
}

func (m *Memory) ResetLoadLog() {
	m.loadLog = nil
}

func (m *Memory) SetRangeFont(id NodeID, start, end int, font fonts.Name) error {
	return m.rewrite(id, start, end, font.Key(), func(r Run) Run {
		r.Font = font
		return r
	})
}

func (m *Memory) SetRangeSize(id NodeID, start, end int, size float64) error {
	return m.rewrite(id, start, end, fonts.Key{}, func(r Run) Run {
		r.Size = size
		return r
	})
}

func (m *Memory) SetNodeFont(id NodeID, font fonts.Name) error {
	n, ok := m.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	return m.SetRangeFont(id, 0, len(n.text), font)
}

func (m *Memory) SetNodeSize(id NodeID, size float64) error {
	n, ok := m.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	return m.SetRangeSize(id, 0, len(n.text), size)
}

// rewrite applies fn to the part of the partition covered by [start, end).
// The host contract requires fonts touched by the write to be loaded: every
// font of a run overlapping the range, plus the font being applied when
// there is one.
func (m *Memory) rewrite(id NodeID, start, end int, applied fonts.Key, fn func(Run) Run) error {
	n, ok := m.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	if start < 0 || end > len(n.text) || start >= end {
		return fmt.Errorf("%w: [%d, %d) in node of length %d", ErrBadRange, start, end, len(n.text))
	}
	for _, r := range n.runs {
		if r.End <= start || r.Start >= end {
			continue
		}
		if _, ok := m.loaded[r.Font.Key()]; !ok {
			return fmt.Errorf("%w: %s", ErrFontNotLoaded, r.Font.Key())
		}
	}
	if applied != (fonts.Key{}) {
		if _, ok := m.loaded[applied]; !ok {
			return fmt.Errorf("%w: %s", ErrFontNotLoaded, applied)
		}
	}

	out := make([]Run, 0, len(n.runs)+2)
	for _, r := range n.runs {
		switch {
		case r.End <= start || r.Start >= end:
			out = append(out, r)
		default:
			if r.Start < start {
				head := r
				head.End = start
				out = append(out, head)
			}
			mid := r
			if mid.Start < start {
				mid.Start = start
			}
			if mid.End > end {
				mid.End = end
			}
			out = append(out, fn(mid))
			if r.End > end {
				tail := r
				tail.Start = end
				out = append(out, tail)
			}
		}
	}
	n.runs = normalize(out)
	return nil
}

func (m *Memory) SetSelection(ids []NodeID) error {
	for _, id := range ids {
		if _, ok := m.nodes[id]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownNode, id)
		}
	}
	m.selection = append([]NodeID(nil), ids...)
	m.notifySelection()
	return nil
}

func (m *Memory) Selection() []NodeID {
	return append([]NodeID(nil), m.selection...)
}

func (m *Memory) FocusOn(ids []NodeID) {
	m.focused = append([]NodeID(nil), ids...)
}

// Focused returns the last viewport focus request.
func (m *Memory) Focused() []NodeID {
	return append([]NodeID(nil), m.focused...)
}

func (m *Memory) OnSelectionChange(fn func(ids []NodeID)) (cancel func()) {
	sub := m.nextSub
	m.nextSub++
	m.listeners[sub] = fn
	return func() {
		delete(m.listeners, sub)
	}
}

func (m *Memory) notifySelection() {
	for _, fn := range m.listeners {
		fn(m.Selection())
	}
}

// checkPartition verifies runs are contiguous, non-overlapping and cover
// [0, length) exactly.
func checkPartition(length int, runs []Run) error {
	pos := 0
	for i, r := range runs {
		if r.Start != pos {
			return fmt.Errorf("run %d starts at %d, want %d", i, r.Start, pos)
		}
		if r.End <= r.Start {
			return fmt.Errorf("run %d is empty or inverted [%d, %d)", i, r.Start, r.End)
		}
		pos = r.End
	}
	if pos != length {
		return fmt.Errorf("runs cover [0, %d), node text has length %d", pos, length)
	}
	return nil
}

// normalize merges adjacent runs whose font and size are identical.
func normalize(runs []Run) []Run {
	if len(runs) == 0 {
		return runs
	}
	out := make([]Run, 1, len(runs))
	out[0] = runs[0]
	for _, r := range runs[1:] {
		last := &out[len(out)-1]
		if last.Font == r.Font && last.Size == r.Size {
			last.End = r.End
			continue
		}
		out = append(out, r)
	}
	return out
}
