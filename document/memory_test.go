package document

import (
	"context"
	"errors"
	"testing"

	"fontwrench/fonts"
)

var (
	helvRegular = fonts.Name{Family: "Helvetica", Style: "Regular"}
	helvBold    = fonts.Name{Family: "Helvetica", Style: "Bold"}
	arial       = fonts.Name{Family: "Arial", Style: "Regular"}
)

func loadedMemory(t *testing.T, names ...fonts.Name) *Memory {
	t.Helper()
	m := NewMemory()
	m.Install(names...)
	for _, n := range names {
		if err := m.LoadFont(context.Background(), n); err != nil {
			t.Fatalf("LoadFont(%s) error = %v", n, err)
		}
	}
	m.ResetLoadLog()
	return m
}

// checkNodePartition verifies the run partition invariant: contiguous,
// non-overlapping, covering the node exactly.
func checkNodePartition(t *testing.T, m *Memory, id NodeID) {
	t.Helper()
	seg, err := m.Segments(id)
	if err != nil {
		t.Fatalf("Segments() error = %v", err)
	}
	pos := 0
	for i, r := range seg.Runs {
		if r.Start != pos {
			t.Fatalf("run %d starts at %d, want %d", i, r.Start, pos)
		}
		if r.End <= r.Start {
			t.Fatalf("run %d is empty: [%d, %d)", i, r.Start, r.End)
		}
		pos = r.End
	}
	if pos != seg.Length {
		t.Fatalf("runs cover [0, %d), node length is %d", pos, seg.Length)
	}
}

func TestAddNodeRejectsBrokenPartition(t *testing.T) {
	m := NewMemory()
	cases := [][]Run{
		{{Start: 1, End: 5, Font: helvRegular, Size: 12}},                                             // gap at start
		{{Start: 0, End: 2, Font: helvRegular, Size: 12}, {Start: 3, End: 5, Font: arial, Size: 12}},  // hole
		{{Start: 0, End: 3, Font: helvRegular, Size: 12}, {Start: 2, End: 5, Font: arial, Size: 12}},  // overlap
		{{Start: 0, End: 4, Font: helvRegular, Size: 12}},                                             // short
	}
	for i, runs := range cases {
		if _, err := m.AddNode("hello", runs); err == nil {
			t.Errorf("case %d: AddNode() accepted broken partition", i)
		}
	}
}

func TestRangeWriteSplitsRuns(t *testing.T) {
	m := loadedMemory(t, helvRegular, helvBold)
	id := m.AddUniformNode("hello worl", helvRegular, 12)

	if err := m.SetRangeFont(id, 2, 5, helvBold); err != nil {
		t.Fatalf("SetRangeFont() error = %v", err)
	}
	checkNodePartition(t, m, id)

	seg, _ := m.Segments(id)
	if len(seg.Runs) != 3 {
		t.Fatalf("got %d runs, want 3: %+v", len(seg.Runs), seg.Runs)
	}
	if seg.Runs[1].Font != helvBold || seg.Runs[1].Start != 2 || seg.Runs[1].End != 5 {
		t.Errorf("middle run = %+v, want Bold [2, 5)", seg.Runs[1])
	}
	if seg.UniformFont {
		t.Error("UniformFont = true for mixed node")
	}
	if !seg.UniformSize {
		t.Error("UniformSize = false, size was not touched")
	}
}

func TestRangeWriteMergesAdjacentEqualRuns(t *testing.T) {
	m := loadedMemory(t, helvRegular, helvBold)
	id := m.AddUniformNode("hello worl", helvRegular, 12)

	if err := m.SetRangeFont(id, 2, 5, helvBold); err != nil {
		t.Fatalf("SetRangeFont() error = %v", err)
	}
	if err := m.SetRangeFont(id, 2, 5, helvRegular); err != nil {
		t.Fatalf("SetRangeFont() back error = %v", err)
	}
	checkNodePartition(t, m, id)

	seg, _ := m.Segments(id)
	if len(seg.Runs) != 1 {
		t.Fatalf("got %d runs after revert, want 1: %+v", len(seg.Runs), seg.Runs)
	}
	if !seg.Uniform() {
		t.Error("node is not uniform after revert")
	}
}

func TestWriteRequiresLoadedFonts(t *testing.T) {
	m := NewMemory()
	m.Install(helvRegular, helvBold)
	id := m.AddUniformNode("hello", helvRegular, 12)

	// nothing loaded yet
	if err := m.SetRangeFont(id, 0, 5, helvBold); !errors.Is(err, ErrFontNotLoaded) {
		t.Fatalf("SetRangeFont() error = %v, want ErrFontNotLoaded", err)
	}

	// replacement loaded, but the font already on the range is not
	if err := m.LoadFont(context.Background(), helvBold); err != nil {
		t.Fatalf("LoadFont() error = %v", err)
	}
	if err := m.SetRangeFont(id, 0, 5, helvBold); !errors.Is(err, ErrFontNotLoaded) {
		t.Fatalf("SetRangeFont() error = %v, want ErrFontNotLoaded for existing run font", err)
	}

	if err := m.LoadFont(context.Background(), helvRegular); err != nil {
		t.Fatalf("LoadFont() error = %v", err)
	}
	if err := m.SetRangeFont(id, 0, 5, helvBold); err != nil {
		t.Fatalf("SetRangeFont() after loads error = %v", err)
	}
}

func TestLoadFontUnknownFamily(t *testing.T) {
	m := NewMemory()
	if err := m.LoadFont(context.Background(), arial); !errors.Is(err, ErrFontNotKnown) {
		t.Errorf("LoadFont() error = %v, want ErrFontNotKnown", err)
	}
}

func TestSegmentsReadError(t *testing.T) {
	m := loadedMemory(t, helvRegular)
	id := m.AddUniformNode("hello", helvRegular, 12)

	boom := errors.New("host refused")
	m.SetReadError(id, boom)
	if _, err := m.Segments(id); !errors.Is(err, boom) {
		t.Errorf("Segments() error = %v, want injected read error", err)
	}
}

func TestBadRangeRejected(t *testing.T) {
	m := loadedMemory(t, helvRegular, helvBold)
	id := m.AddUniformNode("hello", helvRegular, 12)

	for _, r := range [][2]int{{-1, 3}, {0, 6}, {3, 3}, {4, 2}} {
		if err := m.SetRangeFont(id, r[0], r[1], helvBold); !errors.Is(err, ErrBadRange) {
			t.Errorf("SetRangeFont(%d, %d) error = %v, want ErrBadRange", r[0], r[1], err)
		}
	}
}

func TestSelectionNotifications(t *testing.T) {
	m := loadedMemory(t, helvRegular)
	id := m.AddUniformNode("hello", helvRegular, 12)

	var got [][]NodeID
	cancel := m.OnSelectionChange(func(ids []NodeID) {
		got = append(got, ids)
	})

	if err := m.SetSelection([]NodeID{id}); err != nil {
		t.Fatalf("SetSelection() error = %v", err)
	}
	if len(got) != 1 || len(got[0]) != 1 || got[0][0] != id {
		t.Fatalf("listener saw %+v, want one notification with the node", got)
	}

	cancel()
	if err := m.SetSelection(nil); err != nil {
		t.Fatalf("SetSelection(nil) error = %v", err)
	}
	if len(got) != 1 {
		t.Error("listener fired after cancel")
	}
}

func TestSetSelectionUnknownNode(t *testing.T) {
	m := NewMemory()
	if err := m.SetSelection([]NodeID{"nope"}); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("SetSelection() error = %v, want ErrUnknownNode", err)
	}
}
