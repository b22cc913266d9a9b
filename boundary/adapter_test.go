package boundary

import (
	"context"
	"testing"

	"fontwrench/document"
	"fontwrench/fonts"
)

var (
	helvRegular = fonts.Name{Family: "Helvetica", Style: "Regular"}
	robotoReg   = fonts.Name{Family: "Roboto", Style: "Regular"}
	arial       = fonts.Name{Family: "Arial", Style: "Regular"}
)

type capture struct {
	msgs []any
}

func (c *capture) emit(msg any) {
	c.msgs = append(c.msgs, msg)
}

func (c *capture) notifications() []Notification {
	var out []Notification
	for _, m := range c.msgs {
		if n, ok := m.(Notification); ok {
			out = append(out, n)
		}
	}
	return out
}

func boundaryPage() *document.Memory {
	m := document.NewMemory()
	m.Install(helvRegular, robotoReg, arial)
	m.AddUniformNode("one", helvRegular, 12)
	m.AddUniformNode("two", helvRegular, 12)
	m.AddUniformNode("other", arial, 12)
	return m
}

func TestHandleScan(t *testing.T) {
	var c capture
	a := New(boundaryPage(), nil, c.emit)

	if err := a.Handle(context.Background(), Request{Type: ReqScanLayers}); err != nil {
		t.Fatalf("Handle(scan-layers) error = %v", err)
	}
	if len(c.msgs) != 1 {
		t.Fatalf("got %d messages, want 1: %+v", len(c.msgs), c.msgs)
	}
	res, ok := c.msgs[0].(ScanResult)
	if !ok {
		t.Fatalf("message is %T, want ScanResult", c.msgs[0])
	}
	if res.Type != RespScanResult {
		t.Errorf("Type = %q, want %q", res.Type, RespScanResult)
	}
	if len(res.Fonts) != 2 {
		t.Errorf("Fonts = %v, want 2 families", res.Fonts)
	}
}

func TestHandleReplaceFontMessageSequence(t *testing.T) {
	var c capture
	a := New(boundaryPage(), nil, c.emit)

	err := a.Handle(context.Background(), Request{Type: ReqReplaceFont, OldFont: "Helvetica", NewFont: "Roboto"})
	if err != nil {
		t.Fatalf("Handle(replace-font) error = %v", err)
	}

	// two progress events, one notification, one fresh scan - in that order
	if len(c.msgs) != 4 {
		t.Fatalf("got %d messages, want 4: %+v", len(c.msgs), c.msgs)
	}
	for i := 0; i < 2; i++ {
		p, ok := c.msgs[i].(Progress)
		if !ok {
			t.Fatalf("message %d is %T, want Progress", i, c.msgs[i])
		}
		if p.Current != i+1 || p.Total != 2 || p.FontName != "Roboto" {
			t.Errorf("progress %d = %+v", i, p)
		}
	}
	n, ok := c.msgs[2].(Notification)
	if !ok {
		t.Fatalf("message 2 is %T, want Notification", c.msgs[2])
	}
	if n.Message != `Replaced "Helvetica" with "Roboto" in 2 layers` {
		t.Errorf("notification = %q", n.Message)
	}
	if n.Count != 2 || n.FontName != "Roboto" {
		t.Errorf("notification payload = %+v", n)
	}
	res, ok := c.msgs[3].(ScanResult)
	if !ok {
		t.Fatalf("message 3 is %T, want trailing ScanResult", c.msgs[3])
	}
	// the rescan reflects the mutation
	for _, f := range res.Fonts {
		if f == "Helvetica" {
			t.Error("rescan still lists Helvetica after full replacement")
		}
	}
}

func TestHandleReplaceFontUnavailable(t *testing.T) {
	var c capture
	a := New(boundaryPage(), nil, c.emit)

	err := a.Handle(context.Background(), Request{Type: ReqReplaceFont, OldFont: "Helvetica", NewFont: "Comic Sans"})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	ns := c.notifications()
	if len(ns) != 1 {
		t.Fatalf("got %d notifications, want 1: %+v", c.msgs, ns)
	}
	if ns[0].Message != `Font "Comic Sans" is not available on this system.` {
		t.Errorf("notification = %q", ns[0].Message)
	}
	// no scan follows a rejected replacement
	if len(c.msgs) != 1 {
		t.Errorf("got %d messages, want notification only: %+v", len(c.msgs), c.msgs)
	}
}

func TestHandleReplaceFontNoMatches(t *testing.T) {
	var c capture
	a := New(boundaryPage(), nil, c.emit)

	err := a.Handle(context.Background(), Request{Type: ReqReplaceFont, OldFont: "Georgia", NewFont: "Roboto"})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	ns := c.notifications()
	if len(ns) != 1 || ns[0].Message != `No layers use font "Georgia"` {
		t.Fatalf("notifications = %+v", ns)
	}
	// replace-font always rescans, even when nothing changed
	if _, ok := c.msgs[len(c.msgs)-1].(ScanResult); !ok {
		t.Errorf("last message is %T, want ScanResult", c.msgs[len(c.msgs)-1])
	}
}

func TestHandleReplaceWeight(t *testing.T) {
	m := document.NewMemory()
	m.Install(helvRegular, fonts.Name{Family: "Helvetica", Style: "Bold"})
	m.AddUniformNode("text", helvRegular, 12)

	var c capture
	a := New(m, nil, c.emit)

	err := a.Handle(context.Background(), Request{Type: ReqReplaceFontWeight, Family: "Helvetica", OldStyle: "Regular", NewStyle: "Bold"})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	ns := c.notifications()
	if len(ns) != 1 || ns[0].Message != `Replaced "Helvetica Regular" with "Helvetica Bold" in 1 layer` {
		t.Fatalf("notifications = %+v", ns)
	}
	if _, ok := c.msgs[len(c.msgs)-1].(ScanResult); !ok {
		t.Errorf("scan result missing after successful weight replacement")
	}
}

func TestHandleReplaceWeightNoMatchesSkipsScan(t *testing.T) {
	var c capture
	a := New(boundaryPage(), nil, c.emit)

	err := a.Handle(context.Background(), Request{Type: ReqReplaceFontWeight, Family: "Helvetica", OldStyle: "Black", NewStyle: "Bold"})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(c.msgs) != 1 {
		t.Fatalf("got %d messages, want notification only: %+v", len(c.msgs), c.msgs)
	}
	n := c.msgs[0].(Notification)
	if n.Message != `No layers use font "Helvetica Black"` {
		t.Errorf("notification = %q", n.Message)
	}
}

func TestHandleReplaceSize(t *testing.T) {
	var c capture
	a := New(boundaryPage(), nil, c.emit)

	err := a.Handle(context.Background(), Request{Type: ReqReplaceFontSize, Family: "Helvetica", OldSize: 12, NewSize: 16.5})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	ns := c.notifications()
	if len(ns) != 1 || ns[0].Message != `Changed "Helvetica" size 12 to 16.5 in 2 layers` {
		t.Fatalf("notifications = %+v", ns)
	}
}

func TestHandleSelect(t *testing.T) {
	m := boundaryPage()
	var c capture
	a := New(m, nil, c.emit)

	err := a.Handle(context.Background(), Request{Type: ReqSelectFont, Font: "Helvetica"})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	ns := c.notifications()
	if len(ns) != 1 || ns[0].Message != `Selected 2 layers using "Helvetica"` {
		t.Fatalf("notifications = %+v", ns)
	}
	if len(m.Selection()) != 2 {
		t.Errorf("selection = %v, want 2 nodes", m.Selection())
	}
}

func TestHandleSelectNoMatches(t *testing.T) {
	var c capture
	a := New(boundaryPage(), nil, c.emit)

	err := a.Handle(context.Background(), Request{Type: ReqSelectFont, Font: "Comic Sans"})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	ns := c.notifications()
	if len(ns) != 1 || ns[0].Message != "No layers found on this page." {
		t.Fatalf("notifications = %+v", ns)
	}
}

func TestHandleSelectBlankDroppedSilently(t *testing.T) {
	var c capture
	a := New(boundaryPage(), nil, c.emit)

	if err := a.Handle(context.Background(), Request{Type: ReqSelectFont, Font: " "}); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(c.msgs) != 0 {
		t.Errorf("invalid request produced messages: %+v", c.msgs)
	}
}

func TestSubscribeEmitsDeselect(t *testing.T) {
	m := boundaryPage()
	var c capture
	a := New(m, nil, c.emit)

	cancel := a.Subscribe()
	defer cancel()

	if err := a.Handle(context.Background(), Request{Type: ReqSelectFont, Font: "Helvetica"}); err != nil {
		t.Fatalf("Handle(select-font) error = %v", err)
	}
	c.msgs = nil

	// user clears the selection in the editor
	if err := m.SetSelection(nil); err != nil {
		t.Fatalf("SetSelection() error = %v", err)
	}
	if len(c.msgs) != 1 {
		t.Fatalf("got %d messages, want 1 deselect: %+v", len(c.msgs), c.msgs)
	}
	d, ok := c.msgs[0].(Deselect)
	if !ok || d.Type != RespDeselectFont {
		t.Errorf("message = %+v, want deselect-font", c.msgs[0])
	}
}
