package boundary

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"fontwrench/document"
	"fontwrench/mutate"
	"fontwrench/scan"
	"fontwrench/selection"
)

// Emitter delivers one response message to the transport.
type Emitter func(msg any)

// Adapter dispatches requests one at a time. The transport is expected to
// serialize requests - no guard against overlapping operations exists here
// or below.
type Adapter struct {
	scanner *scan.Scanner
	engine  *mutate.Engine
	tracker *selection.Tracker
	host    document.Host
	emit    Emitter
	log     *zap.Logger
}

func New(host document.Host, log *zap.Logger, emit Emitter) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{
		scanner: scan.New(host, log),
		engine:  mutate.New(host, log),
		tracker: selection.New(host, log),
		host:    host,
		emit:    emit,
		log:     log.Named("boundary"),
	}
}

// Tracker exposes the selection tracker for state inspection.
func (a *Adapter) Tracker() *selection.Tracker {
	return a.tracker
}

// Subscribe wires host selection change notifications into the tracker,
// emitting a deselect message whenever the font filter gets invalidated.
// The returned function cancels the subscription.
func (a *Adapter) Subscribe() (cancel func()) {
	return a.host.OnSelectionChange(func(ids []document.NodeID) {
		if a.tracker.SelectionChanged(ids) {
			a.emit(Deselect{Type: RespDeselectFont})
		}
	})
}

// Handle processes one request to completion, emitting whatever responses it
// produces. Invalid requests are dropped silently (debug logged), they are
// caller contract violations rather than user errors.
func (a *Adapter) Handle(ctx context.Context, req Request) error {
	switch req.Type {
	case ReqScanLayers:
		return a.handleScan(ctx)
	case ReqSelectFont:
		return a.handleSelect(ctx, req)
	case ReqReplaceFont:
		return a.handleReplaceFont(ctx, req)
	case ReqReplaceFontWeight:
		return a.handleReplaceWeight(ctx, req)
	case ReqReplaceFontSize:
		return a.handleReplaceSize(ctx, req)
	default:
		a.log.Warn("Dropping unknown request type", zap.String("type", req.Type))
		return nil
	}
}

func (a *Adapter) handleScan(ctx context.Context) error {
	res, err := a.scanner.Scan(ctx)
	if err != nil {
		return err
	}
	a.emit(newScanResult(res))
	return nil
}

func (a *Adapter) handleSelect(ctx context.Context, req Request) error {
	count, err := a.tracker.SelectByFamily(ctx, req.Font)
	if errors.Is(err, selection.ErrInvalidRequest) {
		a.log.Debug("Dropping invalid select request")
		return nil
	}
	if err != nil {
		return err
	}
	if count > 0 {
		a.emit(newNotification(fmt.Sprintf("Selected %d %s using %q", count, layers(count), req.Font), count, req.Font))
	} else {
		a.emit(newNotification("No layers found on this page.", 0, req.Font))
	}
	return nil
}

func (a *Adapter) handleReplaceFont(ctx context.Context, req Request) error {
	summary, err := a.engine.ReplaceFamily(ctx, req.OldFont, req.NewFont, func(p mutate.Progress) {
		a.emit(Progress{Type: RespProgress, Current: p.Current, Total: p.Total, FontName: req.NewFont})
	})
	if errors.Is(err, mutate.ErrInvalidRequest) {
		a.log.Debug("Dropping invalid replace request")
		return nil
	}
	if errors.Is(err, mutate.ErrFamilyNotAvailable) {
		a.emit(newNotification(fmt.Sprintf("Font %q is not available on this system.", req.NewFont), 0, req.NewFont))
		return nil
	}
	if err != nil {
		return err
	}

	if summary.Updated > 0 {
		a.emit(newNotification(
			fmt.Sprintf("Replaced %q with %q in %d %s", req.OldFont, req.NewFont, summary.Updated, layers(summary.Updated)),
			summary.Updated, req.NewFont))
	} else {
		a.emit(newNotification(fmt.Sprintf("No layers use font %q", req.OldFont), 0, req.NewFont))
	}
	return a.handleScan(ctx)
}

func (a *Adapter) handleReplaceWeight(ctx context.Context, req Request) error {
	summary, err := a.engine.ReplaceStyle(ctx, req.Family, req.OldStyle, req.NewStyle, nil)
	if errors.Is(err, mutate.ErrInvalidRequest) {
		a.log.Debug("Dropping invalid replace-weight request")
		return nil
	}
	if err != nil {
		return err
	}

	oldName := req.Family + " " + req.OldStyle
	if summary.Updated > 0 {
		a.emit(newNotification(
			fmt.Sprintf("Replaced %q with %q in %d %s", oldName, summary.Target, summary.Updated, layers(summary.Updated)),
			summary.Updated, summary.Target))
		return a.handleScan(ctx)
	}
	a.emit(newNotification(fmt.Sprintf("No layers use font %q", oldName), 0, summary.Target))
	return nil
}

func (a *Adapter) handleReplaceSize(ctx context.Context, req Request) error {
	summary, err := a.engine.ReplaceSize(ctx, req.Family, req.OldSize, req.NewSize, nil)
	if errors.Is(err, mutate.ErrInvalidRequest) {
		a.log.Debug("Dropping invalid replace-size request")
		return nil
	}
	if err != nil {
		return err
	}

	if summary.Updated > 0 {
		a.emit(newNotification(
			fmt.Sprintf("Changed %q size %s to %s in %d %s",
				req.Family, fmtSize(req.OldSize), fmtSize(req.NewSize), summary.Updated, layers(summary.Updated)),
			summary.Updated, summary.Target))
		return a.handleScan(ctx)
	}
	a.emit(newNotification(
		fmt.Sprintf("No layers use font %q at size %s", req.Family, fmtSize(req.OldSize)),
		0, summary.Target))
	return nil
}

func layers(count int) string {
	if count == 1 {
		return "layer"
	}
	return "layers"
}

func fmtSize(size float64) string {
	return strconv.FormatFloat(size, 'f', -1, 64)
}
