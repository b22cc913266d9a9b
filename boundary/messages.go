// Package boundary translates transport messages into calls on the scanner,
// mutation engine and selection tracker, and streams results and progress
// back out. It owns no logic of its own beyond message composition and
// request validation hand-off.
package boundary

import (
	"fontwrench/scan"
)

// Request types accepted from the panel side.
const (
	ReqScanLayers        = "scan-layers"
	ReqSelectFont        = "select-font"
	ReqReplaceFont       = "replace-font"
	ReqReplaceFontWeight = "replace-font-weight"
	ReqReplaceFontSize   = "replace-font-size"
)

// Response types emitted back.
const (
	RespScanResult   = "scan-result"
	RespNotification = "notification"
	RespProgress     = "replacement-progress"
	RespDeselectFont = "deselect-font"
)

// Request is the union of all request payloads, discriminated by Type.
// Unused fields stay at their zero values.
type Request struct {
	Type     string  `json:"type"`
	Font     string  `json:"font,omitempty"`
	OldFont  string  `json:"oldFont,omitempty"`
	NewFont  string  `json:"newFont,omitempty"`
	Family   string  `json:"family,omitempty"`
	OldStyle string  `json:"oldStyle,omitempty"`
	NewStyle string  `json:"newStyle,omitempty"`
	OldSize  float64 `json:"oldSize,omitempty"`
	NewSize  float64 `json:"newSize,omitempty"`
}

// ScanResult wraps one scan snapshot for the wire.
type ScanResult struct {
	Type string `json:"type"`
	*scan.Result
}

// Notification is the single user-facing outcome message every mutation or
// selection operation ends with.
type Notification struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Count    int    `json:"count"`
	FontName string `json:"fontName"`
}

// Progress is emitted after each node a replacement finishes processing.
type Progress struct {
	Type     string `json:"type"`
	Current  int    `json:"current"`
	Total    int    `json:"total"`
	FontName string `json:"fontName"`
}

// Deselect tells the panel the font filter is no longer active.
type Deselect struct {
	Type string `json:"type"`
}

func newScanResult(res *scan.Result) ScanResult {
	return ScanResult{Type: RespScanResult, Result: res}
}

func newNotification(message string, count int, fontName string) Notification {
	return Notification{Type: RespNotification, Message: message, Count: count, FontName: fontName}
}
