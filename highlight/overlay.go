package highlight

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hazyhaar/slotdiff/pagedom"
	"github.com/hazyhaar/slotdiff/schedule"
)

// RGB is an overlay base colour.
type RGB struct{ R, G, B uint8 }

// Alpha renders the colour with the given opacity.
func (c RGB) Alpha(a float64) string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(a, 'f', -1, 64))
}

var (
	Green  = RGB{76, 175, 80}
	Red    = RGB{244, 67, 54}
	Orange = RGB{255, 152, 0}
	Blue   = RGB{33, 150, 243}
)

// ColorFor maps a difference type to its overlay colour.
func ColorFor(t schedule.DiffType) RGB {
	switch t {
	case schedule.Added:
		return Green
	case schedule.Removed:
		return Red
	case schedule.Changed:
		return Orange
	}
	return Blue
}

// PulseKeyframes defines the animation overlay boxes run.
const PulseKeyframes = `@keyframes pulse { 0%, 100% { opacity: 1; } 50% { opacity: 0.5; } }`

// Overlay is one marker: a box around the target element and a label
// above it. Coordinates are viewport px.
type Overlay struct {
	Type   schedule.DiffType `json:"type"`
	Key    string            `json:"key"`
	Target pagedom.Rect      `json:"target"`
	Box    pagedom.Rect      `json:"box"`
	Label  string            `json:"label"`
	LabelX float64           `json:"labelX"`
	LabelY float64           `json:"labelY"`
	Color  RGB               `json:"-"`

	BoxStyle   string `json:"boxStyle"`
	LabelStyle string `json:"labelStyle"`
}

// NewOverlay lays out the marker for an element rectangle.
func NewOverlay(t schedule.DiffType, key, label string, target pagedom.Rect) Overlay {
	o := Overlay{
		Type:   t,
		Key:    key,
		Target: target,
		Box: pagedom.Rect{
			X:      target.X - 2,
			Y:      target.Y - 2,
			Width:  target.Width + 4,
			Height: target.Height + 4,
		},
		Label:  label,
		LabelX: target.X,
		LabelY: target.Y - 24,
		Color:  ColorFor(t),
	}
	o.BoxStyle = o.boxCSS()
	o.LabelStyle = o.labelCSS()
	return o
}

// Fill is the translucent box background.
func (o Overlay) Fill() string { return o.Color.Alpha(0.5) }

// Border is the opaque box border colour.
func (o Overlay) Border() string { return o.Color.Alpha(1) }

// LabelBackground is the label fill.
func (o Overlay) LabelBackground() string { return o.Color.Alpha(0.9) }

func pxs(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) + "px" }

func (o Overlay) boxCSS() string {
	return strings.Join([]string{
		"position: fixed",
		"left: " + pxs(o.Box.X),
		"top: " + pxs(o.Box.Y),
		"width: " + pxs(o.Box.Width),
		"height: " + pxs(o.Box.Height),
		"background: " + o.Fill(),
		"border: 3px solid " + o.Border(),
		"border-radius: 4px",
		"pointer-events: none",
		"z-index: 999999",
		"animation: pulse 1.5s infinite",
	}, "; ") + ";"
}

func (o Overlay) labelCSS() string {
	return strings.Join([]string{
		"position: fixed",
		"left: " + pxs(o.LabelX),
		"top: " + pxs(o.LabelY),
		"background: " + o.LabelBackground(),
		"color: white",
		"padding: 2px 6px",
		"font-size: 11px",
		"border-radius: 3px",
		"z-index: 1000000",
		"pointer-events: none",
		"white-space: nowrap",
	}, "; ") + ";"
}
