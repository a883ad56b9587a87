package highlight

import (
	"math"
	"strings"

	"github.com/hazyhaar/slotdiff/pagedom"
	"github.com/hazyhaar/slotdiff/schedule"
)

// Method names how a difference was matched back to an element.
type Method string

const (
	ByGeometry Method = "geometry"
	ByPath     Method = "path"
	ByText     Method = "text"
	Unresolved Method = ""
)

// SizeTolerance is how far, in px, a geometry hit's width and height may
// drift from the recorded block and still count as the same element.
const SizeTolerance = 10

// Relocate finds the element a difference refers to. It tries, in order,
// the topmost element below the page root at the recorded point whose size
// matches the recorded one, the recorded structural path, and the first element whose
// trimmed text equals the new value.
func Relocate(doc *pagedom.Document, d schedule.Difference) (*pagedom.Node, Method) {
	if d.X != nil && d.Y != nil {
		for _, n := range doc.ElementsFromPoint(*d.X, *d.Y) {
			if n.Tag != "html" && n.Tag != "body" && sameSize(n.Box, d) {
				return n, ByGeometry
			}
		}
	}
	if d.Element != "" {
		// Stored paths may not parse as selectors; fall through.
		if n, err := doc.QuerySelector(d.Element); err == nil && n != nil && !n.IsOverlay() {
			return n, ByPath
		}
	}
	if want := d.New(); want != "" {
		for _, n := range doc.All() {
			if !n.IsOverlay() && strings.TrimSpace(n.Text()) == want {
				return n, ByText
			}
		}
	}
	return nil, Unresolved
}

// sameSize accepts any hit when the difference carries no recorded size.
func sameSize(b pagedom.Rect, d schedule.Difference) bool {
	if d.Width != nil && math.Abs(b.Width-*d.Width) > SizeTolerance {
		return false
	}
	if d.Height != nil && math.Abs(b.Height-*d.Height) > SizeTolerance {
		return false
	}
	return true
}
