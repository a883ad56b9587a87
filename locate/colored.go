package locate

import (
	"math"
	"strings"
	"unicode/utf16"

	"github.com/hazyhaar/slotdiff/pagedom"
)

// Size window for a colored block, in px (exclusive bounds).
const (
	minBlockWidth  = 20
	maxBlockWidth  = 500
	minBlockHeight = 10
	maxBlockHeight = 100
	maxBlockText   = 50
)

// Colored is an element that looks like a schedule block: a non-background
// fill, a block-sized box and a short label.
type Colored struct {
	Node   *pagedom.Node
	Text   string
	Color  string
	X      float64 // rounded to whole px
	Y      float64
	Width  float64
	Height float64
}

// ColoredElements scans every element in document order.
func ColoredElements(doc *pagedom.Document) []Colored {
	var out []Colored
	for _, n := range doc.All() {
		if n.IsOverlay() || !isFilled(n.Background) {
			continue
		}
		b := n.Box
		if b.Width <= minBlockWidth || b.Height <= minBlockHeight ||
			b.Width >= maxBlockWidth || b.Height >= maxBlockHeight {
			continue
		}
		text := strings.TrimSpace(n.Text())
		if text == "" || utf16Len(text) >= maxBlockText {
			continue
		}
		out = append(out, Colored{
			Node:   n,
			Text:   text,
			Color:  n.Background,
			X:      round(b.X),
			Y:      round(b.Y),
			Width:  round(b.Width),
			Height: round(b.Height),
		})
	}
	return out
}

// isFilled rejects fully transparent fills of any hue and opaque white.
func isFilled(bg string) bool {
	if bg == "" {
		return false
	}
	c, ok := pagedom.ParseColor(bg)
	if !ok {
		return bg != "transparent"
	}
	if c.A <= 0 {
		return false
	}
	return !(c.A >= 1 && c.R == 255 && c.G == 255 && c.B == 255)
}

// utf16Len counts UTF-16 code units, the unit a page script's string
// length uses.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// round rounds half up, like Math.round.
func round(v float64) float64 {
	return math.Floor(v + 0.5)
}
