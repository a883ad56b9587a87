// Package pagedom is the page model slotdiff works against: an element tree
// carrying what a browser would report for each element (tag, attributes,
// innerText, computed background colour, bounding rectangle).
//
// A Document is either parsed from static HTML (Parse) or rebuilt from a
// capture of a live page (FromCapture). Extraction, diff re-location and
// highlighting only ever see this model, never a browser.
package pagedom

import "strings"

// Overlay markers drawn by the highlighter. Elements carrying these classes
// are never treated as page content.
const (
	OverlayClass = "schedule-diff-highlight"
	LabelClass   = "schedule-diff-label"
)

// Transparent is the computed value of an unset background colour.
const Transparent = "rgba(0, 0, 0, 0)"

// Rect is a bounding rectangle in page (viewport) coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether the point lies inside a non-empty rect.
// Left and top edges are inclusive, right and bottom exclusive.
func (r Rect) Contains(x, y float64) bool {
	if r.Width <= 0 || r.Height <= 0 {
		return false
	}
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Node is one element.
type Node struct {
	Tag        string            // lower-case tag name; "" marks a non-element
	Attrs      map[string]string // lower-case keys
	Background string            // computed background-color
	Box        Rect              // bounding client rect

	text     string
	parent   *Node
	children []*Node
}

// NewElement creates a detached element.
func NewElement(tag string, attrs map[string]string) *Node {
	if attrs == nil {
		attrs = make(map[string]string)
	}
	return &Node{Tag: strings.ToLower(tag), Attrs: attrs, Background: Transparent}
}

// Parent returns the parent element, or nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the element children in document order.
func (n *Node) Children() []*Node { return n.children }

// Text returns the element's visible text as a browser's innerText would,
// untrimmed.
func (n *Node) Text() string { return n.text }

// SetText replaces the element's text.
func (n *Node) SetText(s string) { n.text = s }

// Attr returns the attribute value, or "".
func (n *Node) Attr(key string) string {
	if n.Attrs == nil {
		return ""
	}
	return n.Attrs[key]
}

// HasAttr reports whether the attribute is present.
func (n *Node) HasAttr(key string) bool {
	if n.Attrs == nil {
		return false
	}
	_, ok := n.Attrs[key]
	return ok
}

// ID returns the id attribute.
func (n *Node) ID() string { return n.Attr("id") }

// HasClass reports whether class is one of the element's classes.
func (n *Node) HasClass(class string) bool {
	for _, c := range strings.Fields(n.Attr("class")) {
		if c == class {
			return true
		}
	}
	return false
}

// IsOverlay reports whether the element is a highlighter marker.
func (n *Node) IsOverlay() bool {
	return n.HasClass(OverlayClass) || n.HasClass(LabelClass)
}

// typeIndex returns the 1-based position of n among its siblings with the
// same tag.
func (n *Node) typeIndex() int {
	if n.parent == nil {
		return 1
	}
	idx := 1
	for _, sib := range n.parent.children {
		if sib == n {
			break
		}
		if sib.Tag == n.Tag {
			idx++
		}
	}
	return idx
}

// typeIndexFromEnd is typeIndex counted from the last sibling.
func (n *Node) typeIndexFromEnd() int {
	if n.parent == nil {
		return 1
	}
	idx := 1
	kids := n.parent.children
	for i := len(kids) - 1; i >= 0; i-- {
		if kids[i] == n {
			break
		}
		if kids[i].Tag == n.Tag {
			idx++
		}
	}
	return idx
}

// childIndex returns the 1-based position of n among all its siblings.
func (n *Node) childIndex() int {
	if n.parent == nil {
		return 1
	}
	for i, sib := range n.parent.children {
		if sib == n {
			return i + 1
		}
	}
	return 1
}

func (n *Node) siblingCount() int {
	if n.parent == nil {
		return 1
	}
	return len(n.parent.children)
}

// descendants appends the subtree below n (excluding n) in document order.
func (n *Node) descendants(out []*Node) []*Node {
	for _, c := range n.children {
		out = append(out, c)
		out = c.descendants(out)
	}
	return out
}
