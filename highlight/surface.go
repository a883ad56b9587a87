package highlight

import (
	"context"

	"github.com/mattn/go-runewidth"

	"github.com/hazyhaar/slotdiff/pagedom"
)

// overlaySelector matches both marker kinds.
const overlaySelector = "." + pagedom.OverlayClass + ", ." + pagedom.LabelClass

// DOMSurface paints overlays as elements appended to a Document's body.
type DOMSurface struct {
	Doc *pagedom.Document
}

// Clear removes every overlay and label element.
func (s DOMSurface) Clear(ctx context.Context) error {
	nodes, err := s.Doc.QuerySelectorAll(overlaySelector)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		s.Doc.Remove(n)
	}
	return nil
}

// Draw appends a box and a label element per overlay.
func (s DOMSurface) Draw(ctx context.Context, overlays []Overlay) error {
	for _, o := range overlays {
		box := pagedom.NewElement("div", map[string]string{
			"class":          pagedom.OverlayClass,
			"data-diff-type": string(o.Type),
			"style":          o.BoxStyle,
		})
		box.Box = o.Box
		box.Background = o.Fill()

		label := pagedom.NewElement("div", map[string]string{
			"class": pagedom.LabelClass,
			"style": o.LabelStyle,
		})
		label.SetText(o.Label)
		label.Background = o.LabelBackground()
		label.Box = pagedom.Rect{
			X:      o.LabelX,
			Y:      o.LabelY,
			Width:  float64(runewidth.StringWidth(o.Label))*6 + 12,
			Height: 17,
		}

		s.Doc.Append(nil, box)
		s.Doc.Append(nil, label)
	}
	return nil
}

// Markers returns the overlay and label elements currently in doc.
func Markers(doc *pagedom.Document) (boxes, labels []*pagedom.Node) {
	for _, n := range doc.All() {
		switch {
		case n.HasClass(pagedom.OverlayClass):
			boxes = append(boxes, n)
		case n.HasClass(pagedom.LabelClass):
			labels = append(labels, n)
		}
	}
	return boxes, labels
}
