package pagedom

import (
	"fmt"
	"strings"
)

// CapturedNode is one element as reported by the in-page capture script.
// Nodes arrive in document order; Parent indexes an earlier node or is -1.
type CapturedNode struct {
	Parent     int               `json:"parent"`
	Tag        string            `json:"tag"`
	Attrs      map[string]string `json:"attrs,omitempty"`
	Text       string            `json:"text,omitempty"`
	Background string            `json:"bg,omitempty"`
	X          float64           `json:"x"`
	Y          float64           `json:"y"`
	Width      float64           `json:"w"`
	Height     float64           `json:"h"`
}

// Capture is the payload of the in-page capture script.
type Capture struct {
	URL   string         `json:"url"`
	Nodes []CapturedNode `json:"nodes"`
}

// FromCapture rebuilds a Document from a live-page capture.
func FromCapture(c Capture) (*Document, error) {
	d := &Document{URL: c.URL, dirty: true}
	nodes := make([]*Node, len(c.Nodes))
	for i, cn := range c.Nodes {
		n := &Node{
			Tag:        strings.ToLower(cn.Tag),
			Attrs:      make(map[string]string, len(cn.Attrs)),
			Background: strings.TrimSpace(cn.Background),
			Box:        Rect{X: cn.X, Y: cn.Y, Width: cn.Width, Height: cn.Height},
			text:       cn.Text,
		}
		for k, v := range cn.Attrs {
			n.Attrs[strings.ToLower(k)] = v
		}
		if n.Background == "" {
			n.Background = Transparent
		}
		nodes[i] = n
		switch {
		case cn.Parent < 0:
			d.roots = append(d.roots, n)
		case cn.Parent >= i:
			return nil, fmt.Errorf("pagedom: capture: node %d references parent %d out of order", i, cn.Parent)
		default:
			p := nodes[cn.Parent]
			n.parent = p
			p.children = append(p.children, n)
		}
	}
	return d, nil
}
