package pagedom

// Document is an element tree plus the page URL.
type Document struct {
	URL string

	roots []*Node
	order []*Node
	dirty bool
}

// NewDocument wraps a root element.
func NewDocument(url string, root *Node) *Document {
	d := &Document{URL: url, dirty: true}
	if root != nil {
		d.roots = []*Node{root}
	}
	return d
}

// Root returns the document element, or nil for an empty document.
func (d *Document) Root() *Node {
	if len(d.roots) == 0 {
		return nil
	}
	return d.roots[0]
}

// All returns every element in document order. The slice is shared until
// the next mutation; callers must not modify it.
func (d *Document) All() []*Node {
	if d.dirty || d.order == nil {
		order := make([]*Node, 0, len(d.order))
		for _, r := range d.roots {
			order = append(order, r)
			order = r.descendants(order)
		}
		d.order = order
		d.dirty = false
	}
	return d.order
}

// Body returns the body element, falling back to the root.
func (d *Document) Body() *Node {
	for _, n := range d.All() {
		if n.Tag == "body" {
			return n
		}
	}
	return d.Root()
}

// Append attaches child as the last child of parent. A nil parent appends
// to the body.
func (d *Document) Append(parent, child *Node) {
	if parent == nil {
		parent = d.Body()
	}
	if parent == nil {
		d.roots = append(d.roots, child)
		d.dirty = true
		return
	}
	child.parent = parent
	parent.children = append(parent.children, child)
	d.dirty = true
}

// Remove detaches n (and its subtree) from the document.
func (d *Document) Remove(n *Node) {
	if p := n.parent; p != nil {
		kids := p.children
		for i, c := range kids {
			if c == n {
				p.children = append(kids[:i:i], kids[i+1:]...)
				break
			}
		}
		n.parent = nil
	} else {
		for i, r := range d.roots {
			if r == n {
				d.roots = append(d.roots[:i:i], d.roots[i+1:]...)
				break
			}
		}
	}
	d.dirty = true
}

// QuerySelectorAll returns the elements matching sel in document order.
func (d *Document) QuerySelectorAll(sel string) ([]*Node, error) {
	s, err := Compile(sel)
	if err != nil {
		return nil, err
	}
	return s.filter(d.All()), nil
}

// QuerySelector returns the first element matching sel, or nil.
func (d *Document) QuerySelector(sel string) (*Node, error) {
	s, err := Compile(sel)
	if err != nil {
		return nil, err
	}
	for _, n := range d.All() {
		if s.Match(n) {
			return n, nil
		}
	}
	return nil, nil
}

// QuerySelectorAll returns the descendants of n matching sel. Matching is
// evaluated against the whole document, as in the DOM.
func (n *Node) QuerySelectorAll(sel string) ([]*Node, error) {
	s, err := Compile(sel)
	if err != nil {
		return nil, err
	}
	return s.filter(n.descendants(nil)), nil
}

// ElementFromPoint returns the topmost element whose box contains the
// point. Later elements in document order paint above earlier ones;
// overlay markers are transparent to hit testing.
func (d *Document) ElementFromPoint(x, y float64) *Node {
	if hits := d.ElementsFromPoint(x, y); len(hits) > 0 {
		return hits[0]
	}
	return nil
}

// ElementsFromPoint returns every non-overlay element containing the
// point, topmost first.
func (d *Document) ElementsFromPoint(x, y float64) []*Node {
	all := d.All()
	var hits []*Node
	for i := len(all) - 1; i >= 0; i-- {
		n := all[i]
		if !n.IsOverlay() && n.Box.Contains(x, y) {
			hits = append(hits, n)
		}
	}
	return hits
}
