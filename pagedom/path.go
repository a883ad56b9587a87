package pagedom

import (
	"fmt"
	"strings"
)

// Path returns a structural CSS path for n: tag names joined by " > ",
// disambiguated by :nth-of-type(k) when k > 1, and anchored at the nearest
// ancestor carrying an id. The walk stops early at a detached node or a
// non-element, so a partial path is still returned.
func Path(n *Node) string {
	var parts []string
	for el := n; el != nil && el.Tag != ""; el = el.parent {
		sel := el.Tag
		if id := el.ID(); id != "" {
			parts = append(parts, sel+"#"+id)
			break
		}
		if nth := el.typeIndex(); nth != 1 {
			sel += fmt.Sprintf(":nth-of-type(%d)", nth)
		}
		parts = append(parts, sel)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " > ")
}
