package pagedom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// hiddenTags never render and contribute no text.
var hiddenTags = map[string]bool{
	"head": true, "script": true, "style": true, "noscript": true, "template": true,
}

// blockTags break text runs, as line boxes do in innerText.
var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "br": true,
	"dd": true, "div": true, "dl": true, "dt": true, "fieldset": true, "figure": true,
	"footer": true, "form": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "header": true, "hr": true, "li": true, "main": true,
	"nav": true, "ol": true, "p": true, "pre": true, "section": true, "table": true,
	"tbody": true, "td": true, "tfoot": true, "th": true, "thead": true, "tr": true,
	"ul": true, "caption": true,
}

// Parse builds a Document from static HTML.
//
// No layout engine runs: an element's box comes from its inline
// left/top/width/height in px, with left/top offset from the parent's box.
// Background colour comes from inline background-color or the background
// shorthand. Elements styled display:none, and head/script/style content,
// get an empty box and no text.
func Parse(r io.Reader, url string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("pagedom: parse: %w", err)
	}
	var top *Node
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			top, _ = convert(c, nil, false)
			break
		}
	}
	return NewDocument(url, top), nil
}

// ParseString is Parse over a string.
func ParseString(src, url string) (*Document, error) {
	return Parse(strings.NewReader(src), url)
}

// convert maps an html element to a Node and returns its raw text.
func convert(h *html.Node, parent *Node, hidden bool) (*Node, string) {
	n := &Node{Tag: strings.ToLower(h.Data), Attrs: make(map[string]string, len(h.Attr)), parent: parent}
	for _, a := range h.Attr {
		if a.Namespace != "" {
			continue
		}
		n.Attrs[strings.ToLower(a.Key)] = a.Val
	}
	style := parseStyle(n.Attrs["style"])
	n.Background = backgroundOf(style)
	hidden = hidden || hiddenTags[n.Tag] || strings.EqualFold(style["display"], "none")

	if !hidden {
		var origin Rect
		if parent != nil {
			origin = parent.Box
		}
		left, _ := px(style["left"])
		top, _ := px(style["top"])
		w, _ := px(style["width"])
		hgt, _ := px(style["height"])
		n.Box = Rect{X: origin.X + left, Y: origin.Y + top, Width: w, Height: hgt}
	}

	var raw strings.Builder
	for c := h.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if !hidden {
				raw.WriteString(c.Data)
			}
		case html.ElementNode:
			child, text := convert(c, n, hidden)
			n.children = append(n.children, child)
			if blockTags[child.Tag] {
				raw.WriteByte('\n')
				raw.WriteString(text)
				raw.WriteByte('\n')
			} else {
				raw.WriteString(text)
			}
		}
	}
	if hidden {
		return n, ""
	}
	n.text = collapse(raw.String())
	return n, raw.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
