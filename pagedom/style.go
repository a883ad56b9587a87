package pagedom

import (
	"strconv"
	"strings"
)

// parseStyle splits an inline style attribute into lower-case properties.
func parseStyle(s string) map[string]string {
	out := make(map[string]string)
	for _, decl := range strings.Split(s, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		val = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(val), "!important"))
		if prop != "" && val != "" {
			out[prop] = val
		}
	}
	return out
}

// px parses a length in pixels. Unitless numbers are accepted.
func px(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.TrimSuffix(s, "px")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// backgroundOf resolves the computed background colour from inline style.
// background-color wins over the background shorthand.
func backgroundOf(style map[string]string) string {
	if v, ok := style["background-color"]; ok {
		return NormalizeColor(v)
	}
	if v, ok := style["background"]; ok {
		for _, tok := range splitTopLevel(v) {
			if c, ok := ParseColor(tok); ok {
				return c.String()
			}
		}
	}
	return Transparent
}

// splitTopLevel splits on whitespace outside parentheses.
func splitTopLevel(s string) []string {
	var out []string
	depth, start := 0, -1
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case (c == ' ' || c == '\t' || c == '\n') && depth == 0:
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}
