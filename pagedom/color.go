package pagedom

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RGBA is a colour with 8-bit channels and a 0..1 alpha.
type RGBA struct {
	R, G, B uint8
	A       float64
}

// String renders the colour the way getComputedStyle does:
// "rgb(r, g, b)" when opaque, "rgba(r, g, b, a)" otherwise.
func (c RGBA) String() string {
	if c.A >= 1 {
		return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(c.A, 'f', -1, 64))
}

var namedColors = map[string]RGBA{
	"transparent": {0, 0, 0, 0},
	"black":       {0, 0, 0, 1},
	"white":       {255, 255, 255, 1},
	"red":         {255, 0, 0, 1},
	"green":       {0, 128, 0, 1},
	"blue":        {0, 0, 255, 1},
	"yellow":      {255, 255, 0, 1},
	"orange":      {255, 165, 0, 1},
	"purple":      {128, 0, 128, 1},
	"gray":        {128, 128, 128, 1},
	"grey":        {128, 128, 128, 1},
	"silver":      {192, 192, 192, 1},
	"pink":        {255, 192, 203, 1},
	"cyan":        {0, 255, 255, 1},
	"magenta":     {255, 0, 255, 1},
	"lime":        {0, 255, 0, 1},
	"navy":        {0, 0, 128, 1},
	"teal":        {0, 128, 128, 1},
	"maroon":      {128, 0, 0, 1},
	"olive":       {128, 128, 0, 1},
	"lightblue":   {173, 216, 230, 1},
	"lightgreen":  {144, 238, 144, 1},
	"lightgray":   {211, 211, 211, 1},
	"lightgrey":   {211, 211, 211, 1},
	"gold":        {255, 215, 0, 1},
	"coral":       {255, 127, 80, 1},
	"salmon":      {250, 128, 114, 1},
	"tomato":      {255, 99, 71, 1},
	"skyblue":     {135, 206, 235, 1},
	"steelblue":   {70, 130, 180, 1},
}

// ParseColor parses a CSS colour value: #rgb, #rgba, #rrggbb, #rrggbbaa,
// rgb(), rgba() and the common named colours.
func ParseColor(s string) (RGBA, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, true
	}
	if strings.HasPrefix(s, "#") {
		return parseHex(s[1:])
	}
	for _, fn := range []string{"rgba(", "rgb("} {
		if strings.HasPrefix(s, fn) && strings.HasSuffix(s, ")") {
			return parseRGBFunc(s[len(fn) : len(s)-1])
		}
	}
	return RGBA{}, false
}

// NormalizeColor returns the computed form of a colour value, or
// Transparent when it does not parse.
func NormalizeColor(s string) string {
	c, ok := ParseColor(s)
	if !ok {
		return Transparent
	}
	return c.String()
}

func parseHex(h string) (RGBA, bool) {
	switch len(h) {
	case 3, 4:
		var exp strings.Builder
		for i := 0; i < len(h); i++ {
			exp.WriteByte(h[i])
			exp.WriteByte(h[i])
		}
		h = exp.String()
	case 6, 8:
	default:
		return RGBA{}, false
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGBA{}, false
	}
	if len(h) == 6 {
		return RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 1}, true
	}
	a := math.Round(float64(uint8(v))/255*1000) / 1000
	return RGBA{uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), a}, true
}

func parseRGBFunc(args string) (RGBA, bool) {
	var parts []string
	if strings.Contains(args, ",") {
		parts = strings.Split(args, ",")
	} else {
		rgb, alpha, hasAlpha := strings.Cut(args, "/")
		parts = strings.Fields(rgb)
		if hasAlpha {
			parts = append(parts, alpha)
		}
	}
	if len(parts) != 3 && len(parts) != 4 {
		return RGBA{}, false
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, ok := parseChannel(strings.TrimSpace(parts[i]))
		if !ok {
			return RGBA{}, false
		}
		ch[i] = v
	}
	c := RGBA{ch[0], ch[1], ch[2], 1}
	if len(parts) == 4 {
		a, ok := parseAlpha(strings.TrimSpace(parts[3]))
		if !ok {
			return RGBA{}, false
		}
		c.A = a
	}
	return c, true
}

func parseChannel(s string) (uint8, bool) {
	pct := strings.HasSuffix(s, "%")
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, false
	}
	if pct {
		v = v * 255 / 100
	}
	return uint8(math.Round(math.Max(0, math.Min(255, v)))), true
}

func parseAlpha(s string) (float64, bool) {
	pct := strings.HasSuffix(s, "%")
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, false
	}
	if pct {
		v /= 100
	}
	return math.Max(0, math.Min(1, v)), true
}
