package pagedom

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrSelector is wrapped by every selector syntax error.
var ErrSelector = errors.New("pagedom: invalid selector")

// Selector is a compiled selector group. Supported syntax:
//   - type and universal: "td", "*"
//   - #id, .class
//   - [attr], [attr=v], [attr~=v], [attr|=v], [attr^=v], [attr$=v], [attr*=v]
//   - :first-child, :last-child, :only-child, :first-of-type, :last-of-type,
//     :nth-child(n), :nth-of-type(n), :nth-last-of-type(n) with n an integer,
//     "odd" or "even"
//   - descendant (whitespace) and child (">") combinators
//   - comma-separated groups
type Selector struct {
	src    string
	groups []complexSel
}

type complexSel struct {
	parts []compound
	combs []byte // combs[i] joins parts[i] and parts[i+1]: ' ' or '>'
}

type compound struct {
	tag     string
	ids     []string
	classes []string
	attrs   []attrSel
	pseudos []pseudoSel
}

type attrSel struct {
	key, op, val string
}

type pseudoSel struct {
	name string
	a, b int // position matches a*k + b for some k >= 0
}

// Compile parses sel.
func Compile(sel string) (*Selector, error) {
	p := &selParser{s: sel}
	s := &Selector{src: sel}
	for {
		p.skipSpace()
		c, err := p.parseComplex()
		if err != nil {
			return nil, err
		}
		s.groups = append(s.groups, c)
		p.skipSpace()
		if p.eof() {
			return s, nil
		}
		if p.peek() != ',' {
			return nil, p.errorf("unexpected %q", p.peek())
		}
		p.pos++
	}
}

// String returns the source text.
func (s *Selector) String() string { return s.src }

// Match reports whether n matches any group.
func (s *Selector) Match(n *Node) bool {
	if n == nil || n.Tag == "" {
		return false
	}
	for _, g := range s.groups {
		if g.matchAt(n, len(g.parts)-1) {
			return true
		}
	}
	return false
}

func (s *Selector) filter(nodes []*Node) []*Node {
	var out []*Node
	for _, n := range nodes {
		if s.Match(n) {
			out = append(out, n)
		}
	}
	return out
}

func (c complexSel) matchAt(n *Node, i int) bool {
	if !c.parts[i].match(n) {
		return false
	}
	if i == 0 {
		return true
	}
	if c.combs[i-1] == '>' {
		return n.parent != nil && c.matchAt(n.parent, i-1)
	}
	for p := n.parent; p != nil; p = p.parent {
		if c.matchAt(p, i-1) {
			return true
		}
	}
	return false
}

func (c compound) match(n *Node) bool {
	if c.tag != "" && c.tag != "*" && n.Tag != c.tag {
		return false
	}
	for _, id := range c.ids {
		if n.ID() != id {
			return false
		}
	}
	for _, cl := range c.classes {
		if !n.HasClass(cl) {
			return false
		}
	}
	for _, a := range c.attrs {
		if !a.match(n) {
			return false
		}
	}
	for _, ps := range c.pseudos {
		if !ps.match(n) {
			return false
		}
	}
	return true
}

func (a attrSel) match(n *Node) bool {
	if !n.HasAttr(a.key) {
		return false
	}
	v := n.Attr(a.key)
	switch a.op {
	case "":
		return true
	case "=":
		return v == a.val
	case "~=":
		for _, w := range strings.Fields(v) {
			if w == a.val {
				return true
			}
		}
		return false
	case "|=":
		return v == a.val || strings.HasPrefix(v, a.val+"-")
	case "^=":
		return a.val != "" && strings.HasPrefix(v, a.val)
	case "$=":
		return a.val != "" && strings.HasSuffix(v, a.val)
	case "*=":
		return a.val != "" && strings.Contains(v, a.val)
	}
	return false
}

func (ps pseudoSel) match(n *Node) bool {
	switch ps.name {
	case "first-child":
		return n.childIndex() == 1
	case "last-child":
		return n.childIndex() == n.siblingCount()
	case "only-child":
		return n.siblingCount() == 1
	case "first-of-type":
		return n.typeIndex() == 1
	case "last-of-type":
		return n.typeIndexFromEnd() == 1
	case "nth-child":
		return ps.position(n.childIndex())
	case "nth-of-type":
		return ps.position(n.typeIndex())
	case "nth-last-of-type":
		return ps.position(n.typeIndexFromEnd())
	}
	return false
}

func (ps pseudoSel) position(pos int) bool {
	if ps.a == 0 {
		return pos == ps.b
	}
	d := pos - ps.b
	return d%ps.a == 0 && d/ps.a >= 0
}

// --- parser ---

type selParser struct {
	s   string
	pos int
}

func (p *selParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w %q at offset %d: %s", ErrSelector, p.s, p.pos, fmt.Sprintf(format, args...))
}

func (p *selParser) eof() bool  { return p.pos >= len(p.s) }
func (p *selParser) peek() byte { return p.s[p.pos] }

func (p *selParser) skipSpace() bool {
	start := p.pos
	for !p.eof() {
		switch p.peek() {
		case ' ', '\t', '\n', '\r', '\f':
			p.pos++
		default:
			return p.pos > start
		}
	}
	return p.pos > start
}

func isIdentChar(c byte) bool {
	return c == '-' || c == '_' || c >= 0x80 ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (p *selParser) ident() string {
	start := p.pos
	for !p.eof() && isIdentChar(p.peek()) {
		p.pos++
	}
	return p.s[start:p.pos]
}

// name reads an identifier that must not start with a digit.
func (p *selParser) name(what string) (string, error) {
	if !p.eof() && p.peek() >= '0' && p.peek() <= '9' {
		return "", p.errorf("%s may not start with a digit", what)
	}
	id := p.ident()
	if id == "" {
		return "", p.errorf("expected %s", what)
	}
	return id, nil
}

func (p *selParser) parseComplex() (complexSel, error) {
	var c complexSel
	first, err := p.parseCompound()
	if err != nil {
		return c, err
	}
	c.parts = append(c.parts, first)
	for {
		hadSpace := p.skipSpace()
		if p.eof() || p.peek() == ',' {
			return c, nil
		}
		comb := byte(' ')
		switch p.peek() {
		case '>':
			comb = '>'
			p.pos++
			p.skipSpace()
		case '+', '~':
			return c, p.errorf("unsupported combinator %q", p.peek())
		default:
			if !hadSpace {
				return c, p.errorf("unexpected %q", p.peek())
			}
		}
		next, err := p.parseCompound()
		if err != nil {
			return c, err
		}
		c.parts = append(c.parts, next)
		c.combs = append(c.combs, comb)
	}
}

func (p *selParser) parseCompound() (compound, error) {
	var c compound
	start := p.pos
	if !p.eof() {
		if p.peek() == '*' {
			c.tag = "*"
			p.pos++
		} else if isIdentChar(p.peek()) {
			tag, err := p.name("type selector")
			if err != nil {
				return c, err
			}
			c.tag = strings.ToLower(tag)
		}
	}
	for !p.eof() {
		switch p.peek() {
		case '#':
			p.pos++
			id, err := p.name("id")
			if err != nil {
				return c, err
			}
			c.ids = append(c.ids, id)
		case '.':
			p.pos++
			cl, err := p.name("class")
			if err != nil {
				return c, err
			}
			c.classes = append(c.classes, cl)
		case '[':
			a, err := p.parseAttr()
			if err != nil {
				return c, err
			}
			c.attrs = append(c.attrs, a)
		case ':':
			ps, err := p.parsePseudo()
			if err != nil {
				return c, err
			}
			c.pseudos = append(c.pseudos, ps)
		default:
			if p.pos == start {
				return c, p.errorf("expected selector")
			}
			return c, nil
		}
	}
	if p.pos == start {
		return c, p.errorf("expected selector")
	}
	return c, nil
}

func (p *selParser) parseAttr() (attrSel, error) {
	var a attrSel
	p.pos++ // [
	p.skipSpace()
	key, err := p.name("attribute name")
	if err != nil {
		return a, err
	}
	a.key = strings.ToLower(key)
	p.skipSpace()
	if p.eof() {
		return a, p.errorf("unterminated attribute selector")
	}
	if p.peek() == ']' {
		p.pos++
		return a, nil
	}
	switch {
	case p.peek() == '=':
		a.op = "="
		p.pos++
	case strings.IndexByte("~|^$*", p.peek()) >= 0 && p.pos+1 < len(p.s) && p.s[p.pos+1] == '=':
		a.op = p.s[p.pos : p.pos+2]
		p.pos += 2
	default:
		return a, p.errorf("unexpected %q in attribute selector", p.peek())
	}
	p.skipSpace()
	if p.eof() {
		return a, p.errorf("unterminated attribute selector")
	}
	if q := p.peek(); q == '"' || q == '\'' {
		v, err := p.quoted(q)
		if err != nil {
			return a, err
		}
		a.val = v
	} else {
		a.val = p.ident()
		if a.val == "" {
			return a, p.errorf("expected attribute value")
		}
	}
	p.skipSpace()
	if p.eof() || p.peek() != ']' {
		return a, p.errorf("unterminated attribute selector")
	}
	p.pos++
	return a, nil
}

func (p *selParser) quoted(q byte) (string, error) {
	p.pos++
	var b strings.Builder
	for !p.eof() {
		c := p.peek()
		p.pos++
		switch {
		case c == q:
			return b.String(), nil
		case c == '\\' && !p.eof():
			b.WriteByte(p.peek())
			p.pos++
		default:
			b.WriteByte(c)
		}
	}
	return "", p.errorf("unterminated string")
}

func (p *selParser) parsePseudo() (pseudoSel, error) {
	var ps pseudoSel
	p.pos++ // :
	name := strings.ToLower(p.ident())
	ps.name = name
	switch name {
	case "first-child", "last-child", "only-child", "first-of-type", "last-of-type":
		return ps, nil
	case "nth-child", "nth-of-type", "nth-last-of-type":
	default:
		return ps, p.errorf("unsupported pseudo-class %q", name)
	}
	if p.eof() || p.peek() != '(' {
		return ps, p.errorf("expected ( after :%s", name)
	}
	p.pos++
	p.skipSpace()
	start := p.pos
	for !p.eof() && p.peek() != ')' {
		p.pos++
	}
	if p.eof() {
		return ps, p.errorf("unterminated :%s", name)
	}
	arg := strings.ToLower(strings.TrimSpace(p.s[start:p.pos]))
	p.pos++ // )
	switch arg {
	case "odd":
		ps.a, ps.b = 2, 1
	case "even":
		ps.a, ps.b = 2, 0
	default:
		n, err := strconv.Atoi(arg)
		if err != nil {
			return ps, p.errorf("unsupported :%s argument %q", name, arg)
		}
		ps.b = n
	}
	return ps, nil
}
