// Package m2textest provides a typesetter for tests that produces trees shaped like
// MathJax output without running MathJax.
//
// Supported input: letters (mi), numbers (mn, one glyph per digit), the operators
// + - = ( ) , < > * / (mo), braces (mrow), ^ and _ (msup, msub) and \frac{a}{b} (mfrac).
package m2textest

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"oss.terrastruct.com/m2/m2tex"
)

const (
	glyphWidth = 500
	pxPerEx    = 8
)

type Typesetter struct {
	// Calls counts Typeset invocations.
	Calls int
}

func (ts *Typesetter) Typeset(tex string) (*m2tex.Tree, error) {
	ts.Calls++
	markup, err := Markup(tex)
	if err != nil {
		return nil, err
	}
	return m2tex.ParseSVG(markup, pxPerEx)
}

type node struct {
	kind     string
	chars    []rune
	children []*node
}

// Markup renders tex as MathJax-like svg markup.
func Markup(tex string) (string, error) {
	p := &parser{s: []rune(tex)}
	row, err := p.row()
	if err != nil {
		return "", err
	}
	if !p.eof() {
		return "", fmt.Errorf("unexpected %q at %d in %q", p.s[p.i], p.i, tex)
	}

	glyphs := map[rune]bool{}
	collect(row, glyphs)

	buf := &bytes.Buffer{}
	w := width(row) * glyphWidth
	if w == 0 {
		w = glyphWidth
	}
	fmt.Fprintf(buf, `<mjx-container class="MathJax" jax="SVG"><svg style="vertical-align: -0.5ex" xmlns="http://www.w3.org/2000/svg" width="%gex" height="2ex" role="img" focusable="false" viewBox="0 -750 %d 1000" xmlns:xlink="http://www.w3.org/1999/xlink">`, float64(w)/glyphWidth, w)
	buf.WriteString("<defs>")
	for _, c := range sortedRunes(glyphs) {
		fmt.Fprintf(buf, `<path id="MJX-TEX-%X" d="M 0 0 L 400 0 L 400 700 L 0 700 Z"></path>`, c)
	}
	buf.WriteString("</defs>")
	buf.WriteString(`<g stroke="currentColor" fill="currentColor" stroke-width="0" transform="scale(1,-1)">`)
	buf.WriteString(`<g data-mml-node="math">`)
	x := 0
	for _, c := range row {
		render(buf, c, &x)
	}
	buf.WriteString("</g></g></svg></mjx-container>")
	return buf.String(), nil
}

type parser struct {
	s []rune
	i int
}

func (p *parser) eof() bool {
	return p.i >= len(p.s)
}

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}
	return p.s[p.i]
}

func (p *parser) row() ([]*node, error) {
	var row []*node
	for {
		p.skipSpace()
		if p.eof() || p.peek() == '}' {
			return row, nil
		}
		n, err := p.atom()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		for p.peek() == '^' || p.peek() == '_' {
			kind := "msup"
			if p.peek() == '_' {
				kind = "msub"
			}
			p.i++
			p.skipSpace()
			script, err := p.atom()
			if err != nil {
				return nil, err
			}
			n = &node{kind: kind, children: []*node{n, script}}
			p.skipSpace()
		}
		row = append(row, n)
	}
}

func (p *parser) skipSpace() {
	for !p.eof() && unicode.IsSpace(p.peek()) {
		p.i++
	}
}

func (p *parser) atom() (*node, error) {
	if p.eof() {
		return nil, fmt.Errorf("unexpected end of input")
	}
	c := p.peek()
	switch {
	case c == '{':
		return p.group()
	case c == '\\':
		p.i++
		start := p.i
		for !p.eof() && unicode.IsLetter(p.peek()) {
			p.i++
		}
		cmd := string(p.s[start:p.i])
		if cmd != "frac" {
			return nil, fmt.Errorf("unsupported command \\%s", cmd)
		}
		num, err := p.arg()
		if err != nil {
			return nil, err
		}
		den, err := p.arg()
		if err != nil {
			return nil, err
		}
		return &node{kind: "mfrac", children: []*node{num, den}}, nil
	case unicode.IsDigit(c):
		n := &node{kind: "mn"}
		for !p.eof() && (unicode.IsDigit(p.peek()) || p.peek() == '.') {
			n.chars = append(n.chars, p.peek())
			p.i++
		}
		return n, nil
	case unicode.IsLetter(c):
		p.i++
		return &node{kind: "mi", chars: []rune{c}}, nil
	case strings.ContainsRune("+-=(),<>*/", c):
		p.i++
		return &node{kind: "mo", chars: []rune{c}}, nil
	}
	return nil, fmt.Errorf("unsupported character %q", c)
}

func (p *parser) group() (*node, error) {
	p.i++
	row, err := p.row()
	if err != nil {
		return nil, err
	}
	if p.peek() != '}' {
		return nil, fmt.Errorf("unclosed group")
	}
	p.i++
	return &node{kind: "mrow", children: row}, nil
}

// arg unwraps single-atom groups like MathJax does for fraction arguments.
func (p *parser) arg() (*node, error) {
	p.skipSpace()
	n, err := p.atom()
	if err != nil {
		return nil, err
	}
	if n.kind == "mrow" && len(n.children) == 1 {
		return n.children[0], nil
	}
	return n, nil
}

func collect(row []*node, glyphs map[rune]bool) {
	for _, n := range row {
		for _, c := range n.chars {
			glyphs[c] = true
		}
		collect(n.children, glyphs)
	}
}

func sortedRunes(m map[rune]bool) []rune {
	out := make([]rune, 0, len(m))
	for r := range m {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i] < out[j]
	})
	return out
}

func width(row []*node) int {
	w := 0
	for _, n := range row {
		w += nodeWidth(n)
	}
	return w
}

func nodeWidth(n *node) int {
	switch n.kind {
	case "mfrac":
		a, b := nodeWidth(n.children[0]), nodeWidth(n.children[1])
		if a > b {
			return a
		}
		return b
	}
	return len(n.chars) + width(n.children)
}

func render(buf *bytes.Buffer, n *node, x *int) {
	fmt.Fprintf(buf, `<g data-mml-node="%s" transform="translate(%d, 0)">`, n.kind, *x*glyphWidth)
	local := 0
	for _, c := range n.chars {
		fmt.Fprintf(buf, `<use data-c="%X" xlink:href="#MJX-TEX-%X" transform="translate(%d, 0)"></use>`, c, c, local*glyphWidth)
		local++
	}
	for _, c := range n.children {
		render(buf, c, &local)
	}
	buf.WriteString("</g>")
	*x += nodeWidth(n)
}
