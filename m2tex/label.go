package m2tex

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"oss.terrastruct.com/m2/lib/color"
	"oss.terrastruct.com/m2/lib/geo"
	"oss.terrastruct.com/m2/lib/go2"
	"oss.terrastruct.com/m2/lib/svg"
	"oss.terrastruct.com/m2/m2graph"
	"oss.terrastruct.com/m2/m2scene"
)

var (
	ErrNoMatch    = errors.New("no matching sub-expression")
	ErrMatchIndex = errors.New("match index out of range")
)

// TeXClass marks the group holding typeset content.
const TeXClass = "tex"

type Align string

const (
	AlignCenter  Align = "center"
	AlignTopLeft Align = "top-left"
)

type LabelOptions struct {
	// Offset is added to the label position, in px.
	Offset geo.Point `json:"offset"`
	// Align selects which point of the label sits on its position. Default center.
	Align Align `json:"align"`
	// Scale multiplies the typeset size. Default 1.
	Scale float64 `json:"scale"`
	// Color of the whole expression.
	Color string `json:"color"`
}

func (opts *LabelOptions) withDefaults() (LabelOptions, error) {
	if opts == nil {
		opts = &LabelOptions{}
	}
	o := *opts
	o.Align = go2.Default(o.Align, AlignCenter)
	o.Scale = go2.Default(o.Scale, 1)
	switch o.Align {
	case AlignCenter, AlignTopLeft:
	default:
		return o, fmt.Errorf("unknown label alignment %q", o.Align)
	}
	if o.Scale < 0 {
		return o, fmt.Errorf("label scale must be positive: %v", o.Scale)
	}
	if !o.Offset.IsFinite() {
		return o, fmt.Errorf("label offset must be finite: %v", o.Offset)
	}
	if o.Color != "" {
		c, err := color.Normalize(o.Color)
		if err != nil {
			return o, err
		}
		o.Color = c
	}
	return o, nil
}

var labelSeq int64

// Label is a drawable TeX expression.
type Label struct {
	m2graph.Base

	ts   Typesetter
	opts LabelOptions

	tex     string
	tree    *Tree
	content *m2scene.Node
	node    *m2scene.Node
	pos     geo.Point
}

func NewLabel(id string, ts Typesetter, tex string, opts *LabelOptions) (*Label, error) {
	o, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	l := &Label{
		Base: m2graph.NewBase(id),
		ts:   ts,
		opts: o,
		node: m2scene.New("g", m2scene.Attr{Name: "class", Value: TeXClass}),
	}
	if id != "" {
		l.node.SetAttr("id", id)
	}
	if o.Color != "" {
		l.Color(o.Color)
	}
	if err := l.SetTeX(tex); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Label) Node() *m2scene.Node {
	return l.node
}

func (l *Label) TeX() string {
	return l.tex
}

// Size returns the rendered width and height in px.
func (l *Label) Size() (float64, float64) {
	return l.tree.Width * l.opts.Scale, l.tree.Height * l.opts.Scale
}

func (l *Label) Position() geo.Point {
	return l.pos
}

func (l *Label) SetPosition(p geo.Point) {
	l.pos = p
	l.layout()
}

func (l *Label) layout() {
	tl := l.pos.Add(l.opts.Offset)
	if l.opts.Align == AlignCenter {
		w, h := l.Size()
		tl = tl.Minus(geo.NewPoint(w/2, h/2))
	}
	l.node.SetAttr("transform", fmt.Sprintf("translate(%s %s)", svg.Num(tl.X), svg.Num(tl.Y)))
}

// SetTeX typesets tex and replaces the current content. The position and the whole
// expression color are kept while sub-expression colors are reset.
func (l *Label) SetTeX(tex string) error {
	tree, err := l.ts.Typeset(tex)
	if err != nil {
		return err
	}
	content := contentGroup(tree, l.opts.Scale)
	prefixIDs(content, fmt.Sprintf("m2tex-%d-", atomic.AddInt64(&labelSeq, 1)))

	if l.content != nil {
		l.content.ReplaceWith(content)
	} else {
		l.node.AppendChild(content)
	}
	l.tex = tex
	l.tree = tree
	l.content = content
	l.layout()
	return nil
}

// contentGroup converts the engine's svg element into a group mapping its viewBox onto
// the tree's px size.
func contentGroup(tree *Tree, scale float64) *m2scene.Node {
	g := tree.Root
	g.Tag = "g"
	for _, attr := range []string{"xmlns", "xmlns:xlink", "width", "height", "viewBox", "style", "role", "focusable"} {
		g.DelAttr(attr)
	}
	s := tree.Width / tree.ViewBox.Width * scale
	g.SetAttr("transform", fmt.Sprintf("scale(%s) translate(%s %s)", svg.Num(s), svg.Num(-tree.ViewBox.MinX()), svg.Num(-tree.ViewBox.MinY())))
	return g
}

// prefixIDs makes the engine's ids unique across labels.
func prefixIDs(root *m2scene.Node, prefix string) {
	root.Walk(func(n *m2scene.Node) bool {
		if id := n.ID(); id != "" {
			n.SetAttr("id", prefix+id)
		}
		for _, attr := range []string{"href", "xlink:href"} {
			if v := n.Attr(attr); strings.HasPrefix(v, "#") {
				n.SetAttr(attr, "#"+prefix+v[1:])
			}
		}
		return true
	})
}

// Matches typesets tex and returns every occurrence of it in the label.
func (l *Label) Matches(tex string) ([][]*m2scene.Node, error) {
	candidate, err := l.ts.Typeset(tex)
	if err != nil {
		return nil, err
	}
	return Match(l.content, candidate.Root), nil
}

func (l *Label) match(tex string, index int) ([]*m2scene.Node, error) {
	matches, err := l.Matches(tex)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %q in %q", ErrNoMatch, tex, l.tex)
	}
	if index < 0 || index >= len(matches) {
		return nil, fmt.Errorf("%w: %q has %d matches in %q, got index %d", ErrMatchIndex, tex, len(matches), l.tex, index)
	}
	return matches[index], nil
}

// Part returns a copy of the index-th occurrence of tex wrapped in a group.
func (l *Label) Part(tex string, index int) (*m2scene.Node, error) {
	nodes, err := l.match(tex, index)
	if err != nil {
		return nil, err
	}
	g := m2scene.New("g")
	for _, n := range nodes {
		g.AppendChild(n.Clone())
	}
	return g, nil
}

// SetColor colors every occurrence of tex.
func (l *Label) SetColor(tex, c string) error {
	matches, err := l.Matches(tex)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("%w: %q in %q", ErrNoMatch, tex, l.tex)
	}
	for _, m := range matches {
		paint(m, c)
	}
	return nil
}

// SetMatchColor colors only the index-th occurrence of tex.
func (l *Label) SetMatchColor(tex, c string, index int) error {
	nodes, err := l.match(tex, index)
	if err != nil {
		return err
	}
	paint(nodes, c)
	return nil
}

func paint(nodes []*m2scene.Node, c string) {
	for _, n := range nodes {
		n.SetAttr("fill", c)
		n.SetAttr("stroke", c)
	}
}

// Color sets the color of the whole expression. The engine paints with currentColor.
func (l *Label) Color(c string) {
	l.node.SetAttr("color", c)
}
