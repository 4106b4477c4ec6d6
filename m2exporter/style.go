package m2exporter

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"cdr.dev/slog"
	"github.com/andybalholm/cascadia"
	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"

	"oss.terrastruct.com/m2/lib/color"
	"oss.terrastruct.com/m2/lib/geo"
	"oss.terrastruct.com/m2/lib/go2"
	"oss.terrastruct.com/m2/lib/log"
	"oss.terrastruct.com/m2/lib/svg"
	"oss.terrastruct.com/m2/m2scene"
)

type property struct {
	name    string
	initial string
	inherit bool
	isColor bool
}

// inlined lists the properties whose computed values are written into exported
// documents.
var inlined = []property{
	{name: "fill", initial: "#000000", inherit: true, isColor: true},
	{name: "fill-opacity", initial: "1", inherit: true},
	{name: "opacity", initial: "1"},
	{name: "font-family", initial: "serif", inherit: true},
	{name: "font-size", initial: "16px", inherit: true},
	{name: "stroke", initial: color.None, inherit: true, isColor: true},
	{name: "stroke-width", initial: "1", inherit: true},
	{name: "stroke-opacity", initial: "1", inherit: true},
	{name: "vector-effect", initial: "none"},
}

// colorProperty is only tracked to resolve currentColor.
var colorProperty = property{name: "color", initial: "#000000", inherit: true, isColor: true}

const (
	nonScalingStroke = "non-scaling-stroke"

	// texClass marks groups of typeset content, see m2tex.TeXClass.
	texClass = "tex"
)

// Style holds the computed value of every tracked property of one element.
type Style map[string]string

func initialStyle() Style {
	s := make(Style, len(inlined)+1)
	for _, p := range inlined {
		s[p.name] = p.initial
	}
	s[colorProperty.name] = colorProperty.initial
	return s
}

// StrokeWidth parses the computed stroke width. Unparseable widths count as 1.
func (s Style) StrokeWidth() float64 {
	w, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s["stroke-width"]), "px"), 64)
	if err != nil || math.IsNaN(w) {
		return 1
	}
	return w
}

type sheetRule struct {
	specificity cascadia.Specificity
	order       int
	decls       []*css.Declaration
}

// cascade computes styles for a whole tree.
type cascade struct {
	rules map[*m2scene.Node][]sheetRule
}

func newCascade(ctx context.Context, root *m2scene.Node) *cascade {
	c := &cascade{
		rules: make(map[*m2scene.Node][]sheetRule),
	}
	styles := root.FindAll(func(n *m2scene.Node) bool {
		return n.Tag == "style"
	})
	if len(styles) == 0 {
		return c
	}

	doc := m2scene.NewDocument(root)
	order := 0
	for _, st := range styles {
		sheet, err := parser.Parse(st.Text)
		if err != nil {
			log.Warn(ctx, "ignoring unparseable stylesheet", slog.Error(err))
			continue
		}
		for _, r := range sheet.Rules {
			if r.Kind != css.QualifiedRule || len(r.Declarations) == 0 {
				continue
			}
			for _, s := range r.Selectors {
				sel, err := cascadia.Parse(s)
				if err != nil {
					log.Debug(ctx, "ignoring unsupported selector", slog.F("selector", s), slog.Error(err))
					continue
				}
				if sel.PseudoElement() != "" {
					continue
				}
				for _, n := range doc.Select(sel) {
					c.rules[n] = append(c.rules[n], sheetRule{
						specificity: sel.Specificity(),
						order:       order,
						decls:       r.Declarations,
					})
				}
				order++
			}
		}
	}
	for _, rules := range c.rules {
		sort.SliceStable(rules, func(i, j int) bool {
			if rules[i].specificity != rules[j].specificity {
				return rules[i].specificity.Less(rules[j].specificity)
			}
			return rules[i].order < rules[j].order
		})
	}
	return c
}

// sheetValue returns the winning stylesheet declaration for property on n.
func (c *cascade) sheetValue(n *m2scene.Node, property string) (string, bool) {
	rules := c.rules[n]
	var v string
	var found, important bool
	for _, r := range rules {
		for _, d := range r.decls {
			if d.Property != property {
				continue
			}
			if important && !d.Important {
				continue
			}
			v = d.Value
			found = true
			important = d.Important
		}
	}
	return v, found
}

// specified returns the value declared for p on n, in order of precedence: inline style,
// stylesheet, presentation attribute.
func (c *cascade) specified(n *m2scene.Node, p property) (string, bool) {
	if v, ok := n.LookupStyle(p.name); ok {
		return v, true
	}
	if v, ok := c.sheetValue(n, p.name); ok {
		return v, true
	}
	return n.LookupAttr(p.name)
}

// compute returns the style of n given the computed style of its parent.
func (c *cascade) compute(n *m2scene.Node, parent Style) Style {
	s := make(Style, len(parent))

	resolve := func(p property) string {
		v, ok := c.specified(n, p)
		v = strings.TrimSpace(v)
		if !ok || v == "" || v == "inherit" {
			if p.inherit || v == "inherit" {
				return parent[p.name]
			}
			return p.initial
		}
		if v == "initial" {
			return p.initial
		}
		if p.isColor {
			if v == color.CurrentColor || v == "currentcolor" {
				return s[colorProperty.name]
			}
			if norm, err := color.Normalize(v); err == nil {
				return norm
			}
		}
		return v
	}

	s[colorProperty.name] = resolve(colorProperty)
	for _, p := range inlined {
		s[p.name] = resolve(p)
	}
	return s
}

// skipped elements are never rendered directly and keep their styles untouched.
func skipped(n *m2scene.Node) bool {
	switch n.Tag {
	case "defs", "style", "title", "desc", "metadata", "script", "marker", "symbol", "clipPath", "mask", "pattern", "linearGradient", "radialGradient":
		return true
	}
	return false
}

// ComputeStyles returns the computed style of every rendered element of root.
func ComputeStyles(ctx context.Context, root *m2scene.Node) map[*m2scene.Node]Style {
	c := newCascade(ctx, root)
	styles := make(map[*m2scene.Node]Style)
	var walk func(n *m2scene.Node, parent Style)
	walk = func(n *m2scene.Node, parent Style) {
		if skipped(n) {
			return
		}
		s := c.compute(n, parent)
		styles[n] = s
		for _, child := range n.Children {
			walk(child, s)
		}
	}
	walk(root, initialStyle())
	return styles
}

// InlineStyles writes the computed value of every inlined property onto each rendered
// element of root, then applies the adjustments of target.
//
// A property set as a presentation attribute keeps that attribute with the computed
// value. Any other property is written as an inline style only when its computed value
// differs from the parent's, or from the initial value for properties that are not
// inherited.
func InlineStyles(ctx context.Context, root *m2scene.Node, target Target) {
	c := newCascade(ctx, root)

	var walk func(n *m2scene.Node, parent, parentWritten Style, ctm geo.Matrix)
	walk = func(n *m2scene.Node, parent, parentWritten Style, ctm geo.Matrix) {
		if skipped(n) {
			return
		}
		m, err := geo.ParseTransform(n.Attr("transform"))
		if err != nil {
			log.Warn(ctx, "treating invalid transform as identity", slog.F("tag", n.Tag), slog.Error(err))
			m = geo.Identity()
		}
		ctm = ctm.Mul(m)

		s := c.compute(n, parent)
		written := make(Style, len(s))
		for k, v := range s {
			written[k] = v
		}
		if target != TargetBrowser && s["vector-effect"] == nonScalingStroke {
			sx, sy := ctm.ScaleFactors()
			if scale := go2.Max(sx, sy); scale > 0 {
				written["stroke-width"] = svg.Num(s.StrokeWidth() / scale)
			}
			written["vector-effect"] = "none"
			n.DelAttr("vector-effect")
			n.DelStyle("vector-effect")
		}

		for _, p := range inlined {
			v := written[p.name]
			// Stylesheets stay in the document, so a property one of their rules
			// declares on n must be pinned inline to keep the computed value.
			_, fromSheet := c.sheetValue(n, p.name)
			if n.HasAttr(p.name) {
				n.SetAttr(p.name, v)
				if fromSheet {
					n.SetStyle(p.name, v)
				} else {
					n.DelStyle(p.name)
				}
				continue
			}
			base := p.initial
			if p.inherit {
				base = parentWritten[p.name]
			}
			if v != base || fromSheet {
				n.SetStyle(p.name, v)
			} else {
				n.DelStyle(p.name)
			}
		}

		for _, child := range append([]*m2scene.Node(nil), n.Children...) {
			walk(child, s, written, ctm)
		}
	}
	initial := initialStyle()
	walk(root, initial, initial, geo.Identity())

	if target == TargetIllustrator {
		scaleTeX(root, IllustratorTeXScale)
	}
}

// scaleTeX scales typeset content about its group's origin.
func scaleTeX(root *m2scene.Node, factor float64) {
	root.Walk(func(n *m2scene.Node) bool {
		if !n.HasClass(texClass) {
			return true
		}
		t := fmt.Sprintf("scale(%s)", svg.Num(factor))
		if existing := n.Attr("transform"); existing != "" {
			t = existing + " " + t
		}
		n.SetAttr("transform", t)
		return false
	})
}
