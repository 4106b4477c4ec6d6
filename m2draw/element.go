package m2draw

import (
	"fmt"
	"math"
	"strconv"

	"oss.terrastruct.com/m2/lib/geo"
	"oss.terrastruct.com/m2/lib/svg"
	"oss.terrastruct.com/m2/m2graph"
	"oss.terrastruct.com/m2/m2scene"
)

// Element is the part shared by every drawable that owns a node.
type Element struct {
	m2graph.Base
	node *m2scene.Node
}

func newElement(id, tag string) Element {
	n := m2scene.New(tag)
	if id != "" {
		n.SetAttr("id", id)
	}
	return Element{
		Base: m2graph.NewBase(id),
		node: n,
	}
}

func (e *Element) Node() *m2scene.Node {
	return e.node
}

func (e *Element) Stroke(c string) {
	e.node.SetAttr("stroke", c)
}

func (e *Element) Fill(c string) {
	e.node.SetAttr("fill", c)
}

func (e *Element) StrokeWidth(w float64) {
	e.node.SetAttr("stroke-width", svg.Num(w))
}

func (e *Element) Opacity(o float64) {
	e.node.SetAttr("opacity", svg.Num(o))
}

// NonScalingStroke keeps the stroke width constant under transforms.
func (e *Element) NonScalingStroke() {
	e.node.SetAttr("vector-effect", "non-scaling-stroke")
}

func (e *Element) AddClass(class string) {
	if e.node.HasClass(class) {
		return
	}
	if c := e.node.Attr("class"); c != "" {
		class = c + " " + class
	}
	e.node.SetAttr("class", class)
}

type Line struct {
	Element
}

func NewLine(id string, start, end geo.Point) *Line {
	l := &Line{Element: newElement(id, "line")}
	l.SetStart(start)
	l.SetEnd(end)
	return l
}

func (l *Line) SetStart(p geo.Point) {
	l.node.SetAttr("x1", svg.Num(p.X))
	l.node.SetAttr("y1", svg.Num(p.Y))
}

func (l *Line) SetEnd(p geo.Point) {
	l.node.SetAttr("x2", svg.Num(p.X))
	l.node.SetAttr("y2", svg.Num(p.Y))
}

func (l *Line) Start() geo.Point {
	return geo.NewPoint(attrFloat(l.node, "x1"), attrFloat(l.node, "y1"))
}

func (l *Line) End() geo.Point {
	return geo.NewPoint(attrFloat(l.node, "x2"), attrFloat(l.node, "y2"))
}

// Arrow toggles the arrow marker at either end.
func (l *Line) Arrow(start, end bool) {
	setMarker(l.node, "marker-start", start)
	setMarker(l.node, "marker-end", end)
}

func setMarker(n *m2scene.Node, attr string, on bool) {
	if on {
		n.SetAttr(attr, fmt.Sprintf("url(#%s)", ArrowMarker))
	} else {
		n.DelAttr(attr)
	}
}

type Path struct {
	Element
}

func NewPath(id string) *Path {
	return &Path{Element: newElement(id, "path")}
}

func (p *Path) SetD(d string) {
	p.node.SetAttr("d", d)
}

func (p *Path) D() string {
	return p.node.Attr("d")
}

// SetPoints draws a polyline through points. Non-finite points are skipped.
func (p *Path) SetPoints(points []geo.Point) {
	finite := make([]geo.Point, 0, len(points))
	for _, pt := range points {
		if pt.IsFinite() {
			finite = append(finite, pt)
		}
	}
	p.SetD(svg.PolylineData(finite))
}

func (p *Path) Arrow(start, end bool) {
	setMarker(p.node, "marker-start", start)
	setMarker(p.node, "marker-end", end)
}

type Circle struct {
	Element
}

func NewCircle(id string, center geo.Point, r float64) *Circle {
	c := &Circle{Element: newElement(id, "circle")}
	c.SetCenter(center)
	c.SetRadius(r)
	return c
}

func (c *Circle) SetCenter(p geo.Point) {
	c.node.SetAttr("cx", svg.Num(p.X))
	c.node.SetAttr("cy", svg.Num(p.Y))
}

func (c *Circle) Center() geo.Point {
	return geo.NewPoint(attrFloat(c.node, "cx"), attrFloat(c.node, "cy"))
}

func (c *Circle) SetRadius(r float64) {
	c.node.SetAttr("r", svg.Num(r))
}

func (c *Circle) Radius() float64 {
	return attrFloat(c.node, "r")
}

type Group struct {
	Element
}

func NewGroup(id string) *Group {
	return &Group{Element: newElement(id, "g")}
}

func (g *Group) SetTranslate(p geo.Point) {
	g.node.SetAttr("transform", fmt.Sprintf("translate(%s %s)", svg.Num(p.X), svg.Num(p.Y)))
}

// Append adds children to the group and registers them as dependencies so that updating
// the group updates them first.
func (g *Group) Append(children ...m2graph.Drawable) {
	for _, c := range children {
		if c == nil {
			continue
		}
		g.AddDependency(c)
		if n, ok := c.(Noder); ok {
			g.node.AppendChild(n.Node())
		}
	}
}

func attrFloat(n *m2scene.Node, name string) float64 {
	f, err := strconv.ParseFloat(n.Attr(name), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
