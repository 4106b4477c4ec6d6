package m2exporter

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"cdr.dev/slog"

	"oss.terrastruct.com/m2/lib/color"
	"oss.terrastruct.com/m2/lib/geo"
	"oss.terrastruct.com/m2/lib/go2"
	"oss.terrastruct.com/m2/lib/log"
	"oss.terrastruct.com/m2/lib/svg"
	"oss.terrastruct.com/m2/m2scene"
)

// MarkerClass is set on every arrowhead materialized by EmbedMarkers.
const MarkerClass = "marker"

type markerEnd struct {
	attr  string
	start bool
}

var markerEnds = []markerEnd{
	{attr: "marker-start", start: true},
	{attr: "marker-end"},
}

// markerRef returns the id referenced by n's marker property, declared either inline or
// as an attribute.
func markerRef(n *m2scene.Node, attr string) (string, bool) {
	v, ok := n.LookupStyle(attr)
	if !ok {
		v, ok = n.LookupAttr(attr)
	}
	if !ok {
		return "", false
	}
	m := urlRefRe.FindStringSubmatch(v)
	if m == nil {
		// none or garbage, nothing is drawn.
		return "", true
	}
	return m[1], true
}

// EmbedMarkers replaces marker references on lines and paths with ordinary geometry.
//
// For each marked end, the anchor and tangent angle are taken from the end's coordinate
// pair and its neighbour, the line or path is shortened by the trim distance, and a copy
// of the marker's content is appended as the element's next sibling, moved onto the
// anchor and rotated along the tangent. Start markers point backwards. For paths the
// tangent is the chord to the neighbouring coordinate pair rather than the exact curve
// tangent.
func EmbedMarkers(ctx context.Context, root *m2scene.Node, opts *Options) error {
	o, err := opts.withDefaults()
	if err != nil {
		return err
	}
	styles := ComputeStyles(ctx, root)

	marked := root.FindAll(func(n *m2scene.Node) bool {
		if n.Tag != "line" && n.Tag != "path" {
			return false
		}
		for _, e := range markerEnds {
			if _, ok := markerRef(n, e.attr); ok {
				return true
			}
		}
		return false
	})

	for _, n := range marked {
		style, ok := styles[n]
		if !ok {
			// Inside a marker, pattern or other non-rendered container.
			continue
		}
		switch n.Tag {
		case "line":
			embedLineMarkers(ctx, root, n, style, *o.MarkerTrim)
		case "path":
			embedPathMarkers(ctx, root, n, style, *o.MarkerTrim)
		}
	}
	return nil
}

type anchor struct {
	end   markerEnd
	id    string
	point geo.Point
	// angle in degrees along the direction of travel at the end.
	angle float64
}

func (a anchor) valid() bool {
	return a.id != "" && a.point.IsFinite() && !math.IsNaN(a.angle)
}

// takeMarkers removes the marker references of n and returns the ones that resolve to a
// marker element, keyed by property.
func takeMarkers(ctx context.Context, root, n *m2scene.Node) map[string]string {
	refs := make(map[string]string)
	for _, e := range markerEnds {
		if id, ok := markerRef(n, e.attr); ok && id != "" {
			if m := root.FindByID(id); m != nil && m.Tag == "marker" && len(m.Children) > 0 {
				refs[e.attr] = id
			} else {
				log.Debug(ctx, "dropping reference to missing marker", slog.F("marker", id))
			}
		}
		n.DelAttr(e.attr)
		n.DelStyle(e.attr)
	}
	return refs
}

func embedLineMarkers(ctx context.Context, root, n *m2scene.Node, style Style, trim float64) {
	refs := takeMarkers(ctx, root, n)
	if len(refs) == 0 {
		return
	}

	start := geo.NewPoint(attrFloat(n, "x1"), attrFloat(n, "y1"))
	end := geo.NewPoint(attrFloat(n, "x2"), attrFloat(n, "y2"))
	if math.IsNaN(start.X) {
		start.X = 0
	}
	if math.IsNaN(start.Y) {
		start.Y = 0
	}
	if math.IsNaN(end.X) {
		end.X = 0
	}
	if math.IsNaN(end.Y) {
		end.Y = 0
	}
	dir := geo.RadToDeg(start.VectorTo(end).Angle())

	var anchors []anchor
	newStart, newEnd := start, end
	if id := refs["marker-start"]; id != "" {
		anchors = append(anchors, anchor{end: markerEnds[0], id: id, point: start, angle: dir})
		newStart = svg.Shorten(end, start, trim)
	}
	if id := refs["marker-end"]; id != "" {
		anchors = append(anchors, anchor{end: markerEnds[1], id: id, point: end, angle: dir})
		newEnd = svg.Shorten(start, end, trim)
	}
	n.SetAttr("x1", svg.Num(newStart.X))
	n.SetAttr("y1", svg.Num(newStart.Y))
	n.SetAttr("x2", svg.Num(newEnd.X))
	n.SetAttr("y2", svg.Num(newEnd.Y))

	insertArrowheads(ctx, root, n, style, anchors)
}

func embedPathMarkers(ctx context.Context, root, n *m2scene.Node, style Style, trim float64) {
	refs := takeMarkers(ctx, root, n)
	if len(refs) == 0 {
		return
	}
	p, err := svg.ParsePath(n.Attr("d"))
	if err != nil {
		log.Warn(ctx, "dropping markers of unparseable path", slog.Error(err))
		return
	}
	p = p.ToAbsolute()

	var anchors []anchor
	if id := refs["marker-start"]; id != "" {
		if a, next, ok := p.Start(); ok {
			anchors = append(anchors, anchor{end: markerEnds[0], id: id, point: a, angle: geo.RadToDeg(a.VectorTo(next).Angle())})
		}
	}
	if id := refs["marker-end"]; id != "" {
		if a, prev, ok := p.End(); ok {
			anchors = append(anchors, anchor{end: markerEnds[1], id: id, point: a, angle: geo.RadToDeg(prev.VectorTo(a).Angle())})
		}
	}
	for _, a := range anchors {
		if a.end.start {
			p.TrimStart(trim)
		} else {
			p.TrimEnd(trim)
		}
	}
	if len(anchors) > 0 {
		n.SetAttr("d", p.String())
	}

	insertArrowheads(ctx, root, n, style, anchors)
}

// insertArrowheads appends the arrowheads after n in order.
func insertArrowheads(ctx context.Context, root, n *m2scene.Node, style Style, anchors []anchor) {
	prev := n
	for _, a := range anchors {
		if !a.valid() {
			log.Debug(ctx, "skipping degenerate marker", slog.F("marker", a.id), slog.F("anchor", a.point.String()))
			continue
		}
		head := arrowhead(root.FindByID(a.id), a, style)
		prev.InsertAfter(head)
		prev = head
	}
}

// arrowhead copies the content of marker and places it at a. A marker with a single
// child yields a copy of that child, otherwise the content is wrapped in a group.
func arrowhead(marker *m2scene.Node, a anchor, style Style) *m2scene.Node {
	angle := a.angle
	switch orient := strings.TrimSpace(marker.Attr("orient")); orient {
	case "", "auto", "auto-start-reverse":
		if a.end.start {
			angle += 180
		}
	default:
		if deg, err := strconv.ParseFloat(strings.TrimSuffix(orient, "deg"), 64); err == nil {
			angle = deg
		}
	}
	angle = geo.NormalizeDeg(angle)

	scale := 1.0
	if marker.Attr("markerUnits") != "userSpaceOnUse" {
		scale = style.StrokeWidth()
	}

	transforms := []string{
		fmt.Sprintf("translate(%s %s)", svg.Num(a.point.X), svg.Num(a.point.Y)),
		fmt.Sprintf("rotate(%s)", svg.Num(angle)),
		fmt.Sprintf("scale(%s)", svg.Num(scale)),
	}
	if vbScale, ok := markerViewBox(marker); ok {
		transforms = append(transforms, fmt.Sprintf("scale(%s)", svg.Num(vbScale)))
	}
	// refX and refY are in viewBox units, so the reference point lands on the anchor
	// whatever the viewBox origin.
	refX, refY := attrFloat(marker, "refX"), attrFloat(marker, "refY")
	if ref := geo.NewPoint(refX, refY); ref.IsFinite() && !ref.Equals(geo.Point{}) {
		transforms = append(transforms, fmt.Sprintf("translate(%s %s)", svg.Num(-refX), svg.Num(-refY)))
	}

	var head *m2scene.Node
	if len(marker.Children) == 1 {
		head = marker.Children[0].Clone()
		if t := head.Attr("transform"); t != "" {
			transforms = append(transforms, t)
		}
	} else {
		head = m2scene.New("g")
		for _, c := range marker.Children {
			head.AppendChild(c.Clone())
		}
	}
	head.SetAttr("transform", strings.Join(transforms, " "))
	head.SetAttr("class", strings.TrimSpace(MarkerClass+" "+a.end.attr+" "+head.Attr("class")))

	stroke := style["stroke"]
	if stroke == "" || stroke == color.None {
		stroke = style["color"]
	}
	head.Walk(func(c *m2scene.Node) bool {
		c.DelAttr("id")
		paintContext(c, "fill", stroke, style)
		paintContext(c, "stroke", stroke, style)
		return true
	})
	return head
}

// paintContext resolves context paint on a marker glyph. A glyph without any fill takes
// the marked element's stroke.
func paintContext(n *m2scene.Node, property, stroke string, style Style) {
	if n.Tag == "g" {
		return
	}
	v, inline := n.LookupStyle(property)
	if !inline {
		v = n.Attr(property)
	}
	switch strings.TrimSpace(v) {
	case color.ContextStroke:
	case "context-fill":
		stroke = style["fill"]
	case "":
		if property != "fill" {
			return
		}
	default:
		return
	}
	if inline {
		n.SetStyle(property, stroke)
	} else {
		n.SetAttr(property, stroke)
	}
}

func markerViewBox(marker *m2scene.Node) (float64, bool) {
	fields := strings.FieldsFunc(marker.Attr("viewBox"), func(r rune) bool {
		return r == ' ' || r == ','
	})
	if len(fields) != 4 {
		return 0, false
	}
	var vals [4]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return 0, false
		}
		vals[i] = v
	}
	if vals[2] <= 0 || vals[3] <= 0 {
		return 0, false
	}
	w, h := attrFloat(marker, "markerWidth"), attrFloat(marker, "markerHeight")
	if math.IsNaN(w) {
		w = 3
	}
	if math.IsNaN(h) {
		h = 3
	}
	return go2.Min(w/vals[2], h/vals[3]), true
}

func attrFloat(n *m2scene.Node, name string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(n.Attr(name)), "px"), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
