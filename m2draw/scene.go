// Package m2draw implements the concrete drawables and the scene document they are
// rendered into.
package m2draw

import (
	"fmt"

	"oss.terrastruct.com/m2/lib/color"
	"oss.terrastruct.com/m2/lib/geo"
	"oss.terrastruct.com/m2/lib/go2"
	"oss.terrastruct.com/m2/lib/svg"
	"oss.terrastruct.com/m2/m2graph"
	"oss.terrastruct.com/m2/m2scene"
)

const (
	DEFAULT_WIDTH  = 640
	DEFAULT_HEIGHT = 480

	// ArrowMarker is the id of the marker defined in every scene.
	ArrowMarker = "arrow"
)

type SceneOptions struct {
	// Width and Height of the document in px. Default 640x480.
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	// Origin is where scene coordinate (0, 0) sits, in px from the top left corner.
	// Defaults to the center.
	Origin *geo.Point `json:"origin"`
	// Background fills the viewport when set.
	Background string `json:"background"`
}

func (opts *SceneOptions) validate() error {
	if opts.Width < 0 || opts.Height < 0 {
		return fmt.Errorf("scene dimensions must be positive: %vx%v", opts.Width, opts.Height)
	}
	if opts.Origin != nil && !opts.Origin.IsFinite() {
		return fmt.Errorf("scene origin must be finite: %v", *opts.Origin)
	}
	if opts.Background != "" {
		if _, err := color.Normalize(opts.Background); err != nil {
			return fmt.Errorf("invalid scene background: %w", err)
		}
	}
	return nil
}

// Noder is implemented by drawables that render into a node.
type Noder interface {
	Node() *m2scene.Node
}

// Scene is the document drawables are added to.
type Scene struct {
	opts *SceneOptions

	root *m2scene.Node
	defs *m2scene.Node
	main *m2scene.Node

	drawables []m2graph.Drawable
}

func NewScene(opts *SceneOptions) (*Scene, error) {
	if opts == nil {
		opts = &SceneOptions{}
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	o := *opts
	o.Width = go2.Default(o.Width, DEFAULT_WIDTH)
	o.Height = go2.Default(o.Height, DEFAULT_HEIGHT)
	if o.Origin == nil {
		o.Origin = go2.Pointer(geo.NewPoint(o.Width/2, o.Height/2))
	}

	s := &Scene{opts: &o}
	vb := s.Viewport()
	s.root = m2scene.New("svg",
		m2scene.Attr{Name: "xmlns", Value: "http://www.w3.org/2000/svg"},
		m2scene.Attr{Name: "xmlns:xlink", Value: "http://www.w3.org/1999/xlink"},
		m2scene.Attr{Name: "width", Value: svg.Num(o.Width)},
		m2scene.Attr{Name: "height", Value: svg.Num(o.Height)},
		m2scene.Attr{Name: "viewBox", Value: fmt.Sprintf("%s %s %s %s", svg.Num(vb.MinX()), svg.Num(vb.MinY()), svg.Num(vb.Width), svg.Num(vb.Height))},
	)
	s.defs = m2scene.New("defs")
	s.defs.AppendChild(arrowMarker())
	s.root.AppendChild(s.defs)

	if o.Background != "" {
		s.root.AppendChild(m2scene.New("rect",
			m2scene.Attr{Name: "class", Value: "background"},
			m2scene.Attr{Name: "x", Value: svg.Num(vb.MinX())},
			m2scene.Attr{Name: "y", Value: svg.Num(vb.MinY())},
			m2scene.Attr{Name: "width", Value: svg.Num(vb.Width)},
			m2scene.Attr{Name: "height", Value: svg.Num(vb.Height)},
			m2scene.Attr{Name: "fill", Value: o.Background},
			m2scene.Attr{Name: "stroke", Value: color.None},
		))
	}

	s.main = m2scene.New("g",
		m2scene.Attr{Name: "class", Value: "main"},
		m2scene.Attr{Name: "color", Value: "#000000"},
		m2scene.Attr{Name: "stroke", Value: "#000000"},
		m2scene.Attr{Name: "stroke-width", Value: "1"},
		m2scene.Attr{Name: "fill", Value: color.None},
	)
	s.root.AppendChild(s.main)
	return s, nil
}

// arrowMarker draws a triangle whose tip sits on the marker's reference point.
func arrowMarker() *m2scene.Node {
	m := m2scene.New("marker",
		m2scene.Attr{Name: "id", Value: ArrowMarker},
		m2scene.Attr{Name: "markerWidth", Value: "6"},
		m2scene.Attr{Name: "markerHeight", Value: "5"},
		m2scene.Attr{Name: "refX", Value: "6"},
		m2scene.Attr{Name: "refY", Value: "2.5"},
		m2scene.Attr{Name: "orient", Value: "auto-start-reverse"},
		m2scene.Attr{Name: "markerUnits", Value: "strokeWidth"},
	)
	m.AppendChild(m2scene.New("path",
		m2scene.Attr{Name: "d", Value: "M 0 0 L 6 2.5 L 0 5 Z"},
		m2scene.Attr{Name: "fill", Value: color.ContextStroke},
		m2scene.Attr{Name: "stroke", Value: color.None},
	))
	return m
}

func (s *Scene) Root() *m2scene.Node {
	return s.root
}

func (s *Scene) Defs() *m2scene.Node {
	return s.defs
}

func (s *Scene) Options() SceneOptions {
	return *s.opts
}

// Viewport returns the visible region in scene coordinates.
func (s *Scene) Viewport() geo.Box {
	return geo.NewBox(geo.NewPoint(-s.opts.Origin.X, -s.opts.Origin.Y), s.opts.Width, s.opts.Height)
}

// Add registers drawables for Update. Drawables with a node are appended to the main
// group in order.
func (s *Scene) Add(ds ...m2graph.Drawable) {
	for _, d := range ds {
		if d == nil {
			continue
		}
		s.drawables = append(s.drawables, d)
		if n, ok := d.(Noder); ok {
			s.main.AppendChild(n.Node())
		}
	}
}

func (s *Scene) Drawables() []m2graph.Drawable {
	return s.drawables
}

// Update recomputes every registered drawable and everything upstream of them.
func (s *Scene) Update() error {
	if err := m2graph.UpdateAll(s.drawables...); err != nil {
		return fmt.Errorf("failed to update scene: %w", err)
	}
	return nil
}
