// Package m2lib compiles a declarative JSON scene description into a scene.
//
// Every reference between elements becomes a dependency and every geometry is written
// by an update procedure, so a description is positioned entirely by the dependency
// graph. References may point forward. A cycle between elements is a compile error.
package m2lib

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"cdr.dev/slog"

	"oss.terrastruct.com/xdefer"

	"oss.terrastruct.com/m2/lib/geo"
	"oss.terrastruct.com/m2/lib/log"
	"oss.terrastruct.com/m2/m2draw"
	"oss.terrastruct.com/m2/m2graph"
	"oss.terrastruct.com/m2/m2tex"
)

type CompileOptions struct {
	// Typesetter renders label elements. Descriptions without labels do not need one.
	Typesetter m2tex.Typesetter
}

type Description struct {
	Width      float64           `json:"width"`
	Height     float64           `json:"height"`
	Origin     *geo.Point        `json:"origin"`
	Background string            `json:"background"`
	Elements   []json.RawMessage `json:"elements"`
}

// Compile parses input and builds the scene it describes, fully updated.
func Compile(ctx context.Context, input []byte, opts *CompileOptions) (_ *m2draw.Scene, err error) {
	defer xdefer.Errorf(&err, "failed to compile scene")

	if opts == nil {
		opts = &CompileOptions{}
	}

	var desc Description
	dec := json.NewDecoder(bytes.NewReader(input))
	dec.DisallowUnknownFields()
	err = dec.Decode(&desc)
	if err != nil {
		return nil, err
	}

	scene, err := m2draw.NewScene(&m2draw.SceneOptions{
		Width:      desc.Width,
		Height:     desc.Height,
		Origin:     desc.Origin,
		Background: desc.Background,
	})
	if err != nil {
		return nil, err
	}

	c := &compiler{
		ctx:    ctx,
		opts:   opts,
		scene:  scene,
		ids:    make(map[string]struct{}),
		points: make(map[string]*m2graph.Point),
		lines:  make(map[string]*m2draw.Line),
	}
	for i, raw := range desc.Elements {
		err = c.compileElement(i, raw)
		if err != nil {
			return nil, err
		}
	}
	for _, link := range c.links {
		err = link()
		if err != nil {
			return nil, err
		}
	}

	err = scene.Update()
	if err != nil {
		return nil, err
	}
	log.Debug(ctx, "compiled scene", slog.F("elements", len(desc.Elements)), slog.F("drawables", len(scene.Drawables())))
	return scene, nil
}

type compiler struct {
	ctx   context.Context
	opts  *CompileOptions
	scene *m2draw.Scene

	ids    map[string]struct{}
	points map[string]*m2graph.Point
	lines  map[string]*m2draw.Line

	// links resolve references once every element exists.
	links []func() error
}

func (c *compiler) link(fn func() error) {
	c.links = append(c.links, fn)
}

func (c *compiler) point(ref string) (*m2graph.Point, error) {
	p, ok := c.points[ref]
	if !ok {
		return nil, fmt.Errorf("unknown point %q", ref)
	}
	return p, nil
}

func (c *compiler) pointsOf(refs []string, n int) ([]*m2graph.Point, error) {
	if len(refs) != n {
		return nil, fmt.Errorf("expected %d points, got %d", n, len(refs))
	}
	ps := make([]*m2graph.Point, 0, n)
	for _, ref := range refs {
		p, err := c.point(ref)
		if err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	return ps, nil
}

func (c *compiler) line(ref string) (*m2draw.Line, error) {
	l, ok := c.lines[ref]
	if !ok {
		return nil, fmt.Errorf("unknown line %q", ref)
	}
	return l, nil
}

func (c *compiler) claim(id string) error {
	if _, ok := c.ids[id]; ok {
		return fmt.Errorf("duplicate id %q", id)
	}
	c.ids[id] = struct{}{}
	return nil
}
