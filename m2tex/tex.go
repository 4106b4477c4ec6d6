// Package m2tex renders TeX labels through an injected typesetting engine and matches
// sub-expressions against the typeset output.
package m2tex

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"cdr.dev/slog"

	"oss.terrastruct.com/m2/lib/env"
	"oss.terrastruct.com/m2/lib/geo"
	"oss.terrastruct.com/m2/lib/go2"
	"oss.terrastruct.com/m2/lib/log"
	"oss.terrastruct.com/m2/m2scene"
)

const DEFAULT_PX_PER_EX = 8

var ErrUnavailable = errors.New("typesetting engine unavailable")

// Typesetter turns a TeX string into a typeset glyph tree.
type Typesetter interface {
	Typeset(tex string) (*Tree, error)
}

// Tree is the output of a typesetting engine. Nodes carry data-mml-node with their
// structural kind and leaf glyphs carry data-c with their character code.
type Tree struct {
	Root *m2scene.Node
	// Width and Height are the intrinsic dimensions in px.
	Width  float64
	Height float64
	// ViewBox is the coordinate system of Root's content.
	ViewBox geo.Box
}

// ParseSVG builds a Tree from engine markup whose svg element is sized in ex.
func ParseSVG(markup string, pxPerEx float64) (*Tree, error) {
	root, err := m2scene.ParseString(markup)
	if err != nil {
		return nil, fmt.Errorf("failed to parse typeset markup: %w", err)
	}
	w, err := parseEx(root.Attr("width"))
	if err != nil {
		return nil, fmt.Errorf("invalid typeset width: %w", err)
	}
	h, err := parseEx(root.Attr("height"))
	if err != nil {
		return nil, fmt.Errorf("invalid typeset height: %w", err)
	}
	vb, err := parseViewBox(root.Attr("viewBox"))
	if err != nil {
		return nil, err
	}
	return &Tree{
		Root:    root,
		Width:   w * pxPerEx,
		Height:  h * pxPerEx,
		ViewBox: vb,
	}, nil
}

func parseEx(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, "ex") {
		return 0, fmt.Errorf("expected ex units: %q", s)
	}
	return strconv.ParseFloat(strings.TrimSuffix(s, "ex"), 64)
}

func parseViewBox(s string) (geo.Box, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ','
	})
	if len(fields) != 4 {
		return geo.Box{}, fmt.Errorf("invalid typeset viewBox: %q", s)
	}
	var vals [4]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return geo.Box{}, fmt.Errorf("invalid typeset viewBox: %q", s)
		}
		vals[i] = v
	}
	if vals[2] <= 0 || vals[3] <= 0 {
		return geo.Box{}, fmt.Errorf("invalid typeset viewBox: %q", s)
	}
	return geo.NewBox(geo.NewPoint(vals[0], vals[1]), vals[2], vals[3]), nil
}

type MathJaxOptions struct {
	// Path of the MathJax bundle. Defaults to $M2_MATHJAX.
	Path string
	// PxPerEx converts the engine's ex units to px. Default 8.
	PxPerEx float64
	// Display typesets in display rather than inline mode.
	Display bool
}

func (opts *MathJaxOptions) withDefaults() (MathJaxOptions, error) {
	if opts == nil {
		opts = &MathJaxOptions{}
	}
	o := *opts
	o.Path = go2.Default(o.Path, env.MathJaxPath())
	o.PxPerEx = go2.Default(o.PxPerEx, DEFAULT_PX_PER_EX)
	if o.PxPerEx < 0 {
		return o, fmt.Errorf("px per ex must be positive: %v", o.PxPerEx)
	}
	if o.Path == "" {
		return o, errors.New("no MathJax bundle configured, set $M2_MATHJAX")
	}
	return o, nil
}

// Load returns the MathJax engine or, when it cannot be started, an Unavailable
// typesetter that fails every call.
func Load(ctx context.Context, opts *MathJaxOptions) Typesetter {
	mj, err := NewMathJax(opts)
	if err != nil {
		log.Warn(ctx, "TeX labels will fail to render", slog.Error(err))
		return Unavailable{Err: err}
	}
	return mj
}

// Unavailable is the typesetter used when no engine could be loaded.
type Unavailable struct {
	Err error
}

func (u Unavailable) Typeset(tex string) (*Tree, error) {
	if u.Err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, u.Err)
	}
	return nil, ErrUnavailable
}
