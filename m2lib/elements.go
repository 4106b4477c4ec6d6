package m2lib

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"oss.terrastruct.com/m2/lib/color"
	"oss.terrastruct.com/m2/lib/geo"
	"oss.terrastruct.com/m2/lib/go2"
	"oss.terrastruct.com/m2/m2draw"
	"oss.terrastruct.com/m2/m2graph"
	"oss.terrastruct.com/m2/m2tex"
)

const (
	DEFAULT_WAVE_SAMPLES  = 200
	DEFAULT_PRIME_SPACING = 10
	DEFAULT_DOT_RADIUS    = 2
)

type Style struct {
	Stroke           string   `json:"stroke"`
	Fill             string   `json:"fill"`
	StrokeWidth      float64  `json:"strokeWidth"`
	Opacity          *float64 `json:"opacity"`
	NonScalingStroke bool     `json:"nonScalingStroke"`
}

type styler interface {
	Stroke(string)
	Fill(string)
	StrokeWidth(float64)
	Opacity(float64)
	NonScalingStroke()
}

func (s *Style) apply(e styler) error {
	if s == nil {
		return nil
	}
	if s.Stroke != "" {
		if _, err := color.Normalize(s.Stroke); err != nil {
			return err
		}
		e.Stroke(s.Stroke)
	}
	if s.Fill != "" {
		if _, err := color.Normalize(s.Fill); err != nil {
			return err
		}
		e.Fill(s.Fill)
	}
	if s.StrokeWidth < 0 {
		return fmt.Errorf("stroke width must be positive: %v", s.StrokeWidth)
	}
	if s.StrokeWidth > 0 {
		e.StrokeWidth(s.StrokeWidth)
	}
	if s.Opacity != nil {
		e.Opacity(*s.Opacity)
	}
	if s.NonScalingStroke {
		e.NonScalingStroke()
	}
	return nil
}

type common struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Style *Style `json:"style"`
}

type pointElement struct {
	common
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type derivedPointElement struct {
	common
	Of []string `json:"of"`
}

type lineElement struct {
	common
	From  string `json:"from"`
	To    string `json:"to"`
	Arrow string `json:"arrow"`
}

type axisElement struct {
	common
	Direction string `json:"direction"`
	Arrow     string `json:"arrow"`
}

type circleElement struct {
	common
	Center string  `json:"center"`
	R      float64 `json:"r"`
}

type waveElement struct {
	common
	Amplitude float64 `json:"amplitude"`
	Period    float64 `json:"period"`
	From      float64 `json:"from"`
	To        float64 `json:"to"`
	Samples   int     `json:"samples"`
}

type primesElement struct {
	common
	N       int     `json:"n"`
	Spacing float64 `json:"spacing"`
	R       float64 `json:"r"`
}

type labelColor struct {
	TeX   string `json:"tex"`
	Color string `json:"color"`
	// Index colors only that occurrence. All occurrences are colored when nil.
	Index *int `json:"index"`
}

type labelElement struct {
	common
	TeX    string       `json:"tex"`
	At     string       `json:"at"`
	Offset geo.Point    `json:"offset"`
	Align  m2tex.Align  `json:"align"`
	Scale  float64      `json:"scale"`
	Color  string       `json:"color"`
	Colors []labelColor `json:"colors"`
}

func decodeStrict(raw json.RawMessage, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (c *compiler) compileElement(i int, raw json.RawMessage) (err error) {
	var h common
	err = json.Unmarshal(raw, &h)
	if err != nil {
		return fmt.Errorf("elements[%d]: %w", i, err)
	}
	defer func() {
		if err != nil {
			err = fmt.Errorf("elements[%d] (%s %q): %w", i, h.Type, h.ID, err)
		}
	}()

	id := h.ID
	if id == "" {
		id = fmt.Sprintf("%s%d", h.Type, i)
	}
	err = c.claim(id)
	if err != nil {
		return err
	}

	switch h.Type {
	case "point":
		var e pointElement
		if err := decodeStrict(raw, &e); err != nil {
			return err
		}
		return c.compilePoint(id, e)
	case "midpoint", "intersection":
		var e derivedPointElement
		if err := decodeStrict(raw, &e); err != nil {
			return err
		}
		return c.compileDerivedPoint(id, e)
	case "line", "vector":
		var e lineElement
		if err := decodeStrict(raw, &e); err != nil {
			return err
		}
		return c.compileLine(id, e)
	case "axis":
		var e axisElement
		if err := decodeStrict(raw, &e); err != nil {
			return err
		}
		return c.compileAxis(id, e)
	case "circle":
		var e circleElement
		if err := decodeStrict(raw, &e); err != nil {
			return err
		}
		return c.compileCircle(id, e)
	case "wave":
		var e waveElement
		if err := decodeStrict(raw, &e); err != nil {
			return err
		}
		return c.compileWave(id, e)
	case "primes":
		var e primesElement
		if err := decodeStrict(raw, &e); err != nil {
			return err
		}
		return c.compilePrimes(id, e)
	case "label":
		var e labelElement
		if err := decodeStrict(raw, &e); err != nil {
			return err
		}
		return c.compileLabel(id, e)
	case "":
		return errors.New("missing element type")
	default:
		return fmt.Errorf("unknown element type %q", h.Type)
	}
}

func (c *compiler) compilePoint(id string, e pointElement) error {
	p := m2graph.NewPoint(id, e.X, e.Y)
	c.points[id] = p
	c.scene.Add(p)
	return nil
}

func (c *compiler) compileDerivedPoint(id string, e derivedPointElement) error {
	p := m2graph.NewPoint(id, math.NaN(), math.NaN())
	c.points[id] = p
	c.scene.Add(p)

	c.link(func() error {
		if e.Type == "midpoint" {
			ps, err := c.pointsOf(e.Of, 2)
			if err != nil {
				return fmt.Errorf("midpoint %q: %w", id, err)
			}
			a, b := ps[0], ps[1]
			p.AddDependency(a, b)
			p.SetUpdate(func() {
				m := a.Point().Midpoint(b.Point())
				p.Set(m.X, m.Y)
			})
			return nil
		}

		if len(e.Of) != 2 {
			return fmt.Errorf("intersection %q: expected 2 lines, got %d", id, len(e.Of))
		}
		l1, err := c.line(e.Of[0])
		if err != nil {
			return fmt.Errorf("intersection %q: %w", id, err)
		}
		l2, err := c.line(e.Of[1])
		if err != nil {
			return fmt.Errorf("intersection %q: %w", id, err)
		}
		p.AddDependency(l1, l2)
		p.SetUpdate(func() {
			x := geo.LineIntersection(l1.Start(), l1.End(), l2.Start(), l2.End())
			p.Set(x.X, x.Y)
		})
		return nil
	})
	return nil
}

func parseArrow(arrow string) (start, end bool, err error) {
	switch arrow {
	case "", "none":
		return false, false, nil
	case "start":
		return true, false, nil
	case "end":
		return false, true, nil
	case "both":
		return true, true, nil
	}
	return false, false, fmt.Errorf(`unknown arrow %q, expected "start", "end", "both" or "none"`, arrow)
}

func (c *compiler) compileLine(id string, e lineElement) error {
	arrow := e.Arrow
	if e.Type == "vector" {
		arrow = go2.Default(arrow, "end")
	}
	start, end, err := parseArrow(arrow)
	if err != nil {
		return err
	}
	l := m2draw.NewLine(id, geo.Point{}, geo.Point{})
	l.Arrow(start, end)
	err = e.Style.apply(l)
	if err != nil {
		return err
	}
	c.lines[id] = l
	c.scene.Add(l)

	c.link(func() error {
		to, err := c.point(e.To)
		if err != nil {
			return fmt.Errorf("%s %q: %w", e.Type, id, err)
		}
		l.AddDependency(to)
		var from *m2graph.Point
		if e.From != "" || e.Type != "vector" {
			from, err = c.point(e.From)
			if err != nil {
				return fmt.Errorf("%s %q: %w", e.Type, id, err)
			}
			l.AddDependency(from)
		}
		l.SetUpdate(func() {
			// Vectors without an explicit tail start at the origin.
			if from != nil {
				l.SetStart(from.Point())
			}
			l.SetEnd(to.Point())
		})
		return nil
	})
	return nil
}

func (c *compiler) compileAxis(id string, e axisElement) error {
	start, end, err := parseArrow(e.Arrow)
	if err != nil {
		return err
	}
	l := m2draw.NewLine(id, geo.Point{}, geo.Point{})
	l.Arrow(start, end)
	err = e.Style.apply(l)
	if err != nil {
		return err
	}
	c.lines[id] = l
	c.scene.Add(l)

	c.link(func() error {
		dir, err := c.point(e.Direction)
		if err != nil {
			return fmt.Errorf("axis %q: %w", id, err)
		}
		l.AddDependency(dir)
		l.SetUpdate(func() {
			a, b := geo.ViewportEndpoints(dir.Point(), c.scene.Viewport())
			l.SetStart(a)
			l.SetEnd(b)
		})
		return nil
	})
	return nil
}

func (c *compiler) compileCircle(id string, e circleElement) error {
	if e.R < 0 {
		return fmt.Errorf("circle radius must be positive: %v", e.R)
	}
	circle := m2draw.NewCircle(id, geo.Point{}, e.R)
	err := e.Style.apply(circle)
	if err != nil {
		return err
	}
	c.scene.Add(circle)

	c.link(func() error {
		center, err := c.point(e.Center)
		if err != nil {
			return fmt.Errorf("circle %q: %w", id, err)
		}
		circle.AddDependency(center)
		circle.SetUpdate(func() {
			circle.SetCenter(center.Point())
		})
		return nil
	})
	return nil
}

// compileWave plots a trapezoidal wave. y grows downward in the scene so the wave is
// negated to point its crests up.
func (c *compiler) compileWave(id string, e waveElement) error {
	samples := go2.Default(e.Samples, DEFAULT_WAVE_SAMPLES)
	if samples < 2 {
		return fmt.Errorf("a wave needs at least 2 samples, got %d", samples)
	}
	p := m2draw.NewPath(id)
	err := e.Style.apply(p)
	if err != nil {
		return err
	}
	c.scene.Add(p)
	p.SetUpdate(func() {
		p.SetPoints(geo.SampleFunc(func(x float64) float64 {
			return -geo.TrapezoidalWave(x, e.Amplitude, e.Period)
		}, e.From, e.To, samples))
	})
	return nil
}

// compilePrimes draws a dot on the x axis at every prime up to n.
func (c *compiler) compilePrimes(id string, e primesElement) error {
	spacing := go2.Default(e.Spacing, DEFAULT_PRIME_SPACING)
	r := go2.Default(e.R, DEFAULT_DOT_RADIUS)
	if r < 0 {
		return fmt.Errorf("dot radius must be positive: %v", r)
	}
	g := m2draw.NewGroup(id)
	for _, prime := range geo.Primes(e.N) {
		dot := m2draw.NewCircle(fmt.Sprintf("%s-%d", id, prime), geo.NewPoint(float64(prime)*spacing, 0), r)
		dot.Fill(color.CurrentColor)
		dot.Stroke(color.None)
		g.Append(dot)
	}
	err := e.Style.apply(g)
	if err != nil {
		return err
	}
	c.scene.Add(g)
	return nil
}

func (c *compiler) compileLabel(id string, e labelElement) error {
	if c.opts.Typesetter == nil {
		return errors.New("labels need a typesetter")
	}
	l, err := m2tex.NewLabel(id, c.opts.Typesetter, e.TeX, &m2tex.LabelOptions{
		Offset: e.Offset,
		Align:  e.Align,
		Scale:  e.Scale,
		Color:  e.Color,
	})
	if err != nil {
		return err
	}
	for _, lc := range e.Colors {
		if lc.Index != nil {
			err = l.SetMatchColor(lc.TeX, lc.Color, *lc.Index)
		} else {
			err = l.SetColor(lc.TeX, lc.Color)
		}
		if err != nil {
			return err
		}
	}
	c.scene.Add(l)

	c.link(func() error {
		if e.At == "" {
			return nil
		}
		at, err := c.point(e.At)
		if err != nil {
			return fmt.Errorf("label %q: %w", id, err)
		}
		l.AddDependency(at)
		l.SetUpdate(func() {
			l.SetPosition(at.Point())
		})
		return nil
	})
	return nil
}
