package m2draw

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"oss.terrastruct.com/m2/lib/geo"
	"oss.terrastruct.com/m2/lib/go2"
	"oss.terrastruct.com/m2/m2graph"
)

func TestNewScene(t *testing.T) {
	t.Parallel()

	s, err := NewScene(nil)
	assert.NoError(t, err)
	assert.Equal(t, "-320 -240 640 480", s.Root().Attr("viewBox"))
	assert.Equal(t, geo.NewBox(geo.NewPoint(-320, -240), 640, 480), s.Viewport())

	marker := s.Root().FindByID(ArrowMarker)
	if assert.NotNil(t, marker) {
		assert.Equal(t, s.Defs(), marker.Parent)
		assert.Equal(t, "strokeWidth", marker.Attr("markerUnits"))
	}

	s, err = NewScene(&SceneOptions{
		Width:      100,
		Height:     50,
		Origin:     go2.Pointer(geo.NewPoint(10, 40)),
		Background: "white",
	})
	assert.NoError(t, err)
	assert.Equal(t, "-10 -40 100 50", s.Root().Attr("viewBox"))
	bg := s.Root().Children[1]
	assert.Equal(t, "rect", bg.Tag)
	assert.Equal(t, "white", bg.Attr("fill"))
}

func TestSceneOptionsValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		opts SceneOptions
	}{
		{
			name: "negative_width",
			opts: SceneOptions{Width: -1},
		},
		{
			name: "bad_origin",
			opts: SceneOptions{Origin: go2.Pointer(geo.NewPoint(math.NaN(), 0))},
		},
		{
			name: "bad_background",
			opts: SceneOptions{Background: "notacolor"},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewScene(&tc.opts)
			assert.Error(t, err)
		})
	}
}

func TestSceneUpdate(t *testing.T) {
	t.Parallel()

	s, err := NewScene(nil)
	assert.NoError(t, err)

	a := m2graph.NewPoint("a", 0, 0)
	b := m2graph.NewPoint("b", 10, 0)
	l := NewLine("l", geo.Point{}, geo.Point{})
	l.AddDependency(a, b)
	l.SetUpdate(func() {
		l.SetStart(a.Point())
		l.SetEnd(b.Point())
	})
	l.Arrow(false, true)
	l.Stroke("#ff0000")
	s.Add(l)

	assert.NoError(t, s.Update())
	assert.Equal(t, geo.NewPoint(10, 0), l.End())
	assert.Equal(t, "url(#arrow)", l.Node().Attr("marker-end"))
	assert.False(t, l.Node().HasAttr("marker-start"))
	assert.Equal(t, "l", l.Node().ID())

	main := s.Root().Children[len(s.Root().Children)-1]
	assert.Equal(t, main, l.Node().Parent)

	b.Set(5, 5)
	assert.NoError(t, m2graph.Propagate(b, s.Drawables()...))
	assert.Equal(t, geo.NewPoint(5, 5), l.End())

	c := NewCircle("c", geo.Point{}, 1)
	d := NewCircle("d", geo.Point{}, 1)
	c.AddDependency(d)
	d.AddDependency(c)
	s.Add(c, d)
	assert.ErrorIs(t, s.Update(), m2graph.ErrCycle)
}

func TestDrawables(t *testing.T) {
	t.Parallel()

	p := NewPath("")
	p.SetPoints([]geo.Point{{X: 0, Y: 0}, {X: math.NaN(), Y: 1}, {X: 1, Y: 2}})
	assert.Equal(t, "M 0 0 L 1 2", p.D())
	assert.False(t, p.Node().HasAttr("id"))
	p.NonScalingStroke()
	assert.Equal(t, "non-scaling-stroke", p.Node().Attr("vector-effect"))

	c := NewCircle("c", geo.NewPoint(1, 2), 3)
	assert.Equal(t, geo.NewPoint(1, 2), c.Center())
	assert.Equal(t, 3.0, c.Radius())
	c.Fill("blue")
	c.StrokeWidth(0.5)
	assert.Equal(t, "blue", c.Node().Attr("fill"))
	assert.Equal(t, "0.5", c.Node().Attr("stroke-width"))

	g := NewGroup("g")
	g.SetTranslate(geo.NewPoint(1.5, -2))
	g.Append(c, nil)
	g.AddClass("tex")
	g.AddClass("tex")
	assert.Equal(t, "translate(1.5 -2)", g.Node().Attr("transform"))
	assert.Equal(t, "tex", g.Node().Attr("class"))
	assert.Equal(t, g.Node(), c.Node().Parent)
	assert.Len(t, g.Dependencies(), 1)
}
