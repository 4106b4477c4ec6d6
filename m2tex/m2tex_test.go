package m2tex_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"oss.terrastruct.com/m2/lib/geo"
	"oss.terrastruct.com/m2/lib/log"
	"oss.terrastruct.com/m2/m2scene"
	"oss.terrastruct.com/m2/m2tex"
	"oss.terrastruct.com/m2/m2tex/m2textest"
)

func typeset(t *testing.T, tex string) *m2tex.Tree {
	ts := &m2textest.Typesetter{}
	tree, err := ts.Typeset(tex)
	if err != nil {
		t.Fatal(err)
	}
	return tree
}

func kinds(nodes []*m2scene.Node) []string {
	var out []string
	for _, n := range nodes {
		out = append(out, n.Attr("data-mml-node"))
	}
	return out
}

func TestParseSVG(t *testing.T) {
	t.Parallel()

	tree := typeset(t, "x+1")
	assert.Equal(t, "svg", tree.Root.Tag)
	assert.Equal(t, 24.0, tree.Width)
	assert.Equal(t, 16.0, tree.Height)
	assert.Equal(t, geo.NewBox(geo.NewPoint(0, -750), 1500, 1000), tree.ViewBox)

	_, err := m2tex.ParseSVG(`<svg width="10px" height="1ex" viewBox="0 0 1 1"></svg>`, 8)
	assert.Error(t, err)
	_, err = m2tex.ParseSVG(`<svg width="1ex" height="1ex" viewBox="0 0 0 1"></svg>`, 8)
	assert.Error(t, err)
	_, err = m2tex.ParseSVG(`<p>nothing</p>`, 8)
	assert.ErrorIs(t, err, m2scene.ErrNoSVG)
}

func TestMatch(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		root      string
		candidate string
		exp       [][]string
	}{
		{
			name:      "repeated",
			root:      "x+y=x",
			candidate: "x",
			exp:       [][]string{{"mi"}, {"mi"}},
		},
		{
			name:      "sequence",
			root:      "x+y=x+y",
			candidate: "x+y",
			exp:       [][]string{{"mi", "mo", "mi"}, {"mi", "mo", "mi"}},
		},
		{
			name:      "itself",
			root:      `x+\frac{1}{y}`,
			candidate: `x+\frac{1}{y}`,
			exp:       [][]string{{"mi", "mo", "mfrac"}},
		},
		{
			name:      "absent",
			root:      "x+y",
			candidate: "z",
		},
		{
			name:      "nested",
			root:      "x^2+x",
			candidate: "x",
			exp:       [][]string{{"mi"}, {"mi"}},
		},
		{
			name:      "structure",
			root:      "x^2+x",
			candidate: "x^2",
			exp:       [][]string{{"msup"}},
		},
		{
			name:      "fraction",
			root:      `1+\frac{a}{b+1}`,
			candidate: "b+1",
			exp:       [][]string{{"mi", "mo", "mn"}},
		},
		{
			name:      "overlapping",
			root:      "aaa",
			candidate: "aa",
			exp:       [][]string{{"mi", "mi"}, {"mi", "mi"}},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			root := typeset(t, tc.root)
			before := root.Root.String()
			matches := m2tex.Match(root.Root, typeset(t, tc.candidate).Root)

			var got [][]string
			for _, m := range matches {
				got = append(got, kinds(m))
			}
			assert.Equal(t, tc.exp, got)
			assert.Equal(t, before, root.Root.String())
		})
	}
}

func TestMatchGlyphRun(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		root      string
		candidate string
		exp       [][]string
	}{
		{
			name:      "prefix",
			root:      "123",
			candidate: "12",
			exp:       [][]string{{"31", "32"}},
		},
		{
			name:      "inner_digit",
			root:      "123",
			candidate: "2",
			exp:       [][]string{{"32"}},
		},
		{
			name:      "repeated_digit",
			root:      "121+1",
			candidate: "1",
			// The trailing 1 is a whole mn and matches as the token itself.
			exp: [][]string{{""}, {"31"}, {"31"}},
		},
		{
			name:      "whole_token",
			root:      "x=12",
			candidate: "12",
			exp:       [][]string{{""}},
		},
		{
			name:      "other_kind",
			root:      "12",
			candidate: "x",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			root := typeset(t, tc.root)
			before := root.Root.String()
			var got [][]string
			for _, m := range m2tex.Match(root.Root, typeset(t, tc.candidate).Root) {
				var chars []string
				for _, n := range m {
					chars = append(chars, n.Attr("data-c"))
				}
				got = append(got, chars)
			}
			assert.Equal(t, tc.exp, got)
			assert.Equal(t, before, root.Root.String())
		})
	}
}

func TestMatchDataC(t *testing.T) {
	t.Parallel()

	root := typeset(t, "x+y")
	matches := m2tex.Match(root.Root, typeset(t, "y").Root)
	if assert.Len(t, matches, 1) {
		assert.Equal(t, "79", matches[0][0].Children[0].Attr("data-c"))
	}

	// The candidate's data-c is optional.
	wildcard, err := m2scene.ParseString(`<svg><g data-mml-node="math"><g data-mml-node="mi"><use/></g></g></svg>`)
	assert.NoError(t, err)
	assert.Len(t, m2tex.Match(root.Root, wildcard), 2)

	// Without a math node the candidate's children are the expression.
	bare, err := m2scene.ParseString(`<svg><g data-mml-node="mo"><use data-c="2B"/></g></svg>`)
	assert.NoError(t, err)
	assert.Len(t, m2tex.Match(root.Root, bare), 1)

	assert.Nil(t, m2tex.Match(root.Root, m2scene.New("svg")))
	assert.Nil(t, m2tex.Match(nil, bare))
}

func TestLabel(t *testing.T) {
	t.Parallel()

	ts := &m2textest.Typesetter{}
	l, err := m2tex.NewLabel("eq", ts, "x+y=x", nil)
	assert.NoError(t, err)
	assert.Equal(t, "eq", l.Node().ID())
	assert.True(t, l.Node().HasClass(m2tex.TeXClass))

	w, h := l.Size()
	assert.Equal(t, 40.0, w)
	assert.Equal(t, 16.0, h)
	l.SetPosition(geo.NewPoint(100, 50))
	assert.Equal(t, "translate(80 42)", l.Node().Attr("transform"))

	for _, n := range l.Node().FindAll(func(n *m2scene.Node) bool { return n.Tag == "use" }) {
		href := n.Attr("xlink:href")
		assert.True(t, strings.HasPrefix(href, "#m2tex-"), href)
		assert.NotNil(t, l.Node().FindByID(strings.TrimPrefix(href, "#")), href)
	}

	assert.NoError(t, l.SetColor("x", "#ff0000"))
	matches, err := l.Matches("x")
	assert.NoError(t, err)
	if assert.Len(t, matches, 2) {
		assert.Equal(t, "#ff0000", matches[0][0].Attr("fill"))
		assert.Equal(t, "#ff0000", matches[1][0].Attr("stroke"))
	}

	assert.NoError(t, l.SetMatchColor("=", "#0000ff", 0))
	eq, err := l.Part("=", 0)
	assert.NoError(t, err)
	assert.Equal(t, "#0000ff", eq.Children[0].Attr("fill"))
	assert.Nil(t, eq.Parent)

	err = l.SetColor("z", "#ff0000")
	assert.True(t, errors.Is(err, m2tex.ErrNoMatch))
	err = l.SetMatchColor("z", "#ff0000", 0)
	assert.True(t, errors.Is(err, m2tex.ErrNoMatch))
	err = l.SetMatchColor("x", "#ff0000", 2)
	assert.True(t, errors.Is(err, m2tex.ErrMatchIndex))
	err = l.SetMatchColor("x", "#ff0000", -1)
	assert.True(t, errors.Is(err, m2tex.ErrMatchIndex))
	_, err = l.Part("y", 1)
	assert.True(t, errors.Is(err, m2tex.ErrMatchIndex))

	l.Color("#00ff00")
	assert.NoError(t, l.SetTeX("a+b"))
	assert.Equal(t, "a+b", l.TeX())
	assert.Equal(t, geo.NewPoint(100, 50), l.Position())
	assert.Equal(t, "#00ff00", l.Node().Attr("color"))
	assert.Len(t, l.Node().Children, 1)
	for _, n := range l.Node().FindAll(func(n *m2scene.Node) bool { return n.HasAttr("data-mml-node") }) {
		assert.False(t, n.HasAttr("fill") && n.Attr("fill") != "currentColor", n.String())
	}
	_, err = l.Matches("x")
	assert.NoError(t, err)

	assert.Error(t, l.SetTeX(`\unknown`))
	assert.Equal(t, "a+b", l.TeX())
}

func TestLabelOptions(t *testing.T) {
	t.Parallel()

	ts := &m2textest.Typesetter{}
	l, err := m2tex.NewLabel("", ts, "x", &m2tex.LabelOptions{
		Offset: geo.NewPoint(1, 2),
		Align:  m2tex.AlignTopLeft,
		Scale:  2,
		Color:  "red",
	})
	assert.NoError(t, err)
	l.SetPosition(geo.NewPoint(10, 10))
	assert.Equal(t, "translate(11 12)", l.Node().Attr("transform"))
	assert.Equal(t, "#ff0000", l.Node().Attr("color"))
	assert.False(t, l.Node().HasAttr("id"))

	w, h := l.Size()
	assert.Equal(t, 16.0, w)
	assert.Equal(t, 32.0, h)

	_, err = m2tex.NewLabel("", ts, "x", &m2tex.LabelOptions{Align: "middle"})
	assert.Error(t, err)
	_, err = m2tex.NewLabel("", ts, "x", &m2tex.LabelOptions{Scale: -1})
	assert.Error(t, err)
	_, err = m2tex.NewLabel("", ts, "x", &m2tex.LabelOptions{Color: "nope"})
	assert.Error(t, err)
}

func TestUnavailable(t *testing.T) {
	t.Parallel()

	ctx := log.WithTB(context.Background(), t, nil)
	ts := m2tex.Load(ctx, &m2tex.MathJaxOptions{Path: "/nonexistent/mathjax.js"})
	_, err := ts.Typeset("x")
	assert.True(t, errors.Is(err, m2tex.ErrUnavailable))

	_, err = m2tex.NewLabel("l", ts, "x", nil)
	assert.True(t, errors.Is(err, m2tex.ErrUnavailable))

	_, err = m2tex.Unavailable{}.Typeset("x")
	assert.Equal(t, m2tex.ErrUnavailable, err)
}
