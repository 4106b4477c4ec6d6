package svg

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"oss.terrastruct.com/m2/lib/geo"
)

func TestNum(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0", Num(0))
	assert.Equal(t, "0", Num(-0.00001))
	assert.Equal(t, "1.5", Num(1.5))
	assert.Equal(t, "3.3333", Num(10.0/3))
	assert.Equal(t, "-12", Num(-12))
}

func TestParsePath(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		d    string
		exp  string
		err  bool
	}{
		{
			name: "simple",
			d:    "M0,0 L10,5",
			exp:  "M 0 0 L 10 5",
		},
		{
			name: "implicit_lineto",
			d:    "M 0 0 10 10 20 0",
			exp:  "M 0 0 L 10 10 L 20 0",
		},
		{
			name: "compact_numbers",
			d:    "M-1.5.5l2-3e1z",
			exp:  "M -1.5 0.5 l 2 -30 z",
		},
		{
			name: "arc_flags",
			d:    "M0 0a5 5 0 015 5",
			exp:  "M 0 0 a 5 5 0 0 1 5 5",
		},
		{
			name: "no_command",
			d:    "10 10",
			err:  true,
		},
		{
			name: "truncated",
			d:    "M 0 0 L 10",
			err:  true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			p, err := ParsePath(tc.d)
			if tc.err {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.exp, p.String())
		})
	}
}

func TestToAbsolute(t *testing.T) {
	t.Parallel()

	p, err := ParsePath("m 10 10 h 5 v 5 l -5 0 c 1 1 2 2 3 3 z L 0 0")
	assert.NoError(t, err)
	assert.Equal(t, "M 10 10 L 15 10 L 15 15 L 10 15 C 11 16 12 17 13 18 Z L 0 0", p.ToAbsolute().String())
}

func TestTrim(t *testing.T) {
	t.Parallel()

	p, err := ParsePath("M 0 0 L 10 0 L 10 10")
	assert.NoError(t, err)
	p = p.ToAbsolute()

	anchor, next, ok := p.Start()
	assert.True(t, ok)
	assert.Equal(t, geo.NewPoint(0, 0), anchor)
	assert.Equal(t, geo.NewPoint(10, 0), next)

	anchor, prev, ok := p.End()
	assert.True(t, ok)
	assert.Equal(t, geo.NewPoint(10, 10), anchor)
	assert.Equal(t, geo.NewPoint(10, 0), prev)

	p.TrimStart(4)
	p.TrimEnd(4)
	assert.Equal(t, "M 4 0 L 10 0 L 10 6", p.String())

	p.TrimEnd(100)
	assert.Equal(t, "M 4 0 L 10 0 L 10 0", p.String())

	single := Path{{Cmd: 'M', Args: []float64{1, 1}}}
	_, _, ok = single.Start()
	assert.False(t, ok)
	single.TrimStart(4)
	assert.Equal(t, "M 1 1", single.String())
}

func TestPolylineData(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "M 0 0 L 1.5 2 L 3 -1", PolylineData([]geo.Point{{X: 0, Y: 0}, {X: 1.5, Y: 2}, {X: 3, Y: -1}}))
	assert.Equal(t, "", PolylineData(nil))
}

func TestEscapeText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a &lt; b &amp;&amp; c", EscapeText("a < b && c"))
}

func TestEscapeAttr(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `url(&quot;#a&quot;) 'b' &lt;c&gt;`, EscapeAttr(`url("#a") 'b' <c>`))
	assert.Equal(t, "a&#xA;b&#x9;c", EscapeAttr("a\nb\tc"))
	assert.Equal(t, `"quoted"`, EscapeText(`"quoted"`))
}
