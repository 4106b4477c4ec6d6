package geo

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func collinear(a, b, c Point) bool {
	u, v := b.Minus(a), c.Minus(a)
	return math.Abs(u.Cross(v)) <= 1e-9*(1+u.Length()*v.Length())
}

func TestLineIntersection(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name           string
		p1, p2, p3, p4 Point
		exp            Point
	}{
		{
			name: "diagonals",
			p1:   Point{0, 0}, p2: Point{10, 10},
			p3: Point{0, 10}, p4: Point{10, 0},
			exp: Point{5, 5},
		},
		{
			name: "first_vertical",
			p1:   Point{3, -1}, p2: Point{3, 8},
			p3: Point{0, 0}, p4: Point{1, 2},
			exp: Point{3, 6},
		},
		{
			name: "second_vertical",
			p1:   Point{0, 1}, p2: Point{2, 1},
			p3: Point{-4, 0}, p4: Point{-4, 5},
			exp: Point{-4, 1},
		},
		{
			name: "outside_segments",
			p1:   Point{0, 0}, p2: Point{1, 0},
			p3: Point{5, 1}, p4: Point{6, 2},
			exp: Point{4, 0},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := LineIntersection(tc.p1, tc.p2, tc.p3, tc.p4)
			assert.True(t, got.equals(tc.exp), "expected %v, got %v", tc.exp, got)
			assert.True(t, collinear(tc.p1, tc.p2, got))
			assert.True(t, collinear(tc.p3, tc.p4, got))
		})
	}
}

func TestLineIntersectionOnBothLines(t *testing.T) {
	t.Parallel()

	for i := 1; i < 30; i++ {
		f := float64(i)
		p1, p2 := Point{f, -f}, Point{2 * f, f * f / 7}
		p3, p4 := Point{-f, 3}, Point{f / 3, 2*f + 1}
		if math.Abs(p2.Minus(p1).Cross(p4.Minus(p3))) < 1e-9 {
			continue
		}
		got := LineIntersection(p1, p2, p3, p4)
		assert.True(t, collinear(p1, p2, got), fmt.Sprintf("%d: %v", i, got))
		assert.True(t, collinear(p3, p4, got), fmt.Sprintf("%d: %v", i, got))
	}
}

func TestLineIntersectionDegenerate(t *testing.T) {
	t.Parallel()

	parallel := LineIntersection(Point{0, 0}, Point{1, 1}, Point{0, 1}, Point{1, 2})
	assert.False(t, parallel.IsFinite())

	vertical := LineIntersection(Point{0, 0}, Point{0, 1}, Point{2, 0}, Point{2, 1})
	assert.True(t, math.IsNaN(vertical.X))
}

func TestViewportEndpoints(t *testing.T) {
	t.Parallel()

	viewport := NewBox(NewPoint(-100, -50), 200, 100)

	t.Run("vertical", func(t *testing.T) {
		t.Parallel()
		a, b := ViewportEndpoints(Point{0, 3}, viewport)
		assert.Equal(t, Point{0, -50}, a)
		assert.Equal(t, Point{0, 50}, b)
	})

	t.Run("horizontal", func(t *testing.T) {
		t.Parallel()
		a, b := ViewportEndpoints(Point{-2, 0}, viewport)
		assert.Equal(t, Point{-100, 0}, a)
		assert.Equal(t, Point{100, 0}, b)
	})

	t.Run("on_boundary", func(t *testing.T) {
		t.Parallel()
		for _, dir := range []Point{{1, 1}, {1, 0.2}, {-3, 1}, {0.1, 4}, {5, -1}} {
			a, b := ViewportEndpoints(dir, viewport)
			assert.True(t, viewport.OnBoundary(a, PRECISION), "%v: %v", dir, a)
			assert.True(t, viewport.OnBoundary(b, PRECISION), "%v: %v", dir, b)
			assert.True(t, collinear(Point{0, 0}, dir, a))
			assert.True(t, collinear(Point{0, 0}, dir, b))
			assert.False(t, a.Equals(b))
		}
	})

	// The diagonal passes exactly through two corners, so each corner is collected
	// twice. Sorting by x then y and taking the extremes still yields both corners.
	t.Run("corner_tie_break", func(t *testing.T) {
		t.Parallel()
		square := NewBox(NewPoint(-10, -10), 20, 20)
		a, b := ViewportEndpoints(Point{1, 1}, square)
		assert.Equal(t, Point{-10, -10}, a)
		assert.Equal(t, Point{10, 10}, b)
	})

	t.Run("misses_viewport", func(t *testing.T) {
		t.Parallel()
		offset := NewBox(NewPoint(10, 10), 5, 5)
		a, b := ViewportEndpoints(Point{1, -1}, offset)
		assert.False(t, a.IsFinite())
		assert.False(t, b.IsFinite())
	})
}
