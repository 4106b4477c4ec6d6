package geo

import (
	"math"
	"sort"
)

// LineIntersection returns the point where the infinite line through p1 and p2 meets
// the infinite line through p3 and p4, by slope/intercept algebra.
//
// A vertical line has an infinite slope: its known x is substituted into the other
// line's equation. Parallel or coincident lines produce NaN or infinite coordinates,
// which callers must guard against.
func LineIntersection(p1, p2, p3, p4 Point) Point {
	m1 := (p2.Y - p1.Y) / (p2.X - p1.X)
	m2 := (p4.Y - p3.Y) / (p4.X - p3.X)

	switch {
	case math.IsInf(m1, 0) && math.IsInf(m2, 0):
		// both vertical
		return NewPoint(math.NaN(), math.NaN())
	case math.IsInf(m1, 0):
		x := p1.X
		return NewPoint(x, m2*(x-p3.X)+p3.Y)
	case math.IsInf(m2, 0):
		x := p3.X
		return NewPoint(x, m1*(x-p1.X)+p1.Y)
	}

	b1 := p1.Y - m1*p1.X
	b2 := p3.Y - m2*p3.X
	x := (b2 - b1) / (m1 - m2)
	return NewPoint(x, m1*x+b1)
}

// ViewportEndpoints returns the two points where the infinite line through the origin
// along direction crosses the boundary of viewport.
//
// Every edge is tested and each crossing that falls within the finite extent of its
// edge is collected. Pure vertical and pure horizontal directions return the two
// crossings on their axis directly. When more than two crossings are collected, which
// happens when the line passes through a corner, they are sorted by x then y and the
// extremes are returned. That tie-break is deterministic but is not proven correct for
// every corner configuration.
//
// A line that misses the viewport yields NaN for the missing endpoints.
func ViewportEndpoints(direction Point, viewport Box) (Point, Point) {
	minX, maxX := viewport.MinX(), viewport.MaxX()
	minY, maxY := viewport.MinY(), viewport.MaxY()

	if direction.X == 0 {
		return NewPoint(0, minY), NewPoint(0, maxY)
	}
	if direction.Y == 0 {
		return NewPoint(minX, 0), NewPoint(maxX, 0)
	}

	m := direction.Y / direction.X

	var candidates []Point
	for _, x := range []float64{minX, maxX} {
		y := m * x
		if minY <= y && y <= maxY {
			candidates = append(candidates, NewPoint(x, y))
		}
	}
	for _, y := range []float64{minY, maxY} {
		x := y / m
		if minX <= x && x <= maxX {
			candidates = append(candidates, NewPoint(x, y))
		}
	}

	nan := NewPoint(math.NaN(), math.NaN())
	switch len(candidates) {
	case 0:
		return nan, nan
	case 1:
		return candidates[0], nan
	case 2:
		return candidates[0], candidates[1]
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Compare(candidates[j]) < 0
	})
	return candidates[0], candidates[len(candidates)-1]
}
