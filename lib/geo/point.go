package geo

import (
	"fmt"
	"math"
	"strings"
)

// Point is a 2D coordinate. Points are passed by value and never mutated in place by
// the functions in this package.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func NewPoint(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p1 Point) Equals(p2 Point) bool {
	return (p1.X == p2.X) && (p1.Y == p2.Y)
}

// Compare orders points by x, then by y.
func (p1 Point) Compare(p2 Point) int {
	xCompare := Sign(p1.X - p2.X)
	if xCompare == 0 {
		return Sign(p1.Y - p2.Y)
	}
	return xCompare
}

// IsFinite reports whether neither coordinate is NaN or infinite.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

func (p Point) DistanceTo(p2 Point) float64 {
	return EuclideanDistance(p.X, p.Y, p2.X, p2.Y)
}

// https://stackoverflow.com/questions/849211/shortest-distance-between-a-point-and-a-line-segment
func (p Point) DistanceToLine(p1, p2 Point) float64 {
	a := p.X - p1.X
	b := p.Y - p1.Y
	c := p2.X - p1.X
	d := p2.Y - p1.Y

	dot := (a * c) + (b * d)
	len_sq := (c * c) + (d * d)

	param := -1.0

	if len_sq != 0 {
		param = dot / len_sq
	}

	var xx float64
	var yy float64

	if param < 0.0 {
		xx = p1.X
		yy = p1.Y
	} else if param > 1.0 {
		xx = p2.X
		yy = p2.Y
	} else {
		xx = p1.X + (param * c)
		yy = p1.Y + (param * d)
	}

	dx := p.X - xx
	dy := p.Y - yy

	return math.Sqrt((dx * dx) + (dy * dy))
}

// point t% of the way between a and b
func (a Point) Interpolate(b Point, t float64) Point {
	return NewPoint(
		a.X*(1.0-t)+b.X*t,
		a.Y*(1.0-t)+b.Y*t,
	)
}

// Midpoint is Interpolate(b, 0.5).
func (a Point) Midpoint(b Point) Point {
	return a.Interpolate(b, 0.5)
}

func (p Point) String() string {
	return fmt.Sprintf("(%v, %v)", p.X, p.Y)
}

type Points []Point

func (points Points) String() string {
	strs := make([]string, 0, len(points))
	for _, p := range points {
		strs = append(strs, p.String())
	}
	return strings.Join(strs, ", ")
}
