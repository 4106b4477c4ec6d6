package geo

import (
	"math"
)

// The vector operations below treat a Point as the vector from the origin to it.

// NewVectorFromAngle returns the vector of the given length pointing at angle
// (radians, counted counter-clockwise from the positive x axis).
func NewVectorFromAngle(length, angleInRadians float64) Point {
	return NewPoint(
		length*math.Cos(angleInRadians),
		length*math.Sin(angleInRadians),
	)
}

func (a Point) Add(b Point) Point {
	return Point{X: a.X + b.X, Y: a.Y + b.Y}
}

func (a Point) Minus(b Point) Point {
	return Point{X: a.X - b.X, Y: a.Y - b.Y}
}

func (a Point) Scale(v float64) Point {
	return Point{X: a.X * v, Y: a.Y * v}
}

func (a Point) Dot(b Point) float64 {
	return a.X*b.X + a.Y*b.Y
}

// Cross returns the z component of the 3D cross product of a and b.
func (a Point) Cross(b Point) float64 {
	return a.X*b.Y - a.Y*b.X
}

func (a Point) Length() float64 {
	return math.Hypot(a.X, a.Y)
}

// Unit returns the unit vector in the direction of a.
// The zero vector yields NaN components.
func (a Point) Unit() Point {
	return a.Scale(1 / a.Length())
}

// Angle returns the direction of a in radians in (-π, π].
func (a Point) Angle() float64 {
	return math.Atan2(a.Y, a.X)
}

// VectorTo creates the vector from start to endpoint.
func (start Point) VectorTo(endpoint Point) Point {
	return endpoint.Minus(start)
}

// Normal returns a rotated 90° counter-clockwise.
func (a Point) Normal() Point {
	return Point{X: -a.Y, Y: a.X}
}

// AddLength extends a by length in its own direction.
func (a Point) AddLength(length float64) Point {
	return a.Unit().Scale(a.Length() + length)
}

// return the line (x1,y1) -> (x2,y2) rotated 90% counter-clockwise (left)
func getNormalVector(x1, y1, x2, y2 float64) (float64, float64) {
	return y1 - y2, x2 - x1
}

func GetUnitNormalVector(x1, y1, x2, y2 float64) (float64, float64) {
	normalX, normalY := getNormalVector(x1, y1, x2, y2)
	length := EuclideanDistance(x1, y1, x2, y2)
	return normalX / length, normalY / length
}
