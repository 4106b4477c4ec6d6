package geo

import "fmt"

// Box is an axis-aligned rectangle. With y pointing down, TopLeft holds the minimum
// coordinates.
type Box struct {
	TopLeft Point
	Width   float64
	Height  float64
}

func NewBox(tl Point, width, height float64) Box {
	return Box{
		TopLeft: tl,
		Width:   width,
		Height:  height,
	}
}

func (b Box) MinX() float64 { return b.TopLeft.X }
func (b Box) MinY() float64 { return b.TopLeft.Y }
func (b Box) MaxX() float64 { return b.TopLeft.X + b.Width }
func (b Box) MaxY() float64 { return b.TopLeft.Y + b.Height }

func (b Box) Center() Point {
	return NewPoint(b.TopLeft.X+b.Width/2, b.TopLeft.Y+b.Height/2)
}

// Contains reports whether p lies within b, boundary included.
func (b Box) Contains(p Point) bool {
	return p.X >= b.MinX() && p.X <= b.MaxX() && p.Y >= b.MinY() && p.Y <= b.MaxY()
}

// OnBoundary reports whether p lies on one of b's edges within e.
func (b Box) OnBoundary(p Point, e float64) bool {
	withinX := PrecisionCompare(p.X, b.MinX(), e) >= 0 && PrecisionCompare(p.X, b.MaxX(), e) <= 0
	withinY := PrecisionCompare(p.Y, b.MinY(), e) >= 0 && PrecisionCompare(p.Y, b.MaxY(), e) <= 0
	onX := PrecisionCompare(p.X, b.MinX(), e) == 0 || PrecisionCompare(p.X, b.MaxX(), e) == 0
	onY := PrecisionCompare(p.Y, b.MinY(), e) == 0 || PrecisionCompare(p.Y, b.MaxY(), e) == 0
	return (onX && withinY) || (onY && withinX)
}

func (b Box) String() string {
	return fmt.Sprintf("{TopLeft: %s, Width: %.0f, Height: %.0f}", b.TopLeft.String(), b.Width, b.Height)
}
