package geo

import "math"

// TrapezoidalWave evaluates a trapezoid wave with the given amplitude and period at x.
//
// Each period is split into quarters: a linear rise from -amplitude to amplitude, a
// plateau at amplitude, a linear fall back to -amplitude, and a plateau at -amplitude.
// A non-positive period yields NaN.
func TrapezoidalWave(x, amplitude, period float64) float64 {
	if period <= 0 {
		return math.NaN()
	}
	t := math.Mod(x, period) / period
	if t < 0 {
		t++
	}
	switch {
	case t < 0.25:
		return -amplitude + 2*amplitude*(t/0.25)
	case t < 0.5:
		return amplitude
	case t < 0.75:
		return amplitude - 2*amplitude*((t-0.5)/0.25)
	default:
		return -amplitude
	}
}

// SampleFunc samples fn over [from, to] at n evenly spaced x values, n >= 2.
func SampleFunc(fn func(float64) float64, from, to float64, n int) []Point {
	if n < 2 {
		n = 2
	}
	points := make([]Point, 0, n)
	step := (to - from) / float64(n-1)
	for i := 0; i < n; i++ {
		x := from + float64(i)*step
		points = append(points, NewPoint(x, fn(x)))
	}
	return points
}
