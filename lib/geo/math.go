package geo

import "math"

// PRECISION is the tolerance under which two coordinates are considered equal.
const PRECISION = 0.0001

func EuclideanDistance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}

// PrecisionCompare orders a and b, treating values closer than e as equal.
func PrecisionCompare(a, b, e float64) int {
	switch {
	case math.Abs(a-b) < e:
		return 0
	case a < b:
		return -1
	default:
		return 1
	}
}

func Sign(v float64) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func RadToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// NormalizeDeg maps an angle in degrees into (-180, 180].
func NormalizeDeg(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg > 180 {
		deg -= 360
	} else if deg <= -180 {
		deg += 360
	}
	return deg
}
