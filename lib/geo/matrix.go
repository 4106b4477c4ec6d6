package geo

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Matrix is the affine transform
//
//	| A C E |
//	| B D F |
//	| 0 0 1 |
//
// matching the argument order of the SVG matrix(a b c d e f) function.
type Matrix struct {
	A, B, C, D, E, F float64
}

func Identity() Matrix {
	return Matrix{A: 1, D: 1}
}

func Translate(tx, ty float64) Matrix {
	return Matrix{A: 1, D: 1, E: tx, F: ty}
}

func Scale(sx, sy float64) Matrix {
	return Matrix{A: sx, D: sy}
}

func Rotate(deg float64) Matrix {
	rad := DegToRad(deg)
	sin, cos := math.Sincos(rad)
	return Matrix{A: cos, B: sin, C: -sin, D: cos}
}

func SkewX(deg float64) Matrix {
	return Matrix{A: 1, C: math.Tan(DegToRad(deg)), D: 1}
}

func SkewY(deg float64) Matrix {
	return Matrix{A: 1, B: math.Tan(DegToRad(deg)), D: 1}
}

// Mul returns m × n: the transform that applies n first and then m.
func (m Matrix) Mul(n Matrix) Matrix {
	return Matrix{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

func (m Matrix) Apply(p Point) Point {
	return NewPoint(m.A*p.X+m.C*p.Y+m.E, m.B*p.X+m.D*p.Y+m.F)
}

// ScaleFactors returns the horizontal and vertical scale of m as the magnitudes of its
// basis vectors.
func (m Matrix) ScaleFactors() (sx, sy float64) {
	return math.Hypot(m.A, m.B), math.Hypot(m.C, m.D)
}

func (m Matrix) IsIdentity() bool {
	return m == Identity()
}

func (m Matrix) String() string {
	return fmt.Sprintf("matrix(%v %v %v %v %v %v)", m.A, m.B, m.C, m.D, m.E, m.F)
}

var transformFuncRe = regexp.MustCompile(`([a-zA-Z]+)\s*\(([^)]*)\)`)
var transformArgSepRe = regexp.MustCompile(`[\s,]+`)

// ParseTransform parses an SVG transform list into a single matrix.
// The empty string and "none" are the identity.
func ParseTransform(s string) (Matrix, error) {
	m := Identity()
	s = strings.TrimSpace(s)
	if s == "" || s == "none" {
		return m, nil
	}
	rest := transformFuncRe.ReplaceAllString(s, "")
	if strings.Trim(rest, " \t\n,") != "" {
		return Identity(), fmt.Errorf("invalid transform %q", s)
	}
	for _, match := range transformFuncRe.FindAllStringSubmatch(s, -1) {
		args, err := parseTransformArgs(match[2])
		if err != nil {
			return Identity(), fmt.Errorf("invalid transform %q: %w", s, err)
		}
		t, err := transformFunc(match[1], args)
		if err != nil {
			return Identity(), fmt.Errorf("invalid transform %q: %w", s, err)
		}
		m = m.Mul(t)
	}
	return m, nil
}

func parseTransformArgs(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var args []float64
	for _, f := range transformArgSepRe.Split(s, -1) {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

func transformFunc(name string, args []float64) (Matrix, error) {
	arity := func(ns ...int) error {
		for _, n := range ns {
			if len(args) == n {
				return nil
			}
		}
		return fmt.Errorf("%s expects %v arguments, got %d", name, ns, len(args))
	}
	switch name {
	case "matrix":
		if err := arity(6); err != nil {
			return Identity(), err
		}
		return Matrix{args[0], args[1], args[2], args[3], args[4], args[5]}, nil
	case "translate":
		if err := arity(1, 2); err != nil {
			return Identity(), err
		}
		if len(args) == 1 {
			return Translate(args[0], 0), nil
		}
		return Translate(args[0], args[1]), nil
	case "scale":
		if err := arity(1, 2); err != nil {
			return Identity(), err
		}
		if len(args) == 1 {
			return Scale(args[0], args[0]), nil
		}
		return Scale(args[0], args[1]), nil
	case "rotate":
		if err := arity(1, 3); err != nil {
			return Identity(), err
		}
		if len(args) == 1 {
			return Rotate(args[0]), nil
		}
		return Translate(args[1], args[2]).Mul(Rotate(args[0])).Mul(Translate(-args[1], -args[2])), nil
	case "skewX":
		if err := arity(1); err != nil {
			return Identity(), err
		}
		return SkewX(args[0]), nil
	case "skewY":
		if err := arity(1); err != nil {
			return Identity(), err
		}
		return SkewY(args[0]), nil
	default:
		return Identity(), fmt.Errorf("unknown transform function %q", name)
	}
}
