package color

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mazznoer/csscolorparser"
)

const (
	Empty         = ""
	None          = "none"
	CurrentColor  = "currentColor"
	ContextStroke = "context-stroke"
)

// IsKeyword reports whether s is a paint keyword that is not a concrete color.
func IsKeyword(s string) bool {
	switch strings.TrimSpace(s) {
	case None, CurrentColor, "currentcolor", ContextStroke, "context-fill", "inherit":
		return true
	}
	return strings.HasPrefix(strings.TrimSpace(s), "url(")
}

// Normalize converts any CSS color to lowercase #rrggbb, or #rrggbbaa when not opaque.
// Keywords and paint servers are returned unchanged.
func Normalize(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == Empty || IsKeyword(s) {
		return s, nil
	}
	c, err := csscolorparser.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid color %q: %w", s, err)
	}
	return c.HexString(), nil
}

// FromRGB converts an RGB triple with channels in [0, 255] to #rrggbb.
func FromRGB(r, g, b float64) string {
	return colorful.Color{R: r / 255, G: g / 255, B: b / 255}.Clamped().Hex()
}

// Interpolate blends from a to b in Lab space, t in [0, 1].
func Interpolate(a, b string, t float64) (string, error) {
	ca, err := csscolorparser.Parse(a)
	if err != nil {
		return "", fmt.Errorf("invalid color %q: %w", a, err)
	}
	cb, err := csscolorparser.Parse(b)
	if err != nil {
		return "", fmt.Errorf("invalid color %q: %w", b, err)
	}
	from := colorful.Color{R: ca.R, G: ca.G, B: ca.B}
	to := colorful.Color{R: cb.R, G: cb.G, B: cb.B}
	return from.BlendLab(to, t).Clamped().Hex(), nil
}

func Luminance(colorString string) (float64, error) {
	c, err := csscolorparser.Parse(colorString)
	if err != nil {
		return 0, err
	}

	l := float64(
		float64(0.299)*float64(c.R) +
			float64(0.587)*float64(c.G) +
			float64(0.114)*float64(c.B),
	)
	return l, nil
}
