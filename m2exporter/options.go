package m2exporter

import (
	"fmt"
	"math"
	"strings"

	"oss.terrastruct.com/m2/lib/go2"
)

// Target is the tool an exported document is tuned for.
type Target string

const (
	TargetBrowser     Target = "browser"
	TargetIllustrator Target = "illustrator"
	TargetFigma       Target = "figma"
)

var Targets = []Target{TargetBrowser, TargetIllustrator, TargetFigma}

func ParseTarget(s string) (Target, error) {
	t := Target(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return TargetBrowser, nil
	}
	if !go2.Contains(Targets, t) {
		return "", fmt.Errorf("unknown export target %q, expected one of %v", s, Targets)
	}
	return t, nil
}

const (
	DEFAULT_MARKER_TRIM = 4

	// IllustratorTeXScale compensates Illustrator reading px as pt in typeset content.
	IllustratorTeXScale = 0.75
)

type Options struct {
	// Target defaults to TargetBrowser.
	Target Target `json:"target"`
	// MarkerTrim is how far lines and paths are shortened at every end that carries a
	// marker, in user units. Default 4.
	MarkerTrim *float64 `json:"markerTrim"`
	// NoXMLTag omits the XML declaration from the serialized document.
	NoXMLTag bool `json:"noXMLTag"`
}

func (opts *Options) withDefaults() (Options, error) {
	if opts == nil {
		opts = &Options{}
	}
	o := *opts
	o.Target = go2.Default(o.Target, TargetBrowser)
	if !go2.Contains(Targets, o.Target) {
		return o, fmt.Errorf("unknown export target %q", o.Target)
	}
	if o.MarkerTrim == nil {
		o.MarkerTrim = go2.Pointer(float64(DEFAULT_MARKER_TRIM))
	}
	if *o.MarkerTrim < 0 || math.IsNaN(*o.MarkerTrim) || math.IsInf(*o.MarkerTrim, 0) {
		return o, fmt.Errorf("marker trim must be a finite non-negative distance: %v", *o.MarkerTrim)
	}
	return o, nil
}
