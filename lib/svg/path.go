package svg

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"oss.terrastruct.com/m2/lib/geo"
)

// chopPrecision rounds to 4 decimals.
func chopPrecision(f float64) float64 {
	return math.Round(f*10000) / 10000
}

// Num formats f for an attribute value with at most 4 decimals.
func Num(f float64) string {
	f = chopPrecision(f)
	if f == 0 {
		// avoid -0
		f = 0
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// PathCommand is a single path data command with its arguments.
type PathCommand struct {
	Cmd  byte
	Args []float64
}

type Path []PathCommand

var commandArity = map[byte]int{
	'M': 2, 'L': 2, 'H': 1, 'V': 1, 'C': 6, 'S': 4, 'Q': 4, 'T': 2, 'A': 7, 'Z': 0,
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

func isRelative(c byte) bool {
	return c >= 'a' && c <= 'z'
}

// ParsePath parses SVG path data. Implicit command repetition is expanded, so every
// returned command carries exactly its arity's worth of arguments.
func ParsePath(d string) (Path, error) {
	s := &pathScanner{s: d}
	var path Path
	var cmd byte
	for {
		s.skipSeparators()
		if s.eof() {
			break
		}
		c := s.s[s.i]
		if _, ok := commandArity[upper(c)]; ok {
			cmd = c
			s.i++
		} else if cmd == 0 {
			return nil, fmt.Errorf("path data must start with a command, got %q", c)
		} else if upper(cmd) == 'Z' {
			return nil, fmt.Errorf("unexpected %q after close path", c)
		}

		arity := commandArity[upper(cmd)]
		args := make([]float64, 0, arity)
		for i := 0; i < arity; i++ {
			s.skipSeparators()
			var v float64
			var err error
			if upper(cmd) == 'A' && (i == 3 || i == 4) {
				v, err = s.flag()
			} else {
				v, err = s.number()
			}
			if err != nil {
				return nil, fmt.Errorf("invalid path data %q: %w", d, err)
			}
			args = append(args, v)
		}
		path = append(path, PathCommand{Cmd: cmd, Args: args})

		// Implicit commands after a moveto are lineto.
		if cmd == 'M' {
			cmd = 'L'
		} else if cmd == 'm' {
			cmd = 'l'
		}
		if upper(cmd) == 'Z' {
			s.skipSeparators()
			if !s.eof() {
				if _, ok := commandArity[upper(s.s[s.i])]; !ok {
					return nil, fmt.Errorf("invalid path data %q: expected command after close path", d)
				}
			}
		}
	}
	return path, nil
}

type pathScanner struct {
	s string
	i int
}

func (s *pathScanner) eof() bool {
	return s.i >= len(s.s)
}

func (s *pathScanner) skipSeparators() {
	for !s.eof() {
		switch s.s[s.i] {
		case ' ', '\t', '\n', '\r', ',':
			s.i++
		default:
			return
		}
	}
}

func (s *pathScanner) flag() (float64, error) {
	if s.eof() {
		return 0, fmt.Errorf("unexpected end of path data")
	}
	switch s.s[s.i] {
	case '0':
		s.i++
		return 0, nil
	case '1':
		s.i++
		return 1, nil
	}
	return 0, fmt.Errorf("invalid arc flag %q", s.s[s.i])
}

func (s *pathScanner) number() (float64, error) {
	start := s.i
	if !s.eof() && (s.s[s.i] == '+' || s.s[s.i] == '-') {
		s.i++
	}
	digits := 0
	for !s.eof() && s.s[s.i] >= '0' && s.s[s.i] <= '9' {
		s.i++
		digits++
	}
	if !s.eof() && s.s[s.i] == '.' {
		s.i++
		for !s.eof() && s.s[s.i] >= '0' && s.s[s.i] <= '9' {
			s.i++
			digits++
		}
	}
	if digits == 0 {
		s.i = start
		if s.eof() {
			return 0, fmt.Errorf("unexpected end of path data")
		}
		return 0, fmt.Errorf("expected number at %q", s.s[start:])
	}
	if !s.eof() && (s.s[s.i] == 'e' || s.s[s.i] == 'E') {
		j := s.i + 1
		if j < len(s.s) && (s.s[j] == '+' || s.s[j] == '-') {
			j++
		}
		if j < len(s.s) && s.s[j] >= '0' && s.s[j] <= '9' {
			s.i = j
			for !s.eof() && s.s[s.i] >= '0' && s.s[s.i] <= '9' {
				s.i++
			}
		}
	}
	return strconv.ParseFloat(s.s[start:s.i], 64)
}

// ToAbsolute rewrites p with absolute commands only. H and V become L so that every
// drawing command ends on an explicit coordinate pair.
func (p Path) ToAbsolute() Path {
	out := make(Path, 0, len(p))
	var current, subpathStart geo.Point
	for _, c := range p {
		rel := isRelative(c.Cmd)
		offset := func(x, y float64) geo.Point {
			if rel {
				return geo.NewPoint(current.X+x, current.Y+y)
			}
			return geo.NewPoint(x, y)
		}
		switch upper(c.Cmd) {
		case 'M':
			current = offset(c.Args[0], c.Args[1])
			subpathStart = current
			out = append(out, PathCommand{Cmd: 'M', Args: []float64{current.X, current.Y}})
		case 'L', 'T':
			current = offset(c.Args[0], c.Args[1])
			out = append(out, PathCommand{Cmd: upper(c.Cmd), Args: []float64{current.X, current.Y}})
		case 'H':
			x := c.Args[0]
			if rel {
				x += current.X
			}
			current = geo.NewPoint(x, current.Y)
			out = append(out, PathCommand{Cmd: 'L', Args: []float64{current.X, current.Y}})
		case 'V':
			y := c.Args[0]
			if rel {
				y += current.Y
			}
			current = geo.NewPoint(current.X, y)
			out = append(out, PathCommand{Cmd: 'L', Args: []float64{current.X, current.Y}})
		case 'C', 'S', 'Q':
			args := make([]float64, 0, len(c.Args))
			var last geo.Point
			for i := 0; i < len(c.Args); i += 2 {
				last = offset(c.Args[i], c.Args[i+1])
				args = append(args, last.X, last.Y)
			}
			current = last
			out = append(out, PathCommand{Cmd: upper(c.Cmd), Args: args})
		case 'A':
			end := offset(c.Args[5], c.Args[6])
			args := append([]float64{}, c.Args[:5]...)
			args = append(args, end.X, end.Y)
			current = end
			out = append(out, PathCommand{Cmd: 'A', Args: args})
		case 'Z':
			current = subpathStart
			out = append(out, PathCommand{Cmd: 'Z'})
		}
	}
	return out
}

type pairRef struct {
	cmd int
	arg int
}

// pairs lists the coordinate pairs of an absolute path in order. Arcs contribute only
// their endpoint.
func (p Path) pairs() []pairRef {
	var refs []pairRef
	for i, c := range p {
		switch c.Cmd {
		case 'A':
			refs = append(refs, pairRef{i, 5})
		case 'Z':
		default:
			for j := 0; j+1 < len(c.Args); j += 2 {
				refs = append(refs, pairRef{i, j})
			}
		}
	}
	return refs
}

func (p Path) point(r pairRef) geo.Point {
	return geo.NewPoint(p[r.cmd].Args[r.arg], p[r.cmd].Args[r.arg+1])
}

func (p Path) setPoint(r pairRef, pt geo.Point) {
	p[r.cmd].Args[r.arg] = pt.X
	p[r.cmd].Args[r.arg+1] = pt.Y
}

// Start returns the leading coordinate pair of an absolute path and the pair after it.
// ok is false when the path has fewer than two pairs.
func (p Path) Start() (anchor, next geo.Point, ok bool) {
	refs := p.pairs()
	if len(refs) < 2 {
		return geo.Point{}, geo.Point{}, false
	}
	return p.point(refs[0]), p.point(refs[1]), true
}

// End returns the trailing coordinate pair of an absolute path and the pair before it.
func (p Path) End() (anchor, prev geo.Point, ok bool) {
	refs := p.pairs()
	if len(refs) < 2 {
		return geo.Point{}, geo.Point{}, false
	}
	return p.point(refs[len(refs)-1]), p.point(refs[len(refs)-2]), true
}

// TrimStart moves the leading pair of an absolute path toward the following pair by
// dist, never past it.
func (p Path) TrimStart(dist float64) {
	refs := p.pairs()
	if len(refs) < 2 {
		return
	}
	p.setPoint(refs[0], Shorten(p.point(refs[1]), p.point(refs[0]), dist))
}

// TrimEnd moves the trailing pair of an absolute path toward the preceding pair by
// dist, never past it.
func (p Path) TrimEnd(dist float64) {
	refs := p.pairs()
	if len(refs) < 2 {
		return
	}
	last := refs[len(refs)-1]
	p.setPoint(last, Shorten(p.point(refs[len(refs)-2]), p.point(last), dist))
}

// Shorten moves end toward start by dist, clamped to the segment length.
func Shorten(start, end geo.Point, dist float64) geo.Point {
	v := end.Minus(start)
	length := v.Length()
	if length == 0 {
		return end
	}
	if dist >= length {
		return start
	}
	return start.Add(v.Scale((length - dist) / length))
}

func (p Path) String() string {
	var sb strings.Builder
	for i, c := range p {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte(c.Cmd)
		for _, a := range c.Args {
			sb.WriteByte(' ')
			sb.WriteString(Num(a))
		}
	}
	return sb.String()
}

// PolylineData returns path data connecting points with straight segments.
func PolylineData(points []geo.Point) string {
	var sb strings.Builder
	for i, p := range points {
		if i == 0 {
			sb.WriteString("M ")
		} else {
			sb.WriteString(" L ")
		}
		sb.WriteString(Num(p.X))
		sb.WriteByte(' ')
		sb.WriteString(Num(p.Y))
	}
	return sb.String()
}
