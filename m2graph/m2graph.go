// Package m2graph implements the dependency graph between drawables.
//
// Every drawable lists the upstream drawables its geometry is computed from and carries
// an update procedure that recomputes that geometry. Nothing propagates automatically:
// callers run Update in dependency order by hand or through UpdateAll and Propagate.
package m2graph

import (
	"errors"
	"fmt"
	"strings"

	"oss.terrastruct.com/m2/lib/geo"
)

type Drawable interface {
	ID() string
	Dependencies() []Drawable
	// Update recomputes the drawable's own geometry from its dependencies. It must be
	// idempotent.
	Update()
}

// Base implements Drawable and is meant to be embedded.
type Base struct {
	id     string
	deps   []Drawable
	update func()
}

func NewBase(id string) Base {
	return Base{id: id}
}

func (b *Base) ID() string {
	return b.id
}

func (b *Base) SetID(id string) {
	b.id = id
}

func (b *Base) Dependencies() []Drawable {
	return b.deps
}

// AddDependency registers upstream drawables. nil values and drawables already
// registered are ignored. Cycles are not rejected here.
func (b *Base) AddDependency(upstream ...Drawable) {
outer:
	for _, d := range upstream {
		if d == nil {
			continue
		}
		for _, existing := range b.deps {
			if existing == d {
				continue outer
			}
		}
		b.deps = append(b.deps, d)
	}
}

// SetUpdate replaces the update procedure.
func (b *Base) SetUpdate(fn func()) {
	b.update = fn
}

func (b *Base) Update() {
	if b.update != nil {
		b.update()
	}
}

// Point is a raw data point. It renders nothing and is used as an upstream value.
type Point struct {
	Base
	X float64
	Y float64
}

func NewPoint(id string, x, y float64) *Point {
	return &Point{
		Base: NewBase(id),
		X:    x,
		Y:    y,
	}
}

func (p *Point) Set(x, y float64) {
	p.X = x
	p.Y = y
}

func (p *Point) Point() geo.Point {
	return geo.NewPoint(p.X, p.Y)
}

var ErrCycle = errors.New("dependency cycle")

type CycleError struct {
	// Path lists the drawable IDs on the cycle, starting and ending with the same one.
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: %s", ErrCycle, strings.Join(e.Path, " -> "))
}

func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}

// Order returns ds and all their transitive dependencies with every drawable placed
// after its dependencies. Ties follow the first-seen depth-first order of ds.
func Order(ds ...Drawable) ([]Drawable, error) {
	const (
		white = iota
		gray
		black
	)

	color := make(map[Drawable]int)
	var order []Drawable
	var stack []Drawable

	var visit func(d Drawable) error
	visit = func(d Drawable) error {
		color[d] = gray
		stack = append(stack, d)
		for _, dep := range d.Dependencies() {
			switch color[dep] {
			case white:
				if err := visit(dep); err != nil {
					return err
				}
			case gray:
				return newCycleError(stack, dep)
			}
		}
		stack = stack[:len(stack)-1]
		color[d] = black
		order = append(order, d)
		return nil
	}

	for _, d := range ds {
		if d == nil || color[d] != white {
			continue
		}
		if err := visit(d); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func newCycleError(stack []Drawable, start Drawable) *CycleError {
	i := len(stack) - 1
	for ; i > 0; i-- {
		if stack[i] == start {
			break
		}
	}
	path := make([]string, 0, len(stack)-i+1)
	for _, d := range stack[i:] {
		path = append(path, d.ID())
	}
	path = append(path, start.ID())
	return &CycleError{Path: path}
}

// UpdateAll updates ds and their transitive dependencies in dependency order. A cycle is
// reported before any drawable is updated.
func UpdateAll(ds ...Drawable) error {
	order, err := Order(ds...)
	if err != nil {
		return err
	}
	for _, d := range order {
		d.Update()
	}
	return nil
}

// Propagate updates, in dependency order, the drawables reachable from all that
// transitively depend on changed. changed itself is not updated.
func Propagate(changed Drawable, all ...Drawable) error {
	order, err := Order(all...)
	if err != nil {
		return err
	}
	dirty := map[Drawable]bool{
		changed: true,
	}
	for _, d := range order {
		if d == changed {
			continue
		}
		for _, dep := range d.Dependencies() {
			if dirty[dep] {
				dirty[d] = true
				break
			}
		}
		if dirty[d] {
			d.Update()
		}
	}
	return nil
}
