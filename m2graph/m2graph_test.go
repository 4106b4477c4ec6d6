package m2graph

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	Base
	log *[]string
}

func newRecorder(id string, log *[]string) *recorder {
	r := &recorder{Base: NewBase(id), log: log}
	r.SetUpdate(func() {
		*r.log = append(*r.log, r.ID())
	})
	return r
}

func ids(ds []Drawable) []string {
	var out []string
	for _, d := range ds {
		out = append(out, d.ID())
	}
	return out
}

func TestAddDependency(t *testing.T) {
	t.Parallel()

	a := NewPoint("a", 0, 0)
	b := NewPoint("b", 0, 0)
	c := NewBase("c")
	c.AddDependency(a, nil, b, a)
	c.AddDependency()
	assert.Equal(t, []string{"a", "b"}, ids(c.Dependencies()))

	// No update procedure is a no-op.
	c.Update()
}

func TestManualUpdate(t *testing.T) {
	t.Parallel()

	a := NewPoint("a", 0, 0)
	b := NewPoint("b", 4, 2)
	mid := NewPoint("mid", math.NaN(), math.NaN())
	mid.AddDependency(a, b)
	mid.SetUpdate(func() {
		m := a.Point().Midpoint(b.Point())
		mid.Set(m.X, m.Y)
	})

	mid.Update()
	assert.Equal(t, 2.0, mid.X)
	assert.Equal(t, 1.0, mid.Y)

	// Stale until updated again.
	a.Set(2, 2)
	assert.Equal(t, 2.0, mid.X)
	mid.Update()
	mid.Update()
	assert.Equal(t, 3.0, mid.X)
	assert.Equal(t, 2.0, mid.Y)
}

func TestOrder(t *testing.T) {
	t.Parallel()

	var log []string
	a := newRecorder("a", &log)
	b := newRecorder("b", &log)
	c := newRecorder("c", &log)
	d := newRecorder("d", &log)
	b.AddDependency(a)
	c.AddDependency(b, a)
	d.AddDependency(c, b)

	order, err := Order(d, a)
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(order))

	order, err = Order(c, nil, c)
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids(order))

	err = UpdateAll(d)
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, log)
}

func TestCycle(t *testing.T) {
	t.Parallel()

	var log []string
	a := newRecorder("a", &log)
	b := newRecorder("b", &log)
	c := newRecorder("c", &log)
	root := newRecorder("root", &log)
	b.AddDependency(a)
	c.AddDependency(b)
	a.AddDependency(c)
	root.AddDependency(a)

	err := UpdateAll(root)
	assert.True(t, errors.Is(err, ErrCycle))
	assert.Empty(t, log)

	var cerr *CycleError
	assert.True(t, errors.As(err, &cerr))
	assert.Equal(t, []string{"a", "c", "b", "a"}, cerr.Path)
	assert.Equal(t, "dependency cycle: a -> c -> b -> a", err.Error())

	self := newRecorder("self", &log)
	self.AddDependency(self)
	_, err = Order(self)
	assert.ErrorIs(t, err, ErrCycle)

	err = Propagate(a, root)
	assert.ErrorIs(t, err, ErrCycle)
}

func TestPropagate(t *testing.T) {
	t.Parallel()

	var log []string
	a := newRecorder("a", &log)
	b := newRecorder("b", &log)
	c := newRecorder("c", &log)
	other := newRecorder("other", &log)
	d := newRecorder("d", &log)
	b.AddDependency(a)
	c.AddDependency(b)
	d.AddDependency(other)

	err := Propagate(a, d, c)
	assert.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, log)

	log = nil
	err = Propagate(b, a, b, c, d, other)
	assert.NoError(t, err)
	assert.Equal(t, []string{"c"}, log)
}
