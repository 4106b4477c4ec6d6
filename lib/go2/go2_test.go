package go2

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinMax(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, Min(3, 1, 2))
	assert.Equal(t, 3, Max(3, 1, 2))
	assert.Equal(t, 2.0, Max(math.NaN(), 2))
	assert.Equal(t, 2.0, Min(math.NaN(), 2))
	assert.Equal(t, "a", Min("b", "a"))
}

func TestDefault(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 4.0, Default(0.0, 4))
	assert.Equal(t, 1.0, Default(1.0, 4))
	assert.Equal(t, "x", Default("", "x"))
	assert.Equal(t, 3, *Pointer(3))
	assert.True(t, Contains([]string{"a", "b"}, "b"))
	assert.False(t, Contains(nil, "b"))
}
