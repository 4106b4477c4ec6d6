package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDeg(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in  float64
		exp float64
	}{
		{in: 0, exp: 0},
		{in: 180, exp: 180},
		{in: -180, exp: 180},
		{in: 270, exp: -90},
		{in: -270, exp: 90},
		{in: 720 + 45, exp: 45},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.exp, NormalizeDeg(tc.in), tc.in)
	}
}

func TestPrecisionCompare(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, PrecisionCompare(1, 1+PRECISION/2, PRECISION))
	assert.Equal(t, -1, PrecisionCompare(1, 2, PRECISION))
	assert.Equal(t, 1, PrecisionCompare(2, 1, PRECISION))
	assert.Equal(t, 5.0, EuclideanDistance(0, 0, 3, 4))
	assert.Equal(t, -1, Sign(-0.5))
}
