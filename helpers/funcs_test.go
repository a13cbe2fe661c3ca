package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErf(t *testing.T) {
	assert.InDelta(t, 0.0, Erf(0), 1e-9)
	assert.InDelta(t, 0.8427008, Erf(1), 1e-6)
	assert.InDelta(t, 0.9953223, Erf(2), 1e-6)
	assert.InDelta(t, -Erf(1.5), Erf(-1.5), 1e-9)
}

func TestNormalCDF(t *testing.T) {
	assert.InDelta(t, 0.5, NormalCDF(0), 1e-9)
	assert.InDelta(t, 0.8413447, NormalCDF(1), 1e-6)
	assert.InDelta(t, 0.9772499, NormalCDF(2), 1e-6)
	assert.InDelta(t, 0.0227501, NormalCDF(-2), 1e-6)
}

func TestMeanAndStdDev(t *testing.T) {
	numbers := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	mean := Mean(numbers)
	assert.InDelta(t, 5.0, mean, 1e-9)
	assert.InDelta(t, 2.13809, StdDev(numbers, mean), 1e-4)

	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, StdDev([]float64{3.0}, 3.0))
}

func TestSum(t *testing.T) {
	assert.Equal(t, 10.0, Sum([]float64{1, 2, 3, 4}))
	assert.Equal(t, 0.0, Sum(nil))
}
