package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestPoissonPMF(t *testing.T) {
	pmf, err := PoissonPMF(20, 200)

	require.NoError(t, err)
	assert.InDelta(t, 1, floats.Sum(pmf), 1e-9)
	assert.InDelta(t, math.Exp(-20), pmf[0], 1e-15)
	assert.InDelta(t, pmf[19], pmf[20], 1e-12, "Poisson(20) has modes 19 and 20")
}

func TestPoissonPMF_InvalidMean(t *testing.T) {
	for _, mu := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := PoissonPMF(mu, 10)
		assert.ErrorIs(t, err, ErrInvalidParameter, "mu %v", mu)
	}
}

func TestBinomialPMF(t *testing.T) {
	pmf, err := BinomialPMF(10, 0.3, 15)

	require.NoError(t, err)
	require.Len(t, pmf, 16)
	assert.InDelta(t, 1, floats.Sum(pmf), 1e-12)
	for k := 11; k <= 15; k++ {
		assert.Equal(t, 0.0, pmf[k], "k = %d", k)
	}
}

func TestBinomialPMF_Invalid(t *testing.T) {
	_, err := BinomialPMF(0, 0.5, 5)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = BinomialPMF(5, 1.5, 5)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestBinomialPMF_ApproachesPoisson(t *testing.T) {
	// GIVEN n·p = 20 with n large
	binom, err := BinomialPMF(2000, 0.01, 60)
	require.NoError(t, err)
	pois, err := PoissonPMF(20, 60)
	require.NoError(t, err)

	// THEN the pmfs agree closely
	diff := make([]float64, len(binom))
	floats.SubTo(diff, binom, pois)
	assert.Less(t, floats.Norm(diff, math.Inf(1)), 0.002)
}

func TestPoissonQuantile(t *testing.T) {
	assert.Equal(t, 20, PoissonQuantile(20, 0.5))
	assert.Less(t, PoissonQuantile(20, 0.001), PoissonQuantile(20, 0.999))
	assert.Equal(t, 0, PoissonQuantile(0, 0.5))
	assert.Greater(t, PoissonQuantile(5, 1), 5, "q = 1 must terminate")
}

func TestPMF_NegativeKMax(t *testing.T) {
	// GIVEN valid distribution parameters but a negative largest count
	// WHEN the pmfs are tabulated
	// THEN both report an invalid parameter rather than panicking
	assert.NotPanics(t, func() {
		_, err := PoissonPMF(5, -2)
		assert.ErrorIs(t, err, ErrInvalidParameter)
		_, err = BinomialPMF(10, 0.5, -2)
		assert.ErrorIs(t, err, ErrInvalidParameter)
	})

	// AND kMax = 0 still yields P(K = 0)
	pmf, err := PoissonPMF(2, 0)
	require.NoError(t, err)
	require.Len(t, pmf, 1)
	assert.InDelta(t, math.Exp(-2), pmf[0], 1e-12)
}
