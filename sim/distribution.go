package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// PoissonPMF returns P(K = k) for k = 0..kMax under Poisson(mu).
func PoissonPMF(mu float64, kMax int) ([]float64, error) {
	if math.IsNaN(mu) || math.IsInf(mu, 0) || mu <= 0 {
		return nil, fmt.Errorf("%w: Poisson mean must be positive and finite, got %g", ErrInvalidParameter, mu)
	}
	if kMax < 0 {
		return nil, fmt.Errorf("%w: largest count must be non-negative, got %d", ErrInvalidParameter, kMax)
	}
	d := distuv.Poisson{Lambda: mu}
	out := make([]float64, kMax+1)
	for k := range out {
		out[k] = d.Prob(float64(k))
	}
	return out, nil
}

// BinomialPMF returns P(K = k) for k = 0..kMax under Binomial(n, p).
// Values above n have probability 0.
func BinomialPMF(n int, p float64, kMax int) ([]float64, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: binomial trials must be at least 1, got %d", ErrInvalidParameter, n)
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return nil, fmt.Errorf("%w: binomial probability must be in [0, 1], got %g", ErrInvalidParameter, p)
	}
	if kMax < 0 {
		return nil, fmt.Errorf("%w: largest count must be non-negative, got %d", ErrInvalidParameter, kMax)
	}
	d := distuv.Binomial{N: float64(n), P: p}
	out := make([]float64, kMax+1)
	for k := range out {
		if k <= n {
			out[k] = d.Prob(float64(k))
		}
	}
	return out, nil
}

// PoissonQuantile returns the smallest k with P(K ≤ k) ≥ q under Poisson(mu).
func PoissonQuantile(mu, q float64) int {
	if mu <= 0 {
		return 0
	}
	q = math.Min(q, 1-1e-12)
	d := distuv.Poisson{Lambda: mu}
	k := 0
	for d.CDF(float64(k)) < q {
		k++
	}
	return k
}
