// Package testutil provides shared statistical assertion helpers for the point
// process tests in sim/ and its sub-packages. It has no dependency on sim/.
package testutil

import (
	"math"
	"sort"
	"testing"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// KSCritical001 is the asymptotic Kolmogorov-Smirnov coefficient for a
// significance level of 0.001: reject when sqrt(n)·D exceeds it.
const KSCritical001 = 1.949

// PoissonBand returns the [lowerQ, upperQ] quantile band of Poisson(mu).
func PoissonBand(mu, lowerQ, upperQ float64) (lo, hi int) {
	d := distuv.Poisson{Lambda: mu}
	for d.CDF(float64(lo)) < lowerQ {
		lo++
	}
	hi = lo
	for d.CDF(float64(hi)) < upperQ {
		hi++
	}
	return lo, hi
}

// KSUniform returns the Kolmogorov-Smirnov statistic D between the sample and
// the uniform distribution on [a, b].
func KSUniform(sample []float64, a, b float64) float64 {
	xs := append([]float64(nil), sample...)
	sort.Float64s(xs)
	n := float64(len(xs))
	d := 0.0
	for i, x := range xs {
		cdf := (x - a) / (b - a)
		d = math.Max(d, math.Max(float64(i+1)/n-cdf, cdf-float64(i)/n))
	}
	return d
}

// AssertUniform fails t when the sample is distinguishable from uniform on [a, b]
// at the 0.001 level.
func AssertUniform(t *testing.T, sample []float64, a, b float64) {
	t.Helper()
	if len(sample) == 0 {
		t.Fatal("AssertUniform: empty sample")
	}
	d := KSUniform(sample, a, b)
	if scaled := math.Sqrt(float64(len(sample))) * d; scaled > KSCritical001 {
		t.Errorf("sample of %d is not uniform on [%g, %g]: KS D = %.4f (sqrt(n)·D = %.3f > %.3f)",
			len(sample), a, b, d, scaled, KSCritical001)
	}
}

// AssertMeanWithin fails t when the mean of counts differs from want by more
// than sigmas standard errors, using the sample variance.
func AssertMeanWithin(t *testing.T, counts []float64, want, sigmas float64) {
	t.Helper()
	mean, variance := stat.MeanVariance(counts, nil)
	se := math.Sqrt(variance / float64(len(counts)))
	if se == 0 {
		se = 1e-12
	}
	if math.Abs(mean-want) > sigmas*se {
		t.Errorf("mean = %.4f, want %.4f ± %.1f·%.4f", mean, want, sigmas, se)
	}
}
