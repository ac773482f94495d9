package sim

import (
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"
)

// HomogeneousPoints draws a realization of a homogeneous Poisson process with the
// given rate on [lo, hi]. The count is Poisson(rate*(hi-lo)) and the points are
// uniform on the interval, returned in ascending order.
// A zero rate or an empty interval yields an empty slice.
func HomogeneousPoints(s *Stream, rate, lo, hi float64) ([]float64, error) {
	if err := validateRate(rate); err != nil {
		return nil, err
	}
	if err := validateInterval(lo, hi); err != nil {
		return nil, err
	}
	if hi <= lo || rate == 0 {
		return []float64{}, nil
	}
	n := s.Poisson(rate * (hi - lo))
	pts := make([]float64, n)
	for i := range pts {
		pts[i] = s.Uniform(lo, hi)
	}
	sort.Float64s(pts)
	return pts, nil
}

// RejectionSample draws exactly n points on [a, b] whose density is proportional to f.
// f must be non-negative and bounded above by fMax on [a, b]. A non-positive or NaN
// fMax means "unknown": the bound is then found by numerically maximizing f.
// The output is unordered.
//
// The loop retries in batches until n points are accepted. Its efficiency is
// mean(f)/fMax, so a bound far above the true maximum makes it slow. Only the
// stream's Limits.MaxCandidates stops it early, with ErrNonTerminating.
func RejectionSample(s *Stream, f func(float64) float64, a, b float64, n int, fMax float64) ([]float64, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: point count must be non-negative, got %d", ErrInvalidParameter, n)
	}
	if n == 0 {
		return []float64{}, nil
	}
	if err := validateInterval(a, b); err != nil {
		return nil, err
	}
	if b <= a {
		return nil, fmt.Errorf("%w: cannot place %d points on empty interval [%g, %g]", ErrInvalidParameter, n, a, b)
	}
	if !(fMax > 0) {
		fMax = Maximize(f, a, b)
		logrus.Debugf("rejection sampling bound on [%g, %g] estimated as %g", a, b, fMax)
	}
	if !(fMax > 0) || math.IsInf(fMax, 0) {
		return nil, fmt.Errorf("%w: density bound must be positive and finite, got %g", ErrInvalidParameter, fMax)
	}

	maxCandidates := s.limits.MaxCandidates
	out := make([]float64, 0, n)
	drawn := 0
	for len(out) < n {
		batch := n - len(out)
		if maxCandidates > 0 {
			if drawn >= maxCandidates {
				return nil, fmt.Errorf("%w: accepted %d of %d points after %d candidates (bound %g)",
					ErrNonTerminating, len(out), n, drawn, fMax)
			}
			batch = min(batch, maxCandidates-drawn)
		}
		for i := 0; i < batch; i++ {
			x := s.Uniform(a, b)
			height := fMax * s.Float64()
			if height <= f(x) {
				out = append(out, x)
			}
		}
		drawn += batch
	}
	return out, nil
}

// RejectionSample2D is RejectionSample over the rectangle r with a joint density f(x, y).
// Returns n unordered points. A non-positive fMax is estimated on a grid.
func RejectionSample2D(s *Stream, f func(x, y float64) float64, r Rect, n int, fMax float64) (Points2D, error) {
	if n < 0 {
		return Points2D{}, fmt.Errorf("%w: point count must be non-negative, got %d", ErrInvalidParameter, n)
	}
	if n == 0 {
		return Points2D{X: []float64{}, Y: []float64{}}, nil
	}
	if err := r.validate(); err != nil {
		return Points2D{}, err
	}
	if r.Area() <= 0 {
		return Points2D{}, fmt.Errorf("%w: cannot place %d points on empty rectangle %v", ErrInvalidParameter, n, r)
	}
	if !(fMax > 0) {
		fMax = Maximize2D(f, r)
		logrus.Debugf("2D rejection sampling bound on %v estimated as %g", r, fMax)
	}
	if !(fMax > 0) || math.IsInf(fMax, 0) {
		return Points2D{}, fmt.Errorf("%w: density bound must be positive and finite, got %g", ErrInvalidParameter, fMax)
	}

	maxCandidates := s.limits.MaxCandidates
	out := Points2D{X: make([]float64, 0, n), Y: make([]float64, 0, n)}
	drawn := 0
	for out.Len() < n {
		batch := n - out.Len()
		if maxCandidates > 0 {
			if drawn >= maxCandidates {
				return Points2D{}, fmt.Errorf("%w: accepted %d of %d points after %d candidates (bound %g)",
					ErrNonTerminating, out.Len(), n, drawn, fMax)
			}
			batch = min(batch, maxCandidates-drawn)
		}
		for i := 0; i < batch; i++ {
			x := s.Uniform(r.XMin, r.XMax)
			y := s.Uniform(r.YMin, r.YMax)
			height := fMax * s.Float64()
			if height <= f(x, y) {
				out.X = append(out.X, x)
				out.Y = append(out.Y, y)
			}
		}
		drawn += batch
	}
	return out, nil
}

// PoissonProcess simulates an inhomogeneous Poisson process with intensity rate on
// [tMin, tMax]. The expected count is the integral of rate over the interval; the
// realized count is Poisson with that mean. Points are placed by draw when it is
// non-nil (closed-form samplers), otherwise by RejectionSample with bound fMax.
// The result is ascending.
func PoissonProcess(s *Stream, rate func(float64) float64, tMin, tMax, fMax float64, draw func(n int) ([]float64, error)) ([]float64, error) {
	if err := validateInterval(tMin, tMax); err != nil {
		return nil, err
	}
	if tMax <= tMin {
		return []float64{}, nil
	}
	mean := Integrate(rate, tMin, tMax)
	if math.IsNaN(mean) || math.IsInf(mean, 0) || mean < 0 {
		return nil, fmt.Errorf("%w: integrated intensity on [%g, %g] is %g", ErrInvalidParameter, tMin, tMax, mean)
	}
	n := s.Poisson(mean)

	var pts []float64
	var err error
	if draw != nil {
		pts, err = draw(n)
	} else {
		pts, err = RejectionSample(s, rate, tMin, tMax, n, fMax)
	}
	if err != nil {
		return nil, err
	}
	sort.Float64s(pts)
	return pts, nil
}
