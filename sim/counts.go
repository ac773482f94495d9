package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// CountingFunction returns the step series of N(t), the number of events up to t,
// for ascending event times tk on [tMin, tMax]. x and y start at (tMin, 0), hold
// one step per event and end at (tMax, len(tk)).
func CountingFunction(tk []float64, tMin, tMax float64) (x, y []float64) {
	x = make([]float64, 0, len(tk)+2)
	y = make([]float64, 0, len(tk)+2)
	x = append(x, tMin)
	y = append(y, 0)
	for i, t := range tk {
		x = append(x, t)
		y = append(y, float64(i+1))
	}
	x = append(x, tMax)
	y = append(y, float64(len(tk)))
	return x, y
}

// CountAt evaluates N(t) on an even grid of n points, for plotting. It returns
// nil when n < 2.
func CountAt(tk []float64, tMin, tMax float64, n int) []float64 {
	if n < 2 {
		return nil
	}
	grid := floats.Span(make([]float64, n), tMin, tMax)
	out := make([]float64, n)
	j := 0
	for i, t := range grid {
		for j < len(tk) && tk[j] <= t {
			j++
		}
		out[i] = float64(j)
	}
	return out
}

// BinCounts bins ascending event times into nBins equal-width bins over [tMin, tMax].
// Events outside the interval are ignored.
func BinCounts(tk []float64, tMin, tMax float64, nBins int) []float64 {
	if nBins < 1 || !(tMax > tMin) {
		return nil
	}
	dividers := floats.Span(make([]float64, nBins+1), tMin, tMax)
	// stat.Histogram requires every value strictly below the last divider.
	dividers[nBins] = math.Nextafter(tMax, math.Inf(1))

	inside := make([]float64, 0, len(tk))
	for _, t := range tk {
		if t >= tMin && t <= tMax {
			inside = append(inside, t)
		}
	}
	if len(inside) == 0 {
		return make([]float64, nBins)
	}
	return stat.Histogram(nil, dividers, inside, nil)
}

// IntensityCurve evaluates p on n evenly spaced points of [tMin, tMax]. Both
// slices are nil when n < 2.
func IntensityCurve(p Process1D, tMin, tMax float64, n int) (x, y []float64) {
	if n < 2 {
		return nil, nil
	}
	x = floats.Span(make([]float64, n), tMin, tMax)
	return x, p.Intensity(x...)
}

// ConditionalIntensityCurve is IntensityCurve given the history r.
func ConditionalIntensityCurve(p BranchingProcess, r Realization, tMin, tMax float64, n int) (x, y []float64) {
	if n < 2 {
		return nil, nil
	}
	x = floats.Span(make([]float64, n), tMin, tMax)
	return x, p.ConditionalIntensity(r, x...)
}

// IntensityGrid evaluates p on an nx-by-ny grid over r. Row j holds y = ys[j].
func IntensityGrid(p Process2D, r Rect, nx, ny int) (xs, ys []float64, z [][]float64, err error) {
	if nx < 2 || ny < 2 {
		return nil, nil, nil, fmt.Errorf("%w: intensity grid needs at least 2x2 points, got %dx%d", ErrInvalidParameter, nx, ny)
	}
	xs = floats.Span(make([]float64, nx), r.XMin, r.XMax)
	ys = floats.Span(make([]float64, ny), r.YMin, r.YMax)
	z = make([][]float64, ny)
	row := make([]float64, nx)
	for j, y := range ys {
		for i := range row {
			row[i] = y
		}
		z[j], err = p.Intensity(xs, row)
		if err != nil {
			return nil, nil, nil, err
		}
	}
	return xs, ys, z, nil
}
