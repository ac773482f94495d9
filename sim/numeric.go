package sim

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate/quad"
)

const (
	// Composite Gauss-Legendre: the interval is split into panels, each integrated
	// with a fixed-order rule. Enough panels to resolve cos^2 terms up to ~60 periods.
	quadPanels   = 256
	quad2DPanels = 64
	quadOrder    = 8

	maximizeGrid     = 513
	maximize2DGrid   = 129
	goldenIterations = 80
	invGoldenRatio   = 0.6180339887498949
)

// legendreX and legendreW are the Gauss-Legendre nodes and weights on [0, 1].
var legendreX, legendreW = legendreRule(quadOrder)

func legendreRule(n int) ([]float64, []float64) {
	x := make([]float64, n)
	w := make([]float64, n)
	quad.Legendre{}.FixedLocations(x, w, 0, 1)
	return x, w
}

// Integrate approximates the integral of f over [a, b].
// Returns 0 for an empty or reversed interval.
func Integrate(f func(float64) float64, a, b float64) float64 {
	return integratePanels(f, a, b, quadPanels)
}

func integratePanels(f func(float64) float64, a, b float64, panels int) float64 {
	if !(b > a) {
		return 0
	}
	h := (b - a) / float64(panels)
	sum := 0.0
	for p := 0; p < panels; p++ {
		lo := a + float64(p)*h
		for j, x := range legendreX {
			sum += legendreW[j] * f(lo+h*x)
		}
	}
	return sum * h
}

// Integrate2D approximates the double integral of f over r by nested quadrature.
func Integrate2D(f func(x, y float64) float64, r Rect) float64 {
	if r.Area() <= 0 {
		return 0
	}
	return integratePanels(func(x float64) float64 {
		return integratePanels(func(y float64) float64 { return f(x, y) }, r.YMin, r.YMax, quad2DPanels)
	}, r.XMin, r.XMax, quad2DPanels)
}

// Maximize returns an estimate of the maximum of f on [a, b]: the best point of an
// even grid, refined by golden-section search between its neighbours.
func Maximize(f func(float64) float64, a, b float64) float64 {
	if !(b > a) {
		return f(a)
	}
	xs := floats.Span(make([]float64, maximizeGrid), a, b)
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = f(x)
	}
	best := floats.MaxIdx(ys)
	lo := xs[max(best-1, 0)]
	hi := xs[min(best+1, len(xs)-1)]
	_, refined := goldenMax(f, lo, hi)
	return math.Max(ys[best], refined)
}

// Maximize2D estimates the maximum of f over r on a grid, then refines along
// each axis through the best grid point.
func Maximize2D(f func(x, y float64) float64, r Rect) float64 {
	xs := floats.Span(make([]float64, maximize2DGrid), r.XMin, r.XMax)
	ys := floats.Span(make([]float64, maximize2DGrid), r.YMin, r.YMax)
	bestVal := math.Inf(-1)
	bi, bj := 0, 0
	for i, x := range xs {
		for j, y := range ys {
			if v := f(x, y); v > bestVal {
				bestVal, bi, bj = v, i, j
			}
		}
	}
	bx, by := xs[bi], ys[bj]
	bx, vx := goldenMax(func(x float64) float64 { return f(x, by) },
		xs[max(bi-1, 0)], xs[min(bi+1, len(xs)-1)])
	_, vy := goldenMax(func(y float64) float64 { return f(bx, y) },
		ys[max(bj-1, 0)], ys[min(bj+1, len(ys)-1)])
	return math.Max(bestVal, math.Max(vx, vy))
}

// goldenMax maximizes a unimodal f on [a, b] and returns the argmax and value.
func goldenMax(f func(float64) float64, a, b float64) (float64, float64) {
	if !(b > a) {
		return a, f(a)
	}
	c := b - invGoldenRatio*(b-a)
	d := a + invGoldenRatio*(b-a)
	fc, fd := f(c), f(d)
	for i := 0; i < goldenIterations; i++ {
		if fc > fd {
			b, d, fd = d, c, fc
			c = b - invGoldenRatio*(b-a)
			fc = f(c)
		} else {
			a, c, fc = c, d, fd
			d = a + invGoldenRatio*(b-a)
			fd = f(d)
		}
	}
	x := 0.5 * (a + b)
	return x, f(x)
}
