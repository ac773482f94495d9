package sim

import (
	"math"
	"slices"
	"sort"
)

var (
	homogeneous2DParams = []ModelParameter{{Name: "rate", Min: 0, Max: 20}}

	inhomogeneous2DAParams = []ModelParameter{
		{Name: "a", Min: 0, Max: 20},
		{Name: "b", Min: 0, Max: 4},
		{Name: "c", Min: 0, Max: 20},
		{Name: "d", Min: 0, Max: 4},
	}
)

// Homogeneous2D has constant intensity over the plane.
type Homogeneous2D struct {
	rate float64
}

func NewHomogeneous2D(rate float64) (*Homogeneous2D, error) {
	if err := ValidateParameters(homogeneous2DParams, []float64{rate}); err != nil {
		return nil, err
	}
	return &Homogeneous2D{rate: rate}, nil
}

func (p *Homogeneous2D) Intensity(x, y []float64) ([]float64, error) {
	if err := checkSameLength(x, y); err != nil {
		return nil, err
	}
	out := make([]float64, len(x))
	for i := range out {
		out[i] = p.rate
	}
	return out, nil
}

func (p *Homogeneous2D) Simulate(s *Stream, r Rect) (Points2D, error) {
	if err := r.validate(); err != nil {
		return Points2D{}, err
	}
	n := s.Poisson(p.rate * r.Area())
	pts := Points2D{X: make([]float64, n), Y: make([]float64, n)}
	for i := 0; i < n; i++ {
		pts.X[i] = s.Uniform(r.XMin, r.XMax)
		pts.Y[i] = s.Uniform(r.YMin, r.YMax)
	}
	sort.Sort(pts)
	return pts, nil
}

func (p *Homogeneous2D) Parameters() []ModelParameter {
	return slices.Clone(homogeneous2DParams)
}

// Inhomogeneous2DA has intensity λ(x, y) = a·cos²(2πbx) + c·sin²(2πdy), whose
// maximum is a + c.
type Inhomogeneous2DA struct {
	a, b, c, d float64
}

func NewInhomogeneous2DA(a, b, c, d float64) (*Inhomogeneous2DA, error) {
	if err := ValidateParameters(inhomogeneous2DAParams, []float64{a, b, c, d}); err != nil {
		return nil, err
	}
	return &Inhomogeneous2DA{a: a, b: b, c: c, d: d}, nil
}

func (p *Inhomogeneous2DA) at(x, y float64) float64 {
	cx := math.Cos(2 * math.Pi * p.b * x)
	sy := math.Sin(2 * math.Pi * p.d * y)
	return p.a*cx*cx + p.c*sy*sy
}

func (p *Inhomogeneous2DA) Intensity(x, y []float64) ([]float64, error) {
	if err := checkSameLength(x, y); err != nil {
		return nil, err
	}
	out := make([]float64, len(x))
	for i := range out {
		out[i] = p.at(x[i], y[i])
	}
	return out, nil
}

func (p *Inhomogeneous2DA) Simulate(s *Stream, r Rect) (Points2D, error) {
	if err := r.validate(); err != nil {
		return Points2D{}, err
	}
	n := s.Poisson(Integrate2D(p.at, r))
	pts, err := RejectionSample2D(s, p.at, r, n, p.a+p.c)
	if err != nil {
		return Points2D{}, err
	}
	sort.Sort(pts)
	return pts, nil
}

func (p *Inhomogeneous2DA) Parameters() []ModelParameter {
	return slices.Clone(inhomogeneous2DAParams)
}
