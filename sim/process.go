package sim

import (
	"fmt"
)

// Process1D is a temporal point process.
type Process1D interface {
	// Intensity evaluates λ(t) at every query time. A single scalar and a spread
	// slice are both accepted; the result has the same length as t.
	Intensity(t ...float64) []float64
	// Simulate returns one fresh realization on [tMin, tMax] in ascending order.
	Simulate(s *Stream, tMin, tMax float64) ([]float64, error)
	// Parameters returns the schema the process was constructed from.
	Parameters() []ModelParameter
}

// Process2D is a spatial point process on a rectangle.
type Process2D interface {
	// Intensity evaluates λ(x, y) pointwise. x and y must have equal length.
	Intensity(x, y []float64) ([]float64, error)
	// Simulate returns one fresh realization on r, sorted by x then y.
	Simulate(s *Stream, r Rect) (Points2D, error)
	Parameters() []ModelParameter
}

// Brancher is implemented by trigger processes whose expected total number of
// offspring per parent is known in closed form.
type Brancher interface {
	BranchingRatio() float64
}

// Rect is an axis-aligned simulation window.
type Rect struct {
	XMin, XMax, YMin, YMax float64
}

// Area returns the rectangle area, or 0 if either side is empty.
func (r Rect) Area() float64 {
	if r.XMax <= r.XMin || r.YMax <= r.YMin {
		return 0
	}
	return (r.XMax - r.XMin) * (r.YMax - r.YMin)
}

func (r Rect) validate() error {
	if err := validateInterval(r.XMin, r.XMax); err != nil {
		return err
	}
	return validateInterval(r.YMin, r.YMax)
}

func (r Rect) String() string {
	return fmt.Sprintf("[%g, %g]x[%g, %g]", r.XMin, r.XMax, r.YMin, r.YMax)
}

// Points2D holds n spatial events as two parallel coordinate slices.
type Points2D struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}

func (p Points2D) Len() int { return len(p.X) }

func (p Points2D) Less(i, j int) bool {
	if p.X[i] != p.X[j] {
		return p.X[i] < p.X[j]
	}
	return p.Y[i] < p.Y[j]
}

func (p Points2D) Swap(i, j int) {
	p.X[i], p.X[j] = p.X[j], p.X[i]
	p.Y[i], p.Y[j] = p.Y[j], p.Y[i]
}

// EvaluateIntensity dispatches a coordinate array to a 1D or 2D process.
// coords holds one slice per dimension; a count that does not match the process
// dimensionality, or ragged slices, yield ErrShapeMismatch.
func EvaluateIntensity(p any, coords ...[]float64) ([]float64, error) {
	switch proc := p.(type) {
	case Process1D:
		if len(coords) != 1 {
			return nil, fmt.Errorf("%w: 1D process needs 1 coordinate array, got %d", ErrShapeMismatch, len(coords))
		}
		return proc.Intensity(coords[0]...), nil
	case Process2D:
		if len(coords) != 2 {
			return nil, fmt.Errorf("%w: 2D process needs 2 coordinate arrays, got %d", ErrShapeMismatch, len(coords))
		}
		return proc.Intensity(coords[0], coords[1])
	default:
		return nil, fmt.Errorf("unsupported process type %T", p)
	}
}

func checkSameLength(x, y []float64) error {
	if len(x) != len(y) {
		return fmt.Errorf("%w: x has %d values, y has %d", ErrShapeMismatch, len(x), len(y))
	}
	return nil
}
