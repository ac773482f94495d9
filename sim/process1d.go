package sim

import (
	"math"
	"slices"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// Parameter schemas. Ranges bound the values a UI may offer.
var (
	homogeneous1DParams = []ModelParameter{{Name: "λ", Min: 0, Max: 5}}

	periodic1DParams = []ModelParameter{
		{Name: "α", Min: 0, Max: 10},
		{Name: "ω", Min: 0, Max: 5},
	}

	exponentialDecayParams = []ModelParameter{
		{Name: "a", Min: 0, Max: 10},
		{Name: "w", Min: 0.01, Max: 10},
	}

	// Triggers are restricted to a ≤ 1.5 so the sliders stay close to criticality.
	exponentialTriggerParams = []ModelParameter{
		{Name: "a", Min: 0, Max: 1.5},
		{Name: "w", Min: 0.01, Max: 10},
	}

	gammaTriggerParams = []ModelParameter{
		{Name: "a", Min: 0, Max: 1.5},
		{Name: "b", Min: 0.01, Max: 10},
	}
)

// === Homogeneous1D ===

// Homogeneous1D has constant intensity λ(t) = rate.
type Homogeneous1D struct {
	rate float64
}

// NewHomogeneous1D validates rate against its schema.
func NewHomogeneous1D(rate float64) (*Homogeneous1D, error) {
	if err := ValidateParameters(homogeneous1DParams, []float64{rate}); err != nil {
		return nil, err
	}
	return &Homogeneous1D{rate: rate}, nil
}

// Rate returns λ.
func (p *Homogeneous1D) Rate() float64 { return p.rate }

func (p *Homogeneous1D) Intensity(t ...float64) []float64 {
	out := make([]float64, len(t))
	for i := range out {
		out[i] = p.rate
	}
	return out
}

func (p *Homogeneous1D) Simulate(s *Stream, tMin, tMax float64) ([]float64, error) {
	return HomogeneousPoints(s, p.rate, tMin, tMax)
}

func (p *Homogeneous1D) Parameters() []ModelParameter {
	return slices.Clone(homogeneous1DParams)
}

// === Periodic1D ===

// Periodic1D has intensity λ(t) = α·cos²(2πωt), simulated by rejection with bound α.
type Periodic1D struct {
	amplitude float64
	omega     float64
}

// NewPeriodic1D validates amplitude α and frequency ω.
func NewPeriodic1D(amplitude, omega float64) (*Periodic1D, error) {
	if err := ValidateParameters(periodic1DParams, []float64{amplitude, omega}); err != nil {
		return nil, err
	}
	return &Periodic1D{amplitude: amplitude, omega: omega}, nil
}

func (p *Periodic1D) at(t float64) float64 {
	c := math.Cos(2 * math.Pi * p.omega * t)
	return p.amplitude * c * c
}

func (p *Periodic1D) Intensity(t ...float64) []float64 {
	out := make([]float64, len(t))
	for i, ti := range t {
		out[i] = p.at(ti)
	}
	return out
}

func (p *Periodic1D) Simulate(s *Stream, tMin, tMax float64) ([]float64, error) {
	return PoissonProcess(s, p.at, tMin, tMax, p.amplitude, nil)
}

func (p *Periodic1D) Parameters() []ModelParameter {
	return slices.Clone(periodic1DParams)
}

// === ExponentialDecay1D ===

// ExponentialDecay1D has intensity λ(t) = (a/w)·e^(−t/w) for t ≥ 0 and 0 before.
// Its integral over [0, ∞) is a, which makes it the classic Hawkes trigger.
//
// Simulate works in time relative to tMin: it draws Poisson(a) points from an
// exponential with scale w and drops those beyond tMax−tMin instead of
// resampling, so the realized count is slightly below Poisson(a) for short
// intervals.
type ExponentialDecay1D struct {
	a, w   float64
	schema []ModelParameter
}

// NewExponentialDecay1D builds the inhomogeneous-process variant (a ≤ 10).
func NewExponentialDecay1D(a, w float64) (*ExponentialDecay1D, error) {
	return newExponentialDecay(exponentialDecayParams, a, w)
}

// NewExponentialTrigger builds the trigger variant (a ≤ 1.5).
func NewExponentialTrigger(a, w float64) (*ExponentialDecay1D, error) {
	return newExponentialDecay(exponentialTriggerParams, a, w)
}

func newExponentialDecay(schema []ModelParameter, a, w float64) (*ExponentialDecay1D, error) {
	if err := ValidateParameters(schema, []float64{a, w}); err != nil {
		return nil, err
	}
	return &ExponentialDecay1D{a: a, w: w, schema: schema}, nil
}

func (p *ExponentialDecay1D) Intensity(t ...float64) []float64 {
	out := make([]float64, len(t))
	for i, ti := range t {
		if ti >= 0 {
			out[i] = (p.a / p.w) * math.Exp(-ti/p.w)
		}
	}
	return out
}

func (p *ExponentialDecay1D) Simulate(s *Stream, tMin, tMax float64) ([]float64, error) {
	return truncatedDraws(s, p.a, tMin, tMax, func() float64 { return s.Exponential(p.w) })
}

// BranchingRatio is the expected number of points over [0, ∞).
func (p *ExponentialDecay1D) BranchingRatio() float64 { return p.a }

func (p *ExponentialDecay1D) Parameters() []ModelParameter {
	return slices.Clone(p.schema)
}

// === Gamma1D ===

// Gamma1D has intensity λ(t) = a·Gamma(b).pdf(t), a gamma density with shape b and
// unit scale. Simulation truncates like ExponentialDecay1D.
type Gamma1D struct {
	a, b float64
	pdf  distuv.Gamma
}

// NewGammaTrigger validates a and the shape b.
func NewGammaTrigger(a, b float64) (*Gamma1D, error) {
	if err := ValidateParameters(gammaTriggerParams, []float64{a, b}); err != nil {
		return nil, err
	}
	return &Gamma1D{a: a, b: b, pdf: distuv.Gamma{Alpha: b, Beta: 1}}, nil
}

func (p *Gamma1D) Intensity(t ...float64) []float64 {
	out := make([]float64, len(t))
	for i, ti := range t {
		if ti >= 0 {
			out[i] = p.a * p.pdf.Prob(ti)
		}
	}
	return out
}

func (p *Gamma1D) Simulate(s *Stream, tMin, tMax float64) ([]float64, error) {
	return truncatedDraws(s, p.a, tMin, tMax, func() float64 { return s.Gamma(p.b) })
}

// BranchingRatio is the expected number of points over [0, ∞).
func (p *Gamma1D) BranchingRatio() float64 { return p.a }

func (p *Gamma1D) Parameters() []ModelParameter {
	return slices.Clone(gammaTriggerParams)
}

// truncatedDraws draws Poisson(total) offsets from draw and keeps those within the
// interval length, in ascending order.
func truncatedDraws(s *Stream, total, tMin, tMax float64, draw func() float64) ([]float64, error) {
	if err := validateInterval(tMin, tMax); err != nil {
		return nil, err
	}
	horizon := tMax - tMin
	if horizon < 0 {
		return []float64{}, nil
	}
	n := s.Poisson(total)
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if d := draw(); d <= horizon {
			out = append(out, d)
		}
	}
	sort.Float64s(out)
	return out, nil
}
