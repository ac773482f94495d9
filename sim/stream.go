package sim

import (
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// Limits bounds the work a single simulation may do. Zero fields mean unlimited:
// rejection sampling retries and branching continues until they finish.
type Limits struct {
	// MaxCandidates caps the total number of candidate draws in one rejection-sampling call.
	MaxCandidates int `yaml:"max_candidates"`
	// MaxEvents caps the total number of events in one branching simulation.
	MaxEvents int `yaml:"max_events"`
}

// DefaultLimits returns the safety caps used by the CLI.
func DefaultLimits() Limits {
	return Limits{
		MaxCandidates: 50_000_000,
		MaxEvents:     1_000_000,
	}
}

// Stream is the randomness handle threaded through every sampling function.
// It replaces any package-level generator: determinism is controlled entirely by
// the *rand.Rand it wraps.
//
// Thread-safety: NOT thread-safe, like the *rand.Rand it wraps.
type Stream struct {
	rng    *rand.Rand
	limits Limits
}

// NewStream wraps rng with the given limits. rng must not be nil.
func NewStream(rng *rand.Rand, limits Limits) *Stream {
	return &Stream{rng: rng, limits: limits}
}

// NewSeededStream is a convenience for tests and one-shot callers.
func NewSeededStream(seed int64, limits Limits) *Stream {
	return NewStream(rand.New(rand.NewSource(seed)), limits)
}

// Limits returns the limits this stream enforces.
func (s *Stream) Limits() Limits {
	return s.limits
}

// Float64 returns a uniform draw on [0, 1).
func (s *Stream) Float64() float64 {
	return s.rng.Float64()
}

// Uniform returns a uniform draw on [lo, hi).
func (s *Stream) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.rng.Float64()
}

// Poisson draws a Poisson-distributed count with the given mean.
// A non-positive mean always yields 0.
func (s *Stream) Poisson(mean float64) int {
	if mean <= 0 {
		return 0
	}
	return int(distuv.Poisson{Lambda: mean, Src: s.rng}.Rand())
}

// Exponential draws from an exponential distribution with the given scale (mean).
func (s *Stream) Exponential(scale float64) float64 {
	return distuv.Exponential{Rate: 1 / scale, Src: s.rng}.Rand()
}

// Gamma draws from Gamma(shape, scale=1).
func (s *Stream) Gamma(shape float64) float64 {
	return distuv.Gamma{Alpha: shape, Beta: 1, Src: s.rng}.Rand()
}
