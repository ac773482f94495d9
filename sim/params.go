package sim

import (
	"fmt"
	"math"
)

// ModelParameter describes one scalar tunable input of a process.
type ModelParameter struct {
	Name string  `yaml:"name" json:"name"`
	Min  float64 `yaml:"min" json:"min"`
	Max  float64 `yaml:"max" json:"max"`
}

// Contains reports whether v lies in [Min, Max].
func (p ModelParameter) Contains(v float64) bool {
	return v >= p.Min && v <= p.Max
}

// Midpoint is the value a UI slider starts at.
func (p ModelParameter) Midpoint() float64 {
	return 0.5 * (p.Min + p.Max)
}

// ValidateParameters checks that values matches schema in count, finiteness and range.
func ValidateParameters(schema []ModelParameter, values []float64) error {
	if len(values) != len(schema) {
		return fmt.Errorf("%w: want %d, got %d", ErrParameterCount, len(schema), len(values))
	}
	for i, p := range schema {
		v := values[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be a finite number, got %f", ErrInvalidParameter, p.Name, v)
		}
		if !p.Contains(v) {
			return fmt.Errorf("%w: %s must be in [%g, %g], got %g", ErrInvalidParameter, p.Name, p.Min, p.Max, v)
		}
	}
	return nil
}

func validateInterval(lo, hi float64) error {
	if math.IsNaN(lo) || math.IsInf(lo, 0) || math.IsNaN(hi) || math.IsInf(hi, 0) {
		return fmt.Errorf("%w: interval [%f, %f] must be finite", ErrInvalidParameter, lo, hi)
	}
	return nil
}

func validateRate(rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return fmt.Errorf("%w: rate must be a finite number, got %f", ErrInvalidParameter, rate)
	}
	if rate < 0 {
		return fmt.Errorf("%w: rate must be non-negative, got %f", ErrInvalidParameter, rate)
	}
	return nil
}
