// Package scenario loads point-process simulation scenarios from YAML and turns
// them into runnable simulations.
package scenario

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/pointp-sim/pointp-sim/sim"
)

// CurrentVersion is the scenario schema version written by this package.
const CurrentVersion = "1"

// Default simulation windows when bounds are omitted.
var (
	DefaultBounds1D = []float64{0, 10}
	DefaultBounds2D = []float64{0, 5, 0, 5}
)

// legacyProcessNames maps the type names used by older scenario files to
// registered kind names.
var legacyProcessNames = map[string]string{
	"Homogeneous1D":      "homogeneous",
	"Periodic1D":         "periodic",
	"ExponentialDecay1D": "exponential-decay",
	"ExponentialDecay":   "exponential-trigger",
	"GammaDecay":         "gamma-trigger",
	"Homogeneous2D":      "homogeneous-2d",
	"Inhomogeneous2DA":   "inhomogeneous-2d",
}

// Upgrade rewrites legacy process names in place and stamps the current version.
// Idempotent. Emits a logrus warning per renamed field.
func Upgrade(s *Scenario) {
	if s.Version == "" {
		s.Version = CurrentVersion
	}
	for _, field := range []*string{&s.Process, &s.Background, &s.Trigger} {
		if newName, ok := legacyProcessNames[*field]; ok {
			logrus.Warnf("deprecated process name %q auto-mapped to %q; update your scenario", *field, newName)
			*field = newName
		}
	}
}

// Scenario is the top-level simulation configuration.
// Loaded from YAML via Load(path).
type Scenario struct {
	Version string `yaml:"version"`
	Seed    int64  `yaml:"seed"`
	// Process names a registered kind. Background and Trigger compose a
	// self-exciting process instead and are mutually exclusive with Process.
	Process    string `yaml:"process,omitempty"`
	Background string `yaml:"background,omitempty"`
	Trigger    string `yaml:"trigger,omitempty"`
	// Params are positional, in schema order. Empty means the midpoint defaults.
	Params []float64 `yaml:"params,omitempty"`
	// Bounds is [tMin, tMax] for 1D kinds and [xMin, xMax, yMin, yMax] for 2D.
	Bounds  []float64   `yaml:"bounds,omitempty"`
	Trials  int         `yaml:"trials,omitempty"`  // 0 = single realization
	Workers int         `yaml:"workers,omitempty"` // 0 = one per CPU
	Limits  *sim.Limits `yaml:"limits,omitempty"`  // nil = sim.DefaultLimits()
}

// Load reads and parses a YAML scenario file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return Parse(data)
}

// Parse decodes a scenario document with the same strictness as Load.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	Upgrade(&s)
	return &s, nil
}

// Kind resolves the process kind the scenario names.
func (s *Scenario) Kind() (sim.Kind, error) {
	if s.Process == "" && s.Background == "" && s.Trigger == "" {
		return sim.Kind{}, fmt.Errorf("scenario must name a process or a background/trigger pair")
	}
	return sim.ResolveKind(s.Process, s.Background, s.Trigger)
}

// Validate checks that all fields in the scenario are valid.
func (s *Scenario) Validate() error {
	if s.Version != CurrentVersion {
		return fmt.Errorf("unsupported scenario version %q; valid: %s", s.Version, CurrentVersion)
	}
	k, err := s.Kind()
	if err != nil {
		return err
	}
	if len(s.Params) > 0 {
		if err := sim.ValidateParameters(k.Parameters, s.Params); err != nil {
			return fmt.Errorf("params for %s: %w", k.Name, err)
		}
	}
	if err := validateBounds(k.Dim, s.Bounds); err != nil {
		return err
	}
	if s.Trials < 0 {
		return fmt.Errorf("trials must be non-negative, got %d", s.Trials)
	}
	if s.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", s.Workers)
	}
	if s.Limits != nil && (s.Limits.MaxCandidates < 0 || s.Limits.MaxEvents < 0) {
		return fmt.Errorf("limits must be non-negative, got %+v", *s.Limits)
	}
	return nil
}

func validateBounds(dim int, bounds []float64) error {
	if len(bounds) == 0 {
		return nil
	}
	if len(bounds) != 2*dim {
		return fmt.Errorf("bounds for a %dD process need %d values, got %d", dim, 2*dim, len(bounds))
	}
	for i, b := range bounds {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return fmt.Errorf("bounds[%d] must be finite, got %f", i, b)
		}
	}
	for i := 0; i < len(bounds); i += 2 {
		if bounds[i+1] <= bounds[i] {
			return fmt.Errorf("bounds[%d] = %g must exceed bounds[%d] = %g", i+1, bounds[i+1], i, bounds[i])
		}
	}
	return nil
}

// Build validates the scenario and constructs its simulation.
func (s *Scenario) Build() (*Simulation, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	k, err := s.Kind()
	if err != nil {
		return nil, err
	}
	params := s.Params
	if len(params) == 0 {
		params = k.Defaults()
	}
	limits := sim.DefaultLimits()
	if s.Limits != nil {
		limits = *s.Limits
	}
	return NewSimulation(k, params, s.Bounds, s.Seed, limits)
}
