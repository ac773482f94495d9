package scenario

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/pointp-sim/pointp-sim/sim"
)

// Simulation is a built process together with its window, seed and limits.
// It is immutable after construction and safe to Run from several goroutines,
// each with its own Stream.
type Simulation struct {
	Kind   sim.Kind
	Params []float64
	Seed   int64
	Limits sim.Limits

	// TMin and TMax bound 1D kinds; Rect bounds 2D kinds.
	TMin, TMax float64
	Rect       sim.Rect

	proc1D sim.Process1D
	proc2D sim.Process2D
}

// NewSimulation builds k from params. Empty bounds select DefaultBounds1D or
// DefaultBounds2D. Triggers with a branching ratio of at least 1 are accepted
// with a warning; only limits stop their simulation.
func NewSimulation(k sim.Kind, params, bounds []float64, seed int64, limits sim.Limits) (*Simulation, error) {
	if err := validateBounds(k.Dim, bounds); err != nil {
		return nil, err
	}
	m := &Simulation{Kind: k, Params: slices.Clone(params), Seed: seed, Limits: limits}
	switch k.Dim {
	case 1:
		if len(bounds) == 0 {
			bounds = DefaultBounds1D
		}
		p, err := k.New1D(params...)
		if err != nil {
			return nil, err
		}
		m.proc1D, m.TMin, m.TMax = p, bounds[0], bounds[1]
	case 2:
		if len(bounds) == 0 {
			bounds = DefaultBounds2D
		}
		p, err := k.New2D(params...)
		if err != nil {
			return nil, err
		}
		m.proc2D = p
		m.Rect = sim.Rect{XMin: bounds[0], XMax: bounds[1], YMin: bounds[2], YMax: bounds[3]}
	default:
		return nil, fmt.Errorf("kind %s has unsupported dimension %d", k.Name, k.Dim)
	}
	if ratio, ok := m.BranchingRatio(); ok && ratio >= 1 {
		logrus.Warnf("%s: trigger branching ratio %.3g >= 1 is not subcritical; simulation may hit max_events (%d)",
			k.Name, ratio, limits.MaxEvents)
	}
	return m, nil
}

// Process1D returns the temporal process, or nil for 2D kinds.
func (m *Simulation) Process1D() sim.Process1D { return m.proc1D }

// Process2D returns the spatial process, or nil for 1D kinds.
func (m *Simulation) Process2D() sim.Process2D { return m.proc2D }

// Branching returns the process as a BranchingProcess when it is self-exciting.
func (m *Simulation) Branching() (sim.BranchingProcess, bool) {
	bp, ok := m.proc1D.(sim.BranchingProcess)
	return bp, ok
}

// BranchingRatio reports the expected offspring per event of a self-exciting
// process's trigger.
func (m *Simulation) BranchingRatio() (float64, bool) {
	r, ok := m.proc1D.(interface{ TriggerBranchingRatio() (float64, bool) })
	if !ok {
		return 0, false
	}
	return r.TriggerBranchingRatio()
}

// Window describes the simulation window for display.
func (m *Simulation) Window() string {
	if m.Kind.Dim == 2 {
		return m.Rect.String()
	}
	return fmt.Sprintf("[%g, %g]", m.TMin, m.TMax)
}

// Stream returns the stream for the scenario's single seeded realization.
func (m *Simulation) Stream() *sim.Stream {
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(m.Seed))
	return sim.NewStream(rng.ForSubsystem(sim.SubsystemSimulate), m.Limits)
}

// Outcome is one realization of any kind.
type Outcome struct {
	Dim int `json:"dim"`
	// Times holds the ascending event times of a 1D kind.
	Times []float64 `json:"times,omitempty"`
	// Branching is set for self-exciting kinds; Branching.Times aliases Times.
	Branching *sim.Realization `json:"branching,omitempty"`
	// Points holds the events of a 2D kind.
	Points *sim.Points2D `json:"points,omitempty"`
}

// outcomeJSON has Outcome's fields without its methods.
type outcomeJSON Outcome

// MarshalJSON writes the event times once: under "branching" for
// self-exciting kinds and under "times" otherwise.
func (o Outcome) MarshalJSON() ([]byte, error) {
	if o.Branching != nil {
		o.Times = nil
	}
	return json.Marshal(outcomeJSON(o))
}

// UnmarshalJSON restores Times from the branching structure when only the
// latter was written.
func (o *Outcome) UnmarshalJSON(data []byte) error {
	var v outcomeJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Outcome(v)
	if o.Branching != nil && o.Times == nil {
		o.Times = o.Branching.Times
	}
	return nil
}

// Len returns the number of events.
func (o Outcome) Len() int {
	if o.Points != nil {
		return o.Points.Len()
	}
	return len(o.Times)
}

// MaxGeneration returns the deepest generation, or 0 when there is no branching structure.
func (o Outcome) MaxGeneration() int {
	if o.Branching == nil {
		return 0
	}
	return o.Branching.MaxGeneration()
}

// Run draws one realization from s.
func (m *Simulation) Run(s *sim.Stream) (Outcome, error) {
	if m.proc2D != nil {
		pts, err := m.proc2D.Simulate(s, m.Rect)
		if err != nil {
			return Outcome{}, fmt.Errorf("simulating %s on %v: %w", m.Kind.Name, m.Rect, err)
		}
		return Outcome{Dim: 2, Points: &pts}, nil
	}
	if bp, ok := m.Branching(); ok {
		r, err := bp.SimulateBranching(s, m.TMin, m.TMax)
		if err != nil {
			return Outcome{}, fmt.Errorf("simulating %s on %s: %w", m.Kind.Name, m.Window(), err)
		}
		return Outcome{Dim: 1, Times: r.Times, Branching: &r}, nil
	}
	tk, err := m.proc1D.Simulate(s, m.TMin, m.TMax)
	if err != nil {
		return Outcome{}, fmt.Errorf("simulating %s on %s: %w", m.Kind.Name, m.Window(), err)
	}
	return Outcome{Dim: 1, Times: tk}, nil
}

// RunSeeded draws the realization determined by the scenario seed alone.
func (m *Simulation) RunSeeded() (Outcome, error) {
	return m.Run(m.Stream())
}
