// Package trials runs repeated independent realizations of a scenario and
// summarizes their event counts and branching depth.
package trials

import (
	"github.com/pointp-sim/pointp-sim/sim/scenario"
)

// Record captures the outcome of a single trial.
type Record struct {
	Trial int
	Count int
	// Immigrants counts generation-1 events. Equals Count for kinds without branching.
	Immigrants int
	// MaxGeneration is the deepest generation, 0 for kinds without branching.
	MaxGeneration int
	// GenerationCounts[g] is the number of generation-g events (index 0 unused).
	// Nil for kinds without branching.
	GenerationCounts []int
}

// NewRecord extracts the per-trial statistics of out.
func NewRecord(trial int, out scenario.Outcome) Record {
	r := Record{Trial: trial, Count: out.Len(), Immigrants: out.Len()}
	if out.Branching != nil {
		r.GenerationCounts = out.Branching.GenerationCounts()
		r.MaxGeneration = out.Branching.MaxGeneration()
		r.Immigrants = 0
		if len(r.GenerationCounts) > 1 {
			r.Immigrants = r.GenerationCounts[1]
		}
	}
	return r
}
