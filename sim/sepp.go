package sim

import (
	"fmt"
	"slices"
	"sort"

	"github.com/sirupsen/logrus"
)

// Realization is one simulated history of a self-exciting process.
// All three slices are parallel and ordered by ascending time.
type Realization struct {
	Times []float64 `json:"times"`
	// Generations[i] is 1 for immigrants (background events) and k+1 for
	// offspring of a generation-k event.
	Generations []int `json:"generations"`
	// Parents[i] is the index of the event that triggered event i, or -1.
	Parents []int `json:"parents"`
}

// Len returns the number of events.
func (r Realization) Len() int { return len(r.Times) }

// MaxGeneration returns the deepest generation, or 0 for an empty realization.
func (r Realization) MaxGeneration() int {
	if len(r.Generations) == 0 {
		return 0
	}
	return slices.Max(r.Generations)
}

// GenerationCounts returns the number of events per generation, indexed from 1.
func (r Realization) GenerationCounts() []int {
	counts := make([]int, r.MaxGeneration()+1)
	for _, g := range r.Generations {
		counts[g]++
	}
	return counts
}

// SimulateBranching simulates a self-exciting process as a branching (cluster)
// process on [tMin, tMax]:
//
//  1. immigrants come from background and form generation 1;
//  2. every event not yet triggered is popped from a stack and the trigger is
//     simulated on [0, tMax−parent]; its offsets, shifted by the parent time, are
//     the parent's children, one generation deeper, and are pushed back;
//  3. the accumulated events are sorted by time, carrying generations and parent
//     links along.
//
// The loop terminates almost surely when the trigger is subcritical (expected
// offspring < 1). Otherwise only Limits.MaxEvents stops it, with ErrNonTerminating.
func SimulateBranching(s *Stream, background, trigger Process1D, tMin, tMax float64) (Realization, error) {
	immigrants, err := background.Simulate(s, tMin, tMax)
	if err != nil {
		return Realization{}, fmt.Errorf("simulating background: %w", err)
	}

	maxEvents := s.limits.MaxEvents
	times := slices.Clone(immigrants)
	generations := make([]int, len(times))
	parents := make([]int, len(times))
	stack := make([]int, len(times))
	for i := range times {
		generations[i] = 1
		parents[i] = -1
		stack[i] = i
	}

	for len(stack) > 0 {
		if maxEvents > 0 && len(times) > maxEvents {
			return Realization{}, fmt.Errorf("%w: %d events exceed limit %d (is the trigger supercritical?)",
				ErrNonTerminating, len(times), maxEvents)
		}
		parent := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		parentTime := times[parent]

		offsets, err := trigger.Simulate(s, 0, tMax-parentTime)
		if err != nil {
			return Realization{}, fmt.Errorf("simulating offspring of event at %g: %w", parentTime, err)
		}
		for _, off := range offsets {
			stack = append(stack, len(times))
			times = append(times, parentTime+off)
			generations = append(generations, generations[parent]+1)
			parents = append(parents, parent)
		}
	}
	if maxEvents > 0 && len(times) > maxEvents {
		return Realization{}, fmt.Errorf("%w: %d events exceed limit %d", ErrNonTerminating, len(times), maxEvents)
	}

	r := sortRealization(times, generations, parents)
	logrus.Debugf("branching simulation on [%g, %g]: %d immigrants, %d events, depth %d",
		tMin, tMax, len(immigrants), r.Len(), r.MaxGeneration())
	return r, nil
}

// sortRealization orders events by time (stable on ties) and remaps parent indices.
func sortRealization(times []float64, generations, parents []int) Realization {
	order := make([]int, len(times))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return times[order[i]] < times[order[j]] })

	rank := make([]int, len(order))
	for newIdx, oldIdx := range order {
		rank[oldIdx] = newIdx
	}
	r := Realization{
		Times:       make([]float64, len(order)),
		Generations: make([]int, len(order)),
		Parents:     make([]int, len(order)),
	}
	for newIdx, oldIdx := range order {
		r.Times[newIdx] = times[oldIdx]
		r.Generations[newIdx] = generations[oldIdx]
		if p := parents[oldIdx]; p >= 0 {
			r.Parents[newIdx] = rank[p]
		} else {
			r.Parents[newIdx] = -1
		}
	}
	return r
}

// ConditionalIntensity evaluates λ(t | history) = background(t) + Σ trigger(t − t_k)
// over every event t_k of r with t − t_k ≥ 0. Cost is O(len(r) × len(t)).
func ConditionalIntensity(background, trigger Process1D, r Realization, t ...float64) []float64 {
	out := background.Intensity(t...)
	delays := make([]float64, 0, len(t))
	idx := make([]int, 0, len(t))
	for _, tk := range r.Times {
		delays, idx = delays[:0], idx[:0]
		for i, ti := range t {
			if d := ti - tk; d >= 0 {
				delays = append(delays, d)
				idx = append(idx, i)
			}
		}
		if len(delays) == 0 {
			continue
		}
		for j, v := range trigger.Intensity(delays...) {
			out[idx[j]] += v
		}
	}
	return out
}

// === SelfExciting ===

// BranchingProcess is a Process1D that can also report its branching structure.
type BranchingProcess interface {
	Process1D
	SimulateBranching(s *Stream, tMin, tMax float64) (Realization, error)
	ConditionalIntensity(r Realization, t ...float64) []float64
}

// SelfExciting composes a background process B and a trigger process T into a
// self-exciting point process.
type SelfExciting[B Process1D, T Process1D] struct {
	Background B
	Trigger    T
}

// NewSelfExciting takes ownership of background and trigger.
func NewSelfExciting[B Process1D, T Process1D](background B, trigger T) *SelfExciting[B, T] {
	return &SelfExciting[B, T]{Background: background, Trigger: trigger}
}

// Intensity is the intensity before any event has occurred, i.e. the background.
// Use ConditionalIntensity for the intensity given a realization.
func (p *SelfExciting[B, T]) Intensity(t ...float64) []float64 {
	return p.Background.Intensity(t...)
}

// ConditionalIntensity evaluates the intensity given the history r.
func (p *SelfExciting[B, T]) ConditionalIntensity(r Realization, t ...float64) []float64 {
	return ConditionalIntensity(p.Background, p.Trigger, r, t...)
}

// Simulate returns only the event times of a fresh realization.
func (p *SelfExciting[B, T]) Simulate(s *Stream, tMin, tMax float64) ([]float64, error) {
	r, err := p.SimulateBranching(s, tMin, tMax)
	if err != nil {
		return nil, err
	}
	return r.Times, nil
}

// SimulateBranching returns a fresh realization with generation labels.
func (p *SelfExciting[B, T]) SimulateBranching(s *Stream, tMin, tMax float64) (Realization, error) {
	return SimulateBranching(s, p.Background, p.Trigger, tMin, tMax)
}

// Parameters is the background schema followed by the trigger schema.
func (p *SelfExciting[B, T]) Parameters() []ModelParameter {
	return append(p.Background.Parameters(), p.Trigger.Parameters()...)
}

// TriggerBranchingRatio reports the trigger's expected offspring count, and false
// when the trigger does not expose it.
func (p *SelfExciting[B, T]) TriggerBranchingRatio() (float64, bool) {
	if b, ok := any(p.Trigger).(Brancher); ok {
		return b.BranchingRatio(), true
	}
	return 0, false
}
