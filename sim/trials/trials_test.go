package trials

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pointp-sim/pointp-sim/sim"
	"github.com/pointp-sim/pointp-sim/sim/internal/testutil"
	"github.com/pointp-sim/pointp-sim/sim/scenario"
)

func build(t *testing.T, s scenario.Scenario) *scenario.Simulation {
	t.Helper()
	s.Version = scenario.CurrentVersion
	m, err := s.Build()
	require.NoError(t, err)
	return m
}

func TestRun_WorkerCountInvariant(t *testing.T) {
	// GIVEN the same hawkes simulation
	m := build(t, scenario.Scenario{Seed: 7, Process: "hawkes", Params: []float64{1.5, 0.8, 2.0}})

	// WHEN run with one worker and with eight
	serial, err := Run(context.Background(), Config{Simulation: m, Trials: 64, Workers: 1})
	require.NoError(t, err)
	parallel, err := Run(context.Background(), Config{Simulation: m, Trials: 64, Workers: 8})
	require.NoError(t, err)

	// THEN the records are identical
	assert.Equal(t, serial, parallel)
	for i, r := range serial {
		assert.Equal(t, i, r.Trial)
	}
}

func TestRun_TrialsDiffer(t *testing.T) {
	m := build(t, scenario.Scenario{Seed: 7, Process: "homogeneous", Params: []float64{3}})

	records, err := Run(context.Background(), Config{Simulation: m, Trials: 20, Workers: 2})
	require.NoError(t, err)

	distinct := map[int]bool{}
	for _, r := range records {
		distinct[r.Count] = true
	}
	assert.Greater(t, len(distinct), 1, "independent trials should not all share a count")
}

func TestRun_HomogeneousMeanCount(t *testing.T) {
	// GIVEN λ = 2 on [0, 10]
	m := build(t, scenario.Scenario{Seed: 1, Process: "homogeneous", Params: []float64{2}, Bounds: []float64{0, 10}})

	records, err := Run(context.Background(), Config{Simulation: m, Trials: 2000})
	require.NoError(t, err)

	// THEN the mean count ≈ 20 and the band contains the expected value
	counts := make([]float64, len(records))
	for i, r := range records {
		counts[i] = float64(r.Count)
		assert.Equal(t, r.Count, r.Immigrants)
		assert.Equal(t, 0, r.MaxGeneration)
	}
	testutil.AssertMeanWithin(t, counts, 20, 5)
	assert.InDelta(t, 20, ExpectedImmigrants(m), 1e-9)
}

func TestRun_ReportsProgress(t *testing.T) {
	m := build(t, scenario.Scenario{Seed: 1, Process: "periodic"})
	var calls, maxDone atomic.Int64

	_, err := Run(context.Background(), Config{
		Simulation: m, Trials: 30, Workers: 4,
		Progress: func(done int) {
			calls.Add(1)
			for {
				cur := maxDone.Load()
				if int64(done) <= cur || maxDone.CompareAndSwap(cur, int64(done)) {
					break
				}
			}
		},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(30), calls.Load())
	assert.Equal(t, int64(30), maxDone.Load())
}

func TestRun_PropagatesTrialError(t *testing.T) {
	// GIVEN a supercritical trigger with a tiny event cap
	m := build(t, scenario.Scenario{
		Seed: 1, Process: "hawkes", Params: []float64{5, 1.5, 1}, Bounds: []float64{0, 1000},
		Limits: &sim.Limits{MaxEvents: 100},
	})

	// WHEN run
	records, err := Run(context.Background(), Config{Simulation: m, Trials: 10, Workers: 2})

	// THEN the limit error surfaces and no records are returned
	assert.ErrorIs(t, err, sim.ErrNonTerminating)
	assert.Nil(t, records)
}

func TestRun_CancelledContext(t *testing.T) {
	m := build(t, scenario.Scenario{Seed: 1, Process: "homogeneous"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Config{Simulation: m, Trials: 100, Workers: 2})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_InvalidConfig(t *testing.T) {
	_, err := Run(context.Background(), Config{Trials: 1})
	assert.Error(t, err)

	m := build(t, scenario.Scenario{Process: "homogeneous"})
	_, err = Run(context.Background(), Config{Simulation: m, Trials: -1})
	assert.Error(t, err)

	records, err := Run(context.Background(), Config{Simulation: m, Trials: 0})
	assert.NoError(t, err)
	assert.Empty(t, records)
}

func TestExpectedImmigrants_BackgroundOnly(t *testing.T) {
	// The trigger does not contribute: only μ·(tMax − tMin)
	m := build(t, scenario.Scenario{Process: "hawkes", Params: []float64{1.5, 0.8, 2.0}, Bounds: []float64{0, 10}})
	assert.InDelta(t, 15, ExpectedImmigrants(m), 1e-9)

	m2 := build(t, scenario.Scenario{Process: "homogeneous-2d", Params: []float64{3}, Bounds: []float64{0, 2, 0, 2}})
	assert.InDelta(t, 12, ExpectedImmigrants(m2), 1e-9)
}

// === Summarize ===

func TestSummarize_Empty_ZeroValues(t *testing.T) {
	summary := Summarize(nil)

	if summary.Trials != 0 || summary.MeanCount != 0 || summary.MaxGeneration != 0 {
		t.Errorf("expected zero summary, got %+v", summary)
	}
	if len(summary.GenerationMeans) != 0 {
		t.Error("expected no generation means")
	}
}

func TestSummarize_KnownRecords(t *testing.T) {
	// GIVEN three branching trials with known counts
	records := []Record{
		{Trial: 0, Count: 2, Immigrants: 2, MaxGeneration: 1, GenerationCounts: []int{0, 2}},
		{Trial: 1, Count: 4, Immigrants: 2, MaxGeneration: 2, GenerationCounts: []int{0, 2, 2}},
		{Trial: 2, Count: 6, Immigrants: 3, MaxGeneration: 3, GenerationCounts: []int{0, 3, 2, 1}},
	}

	// WHEN summarized
	s := Summarize(records)

	// THEN the statistics match hand computation
	assert.Equal(t, 3, s.Trials)
	assert.InDelta(t, 4, s.MeanCount, 1e-12)
	assert.InDelta(t, 4, s.VarCount, 1e-12, "unbiased variance of {2, 4, 6}")
	assert.Equal(t, 2, s.MinCount)
	assert.Equal(t, 6, s.MaxCount)
	assert.Equal(t, 2.0, s.P001Count)
	assert.Equal(t, 6.0, s.P999Count)
	assert.InDelta(t, 7.0/3.0, s.MeanImmigrants, 1e-12)
	assert.InDelta(t, 2, s.MeanMaxGeneration, 1e-12)
	assert.Equal(t, 3, s.MaxGeneration)
	require.Len(t, s.GenerationMeans, 4)
	assert.InDelta(t, 7.0/3.0, s.GenerationMeans[1], 1e-12)
	assert.InDelta(t, 4.0/3.0, s.GenerationMeans[2], 1e-12)
	assert.InDelta(t, 1.0/3.0, s.GenerationMeans[3], 1e-12)
}

func TestSummarize_SingleRecord(t *testing.T) {
	s := Summarize([]Record{{Count: 5, Immigrants: 5}})
	assert.Equal(t, 5.0, s.MeanCount)
	assert.Equal(t, 0.0, s.VarCount)
	assert.Nil(t, s.GenerationMeans)
}

func TestNewRecord_FromOutcome(t *testing.T) {
	r := sim.Realization{
		Times:       []float64{1, 2, 3},
		Generations: []int{1, 2, 1},
		Parents:     []int{-1, 0, -1},
	}
	rec := NewRecord(4, scenario.Outcome{Dim: 1, Times: r.Times, Branching: &r})

	assert.Equal(t, Record{Trial: 4, Count: 3, Immigrants: 2, MaxGeneration: 2, GenerationCounts: []int{0, 2, 1}}, rec)
}
