package trials

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/pointp-sim/pointp-sim/sim"
	"github.com/pointp-sim/pointp-sim/sim/scenario"
)

// Config controls a batch of trials.
type Config struct {
	Simulation *scenario.Simulation
	Trials     int
	// Workers bounds concurrent trials. <= 0 means GOMAXPROCS.
	Workers int
	// Progress, when set, is called after every completed trial with the number
	// completed so far. It is called from worker goroutines.
	Progress func(done int)
}

// Run executes cfg.Trials independent realizations and returns their records in
// trial order. Trial i draws from the PartitionedRNG subsystem SubsystemTrial(i)
// of the simulation seed, so the records do not depend on Workers.
// The first failing trial cancels the rest and its error is returned.
func Run(ctx context.Context, cfg Config) ([]Record, error) {
	if cfg.Simulation == nil {
		return nil, fmt.Errorf("trials: nil simulation")
	}
	if cfg.Trials < 0 {
		return nil, fmt.Errorf("trials: count must be non-negative, got %d", cfg.Trials)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	m := cfg.Simulation
	key := sim.NewSimulationKey(m.Seed)
	records := make([]Record, cfg.Trials)
	var completed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < cfg.Trials; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// Each trial owns its generator; PartitionedRNG is not shared across goroutines.
			rng := sim.NewPartitionedRNG(key).ForSubsystem(sim.SubsystemTrial(i))
			out, err := m.Run(sim.NewStream(rng, m.Limits))
			if err != nil {
				return fmt.Errorf("trial %d: %w", i, err)
			}
			records[i] = NewRecord(i, out)
			done := completed.Add(1)
			if cfg.Progress != nil {
				cfg.Progress(int(done))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logrus.Debugf("%s: %d trials on %s with %d workers", m.Kind.Name, cfg.Trials, m.Window(), workers)
	return records, nil
}

// ExpectedImmigrants returns the expected number of background events of one
// realization: the integral of the process intensity over the window. For
// Poisson kinds this is the expected total count.
func ExpectedImmigrants(m *scenario.Simulation) float64 {
	if p := m.Process2D(); p != nil {
		return sim.Integrate2D(func(x, y float64) float64 {
			v, _ := p.Intensity([]float64{x}, []float64{y})
			return v[0]
		}, m.Rect)
	}
	p := m.Process1D()
	return sim.Integrate(func(t float64) float64 { return p.Intensity(t)[0] }, m.TMin, m.TMax)
}
