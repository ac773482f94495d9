//go:build ignore

package sim

// H1 Time-Rescaling Experiment
//
// Checks the branching simulator against the time-rescaling theorem: mapping
// the event times of a self-exciting realization through the compensator
// Λ(t) = ∫ λ(s | history) ds turns the gaps Λ(t_i) - Λ(t_{i-1}) into i.i.d.
// Exp(1) variables.
//
// Method:
//   1. Simulate hawkes (λ = 1.5, a = 0.8, w = 2) on [0, 200] for several seeds
//   2. Compute Λ(t_i) = λ·t_i + Σ_{t_j < t_i} a(1 - exp(-(t_i - t_j)/w))
//   3. Map every gap to u = 1 - exp(-ΔΛ), Uniform(0, 1) under the theorem
//   4. KS-test the pooled u against Uniform(0, 1); write them to output/h1_gaps.csv
//
// Copy into sim/ and run with: go test -run TestH1 ./sim/

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"

	"github.com/pointp-sim/pointp-sim/sim/internal/testutil"
)

// h1OutputDir resolves hypotheses/h-branching/h1-time-rescaling/output from
// the source location (sim/ once copied), falling back to a relative path.
func h1OutputDir() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return filepath.Join("hypotheses", "h-branching", "h1-time-rescaling", "output")
	}
	repoRoot := filepath.Dir(filepath.Dir(filename))
	return filepath.Join(repoRoot, "hypotheses", "h-branching", "h1-time-rescaling", "output")
}

// compensator returns Λ(t_i) - Λ(tMin) for every event of r, for a homogeneous
// background of the given rate and the exponential trigger (a/w)e^{-t/w}, whose
// integral over [0, d] is a(1 - e^{-d/w}).
func compensator(rate, a, w float64, r Realization, tMin float64) []float64 {
	out := make([]float64, r.Len())
	for i, ti := range r.Times {
		v := rate * (ti - tMin)
		for _, tj := range r.Times[:i] {
			if tj < ti {
				v += a * (1 - math.Exp(-(ti-tj)/w))
			}
		}
		out[i] = v
	}
	return out
}

func TestH1_TimeRescaling(t *testing.T) {
	const tMin, tMax = 0.0, 200.0
	const rate, a, w = 1.5, 0.8, 2.0
	background, err := NewHomogeneous1D(rate)
	if err != nil {
		t.Fatal(err)
	}
	trigger, err := NewExponentialTrigger(a, w)
	if err != nil {
		t.Fatal(err)
	}

	var u []float64
	for seed := int64(1); seed <= 5; seed++ {
		r, err := SimulateBranching(NewSeededStream(seed, DefaultLimits()), background, trigger, tMin, tMax)
		if err != nil {
			t.Fatal(err)
		}
		prev := 0.0
		for _, c := range compensator(rate, a, w, r, tMin) {
			u = append(u, 1-math.Exp(-(c - prev)))
			prev = c
		}
	}

	d := testutil.KSUniform(u, 0, 1)
	scaled := math.Sqrt(float64(len(u))) * d
	t.Logf("H1: %d rescaled gaps, KS D = %.4f, sqrt(n)·D = %.3f (critical %.3f)", len(u), d, scaled, testutil.KSCritical001)
	if scaled > testutil.KSCritical001 {
		t.Errorf("rescaled gaps are not Exp(1): sqrt(n)·D = %.3f", scaled)
	}

	dir := h1OutputDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(filepath.Join(dir, "h1_gaps.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	_ = w.Write([]string{"i", "u"})
	for i, v := range u {
		_ = w.Write([]string{strconv.Itoa(i), strconv.FormatFloat(v, 'g', -1, 64)})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatal(err)
	}
}
