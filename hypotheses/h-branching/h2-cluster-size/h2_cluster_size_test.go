//go:build ignore

package sim

// H2 Cluster-Size Experiment
//
// A subcritical cluster started by one immigrant has 1/(1-n) events on average,
// n the trigger branching ratio. Truncation at the window end makes the
// observed ratio of events to immigrants fall below that bound, by an amount
// that shrinks as the window grows relative to the trigger scale w.
//
// Method:
//   For each a in {0.2, 0.4, 0.6, 0.8} and window length T in {20, 200}:
//   1. Run 300 hawkes realizations (λ = 1, a, w = 1) on [0, T]
//   2. Record mean events, mean immigrants, and their ratio
//   3. Compare the ratio with 1/(1-a); write the sweep to output/h2_cluster_size.csv
//
// Copy into sim/ and run with: go test -run TestH2 ./sim/

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"
)

func h2OutputDir() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return filepath.Join("hypotheses", "h-branching", "h2-cluster-size", "output")
	}
	repoRoot := filepath.Dir(filepath.Dir(filename))
	return filepath.Join(repoRoot, "hypotheses", "h-branching", "h2-cluster-size", "output")
}

func TestH2_ClusterSize(t *testing.T) {
	const trials = 300
	background, err := NewHomogeneous1D(1)
	if err != nil {
		t.Fatal(err)
	}

	rows := [][]string{{"a", "window", "mean_events", "mean_immigrants", "ratio", "bound"}}
	for _, a := range []float64{0.2, 0.4, 0.6, 0.8} {
		trigger, err := NewExponentialTrigger(a, 1)
		if err != nil {
			t.Fatal(err)
		}
		var prevGap float64
		for wi, window := range []float64{20, 200} {
			rng := NewPartitionedRNG(NewSimulationKey(42))
			var events, immigrants float64
			for i := 0; i < trials; i++ {
				s := NewStream(rng.ForSubsystem(SubsystemTrial(i)), DefaultLimits())
				r, err := SimulateBranching(s, background, trigger, 0, window)
				if err != nil {
					t.Fatal(err)
				}
				events += float64(r.Len())
				if counts := r.GenerationCounts(); len(counts) > 1 {
					immigrants += float64(counts[1])
				}
			}
			ratio := events / immigrants
			bound := 1 / (1 - a)
			gap := bound - ratio
			t.Logf("H2: a=%.1f T=%g ratio %.3f bound %.3f gap %.3f", a, window, ratio, bound, gap)
			if ratio > bound*1.05 {
				t.Errorf("a=%.1f T=%g: ratio %.3f exceeds 1/(1-a) = %.3f", a, window, ratio, bound)
			}
			if wi > 0 && gap > prevGap+0.05 {
				t.Errorf("a=%.1f: gap grew from %.3f to %.3f with the longer window", a, prevGap, gap)
			}
			prevGap = gap
			rows = append(rows, []string{
				fmt.Sprint(a), fmt.Sprint(window),
				strconv.FormatFloat(events/trials, 'f', 4, 64),
				strconv.FormatFloat(immigrants/trials, 'f', 4, 64),
				strconv.FormatFloat(ratio, 'f', 4, 64),
				strconv.FormatFloat(bound, 'f', 4, 64),
			})
		}
	}

	dir := h2OutputDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(filepath.Join(dir, "h2_cluster_size.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		t.Fatal(err)
	}
}
