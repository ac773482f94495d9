package trials

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summary aggregates statistics over a batch of trial records.
type Summary struct {
	Trials    int
	MeanCount float64
	VarCount  float64
	MinCount  int
	MaxCount  int
	// P001Count and P999Count are the empirical 0.1% and 99.9% count quantiles.
	P001Count float64
	P999Count float64

	MeanImmigrants    float64
	MeanMaxGeneration float64
	MaxGeneration     int
	// GenerationMeans[g] is the mean number of generation-g events per trial
	// (index 0 unused). Empty when no trial has branching structure.
	GenerationMeans []float64
}

// Summarize computes aggregate statistics from trial records.
// Safe for nil or empty input (returns zero-value fields).
func Summarize(records []Record) *Summary {
	summary := &Summary{Trials: len(records)}
	if len(records) == 0 {
		return summary
	}

	counts := make([]float64, len(records))
	immigrants := make([]float64, len(records))
	depths := make([]float64, len(records))
	summary.MinCount = records[0].Count
	for i, r := range records {
		counts[i] = float64(r.Count)
		immigrants[i] = float64(r.Immigrants)
		depths[i] = float64(r.MaxGeneration)
		summary.MinCount = min(summary.MinCount, r.Count)
		summary.MaxCount = max(summary.MaxCount, r.Count)
		summary.MaxGeneration = max(summary.MaxGeneration, r.MaxGeneration)
	}

	summary.MeanCount, summary.VarCount = stat.MeanVariance(counts, nil)
	if len(records) == 1 {
		summary.VarCount = 0
	}
	sort.Float64s(counts)
	summary.P001Count = stat.Quantile(0.001, stat.Empirical, counts, nil)
	summary.P999Count = stat.Quantile(0.999, stat.Empirical, counts, nil)
	summary.MeanImmigrants = stat.Mean(immigrants, nil)
	summary.MeanMaxGeneration = stat.Mean(depths, nil)

	if summary.MaxGeneration > 0 {
		summary.GenerationMeans = make([]float64, summary.MaxGeneration+1)
		for _, r := range records {
			for g, n := range r.GenerationCounts {
				summary.GenerationMeans[g] += float64(n)
			}
		}
		for g := range summary.GenerationMeans {
			summary.GenerationMeans[g] /= float64(len(records))
		}
	}
	return summary
}
