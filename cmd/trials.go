package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pointp-sim/pointp-sim/sim"
	"github.com/pointp-sim/pointp-sim/sim/scenario"
	"github.com/pointp-sim/pointp-sim/sim/trials"
)

var (
	trialCount   int  // Number of independent realizations
	trialWorkers int  // Concurrent trials (0 = one per CPU)
	noProgress   bool // Suppress the progress bar
)

var trialsCmd = &cobra.Command{
	Use:   "trials [kind]",
	Short: "Run independent realizations and summarize their event counts",
	Example: `  pointp trials homogeneous --params 2 --bounds 0,10 --trials 5000
  pointp trials hawkes --params 1.5,0.8,2.0 --workers 8
  pointp trials --config examples/sepp-gamma-periodic.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, s, err := loadSimulation(cmd, args)
		if err != nil {
			return err
		}
		n := s.Trials
		if cmd.Flags().Changed("trials") || n == 0 {
			n = trialCount
		}
		workers := s.Workers
		if cmd.Flags().Changed("workers") {
			workers = trialWorkers
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()

		cfg := trials.Config{Simulation: m, Trials: n, Workers: workers}
		if !noProgress {
			bar := newTrialsBar(cmd.ErrOrStderr(), n, m.Kind.Name)
			var mu sync.Mutex
			cfg.Progress = func(done int) {
				mu.Lock()
				defer mu.Unlock()
				_ = bar.Set(done)
			}
			defer bar.Finish()
		}

		start := time.Now()
		records, err := trials.Run(ctx, cfg)
		if err != nil {
			return err
		}
		logrus.Infof("%d trials of %s in %v", n, m.Kind.Name, time.Since(start).Round(time.Millisecond))
		return writeSummary(cmd.OutOrStdout(), m, trials.Summarize(records))
	},
}

// newTrialsBar returns a count progress bar writing to w.
func newTrialsBar(w io.Writer, total int, kind string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(int64(total),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(kind),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "",
			BarEnd:        "",
		}),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

// writeSummary prints the count statistics of a batch next to the values
// predicted by the intensity integral.
func writeSummary(w io.Writer, m *scenario.Simulation, sum *trials.Summary) error {
	expected := trials.ExpectedImmigrants(m)
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 3, 64) }

	lines := []string{
		titleStyle.Render(fmt.Sprintf("%s on %s", m.Kind.Name, m.Window())),
		kv("params", fmt.Sprint(m.Params)),
		kv("seed", strconv.FormatInt(m.Seed, 10)),
		kv("trials", strconv.Itoa(sum.Trials)),
	}
	t := newTable("STATISTIC", "OBSERVED", "EXPECTED")
	quantiles := fmt.Sprintf("%g / %g", sum.P001Count, sum.P999Count)
	if _, ok := m.Branching(); ok {
		ratio, _ := m.BranchingRatio()
		lines = append(lines, kv("branching ratio", f(ratio)))
		if ratio < 1 {
			// Each immigrant heads a cluster of 1/(1-n) events on average; clusters cut at the window end are smaller.
			t.Row("mean count", f(sum.MeanCount), "≤ "+f(expected/(1-ratio)))
		} else {
			t.Row("mean count", f(sum.MeanCount), warnStyle.Render("supercritical"))
		}
		t.Row("mean immigrants", f(sum.MeanImmigrants), f(expected))
		t.Row("count variance", f(sum.VarCount), "")
		t.Row("0.1% / 99.9% count", quantiles, "")
		t.Row("min / max count", fmt.Sprintf("%d / %d", sum.MinCount, sum.MaxCount), "")
		t.Row("mean max generation", f(sum.MeanMaxGeneration), "")
		t.Row("max generation", strconv.Itoa(sum.MaxGeneration), "")
	} else {
		lo, hi := sim.PoissonQuantile(expected, 0.001), sim.PoissonQuantile(expected, 0.999)
		t.Row("mean count", f(sum.MeanCount), f(expected))
		t.Row("count variance", f(sum.VarCount), f(expected))
		t.Row("0.1% / 99.9% count", quantiles, fmt.Sprintf("%d / %d", lo, hi))
		t.Row("min / max count", fmt.Sprintf("%d / %d", sum.MinCount, sum.MaxCount), "")
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	if len(sum.GenerationMeans) == 0 {
		return nil
	}

	g := newTable("GENERATION", "MEAN EVENTS PER TRIAL")
	for gen := 1; gen < len(sum.GenerationMeans); gen++ {
		g.Row(strconv.Itoa(gen), f(sum.GenerationMeans[gen]))
	}
	_, err := fmt.Fprintln(w, g.Render())
	return err
}

func init() {
	addSimulationFlags(trialsCmd)
	trialsCmd.Flags().IntVar(&trialCount, "trials", 1000, "Number of independent realizations (overrides the scenario value when set)")
	trialsCmd.Flags().IntVar(&trialWorkers, "workers", 0, "Concurrent trials (0 = one per CPU)")
	trialsCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Do not show a progress bar")
}
