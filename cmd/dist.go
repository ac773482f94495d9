package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/pointp-sim/pointp-sim/sim"
)

var (
	distMu   float64 // Poisson mean
	distN    int     // Binomial trials
	distP    float64 // Binomial success probability (0 = mu/n)
	distKMax int     // Largest k shown (0 = automatic)
	distPlot bool    // Overlay both pmfs in a chart
)

var distCmd = &cobra.Command{
	Use:   "dist",
	Short: "Compare the Poisson(mu) and Binomial(n, p) probability mass functions",
	Long: `dist tabulates P(K = k) under Poisson(mu) and Binomial(n, p). With p unset,
p = mu/n so that both distributions share the mean and the binomial approaches
the Poisson as n grows.`,
	Example: `  pointp dist --mu 20
  pointp dist --mu 5 --n 10
  pointp dist --mu 5 --n 1000 --kmax 15 --plot`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := distP
		if !cmd.Flags().Changed("p") {
			p = distMu / float64(distN)
		}
		return writeDist(cmd.OutOrStdout(), distMu, distN, p, distKMax, distPlot)
	},
}

// writeDist prints both pmfs for k = 0..kMax. A non-positive kMax extends the
// table to the Poisson 99.9% quantile.
func writeDist(w io.Writer, mu float64, n int, p float64, kMax int, plot bool) error {
	if kMax <= 0 {
		kMax = max(sim.PoissonQuantile(mu, 0.999), 1)
	}
	poisson, err := sim.PoissonPMF(mu, kMax)
	if err != nil {
		return err
	}
	binomial, err := sim.BinomialPMF(n, p, kMax)
	if err != nil {
		return err
	}

	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	t := newTable("K", fmt.Sprintf("POISSON(%g)", mu), fmt.Sprintf("BINOMIAL(%d, %.4g)", n, p), "DIFF")
	for k := 0; k <= kMax; k++ {
		t.Row(strconv.Itoa(k), f(poisson[k]), f(binomial[k]), f(binomial[k]-poisson[k]))
	}
	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	if !plot {
		return nil
	}
	chart := asciigraph.PlotMany([][]float64{poisson, binomial},
		asciigraph.Height(12),
		asciigraph.Precision(3),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red),
		asciigraph.Caption(fmt.Sprintf("P(K = k), k = 0..%d: Poisson (blue), Binomial (red)", kMax)),
	)
	_, err = fmt.Fprintln(w, chart)
	return err
}

func init() {
	distCmd.Flags().Float64Var(&distMu, "mu", 20, "Poisson mean")
	distCmd.Flags().IntVar(&distN, "n", 100, "Binomial number of trials")
	distCmd.Flags().Float64Var(&distP, "p", 0, "Binomial success probability (default mu/n)")
	distCmd.Flags().IntVar(&distKMax, "kmax", 0, "Largest k shown (default: Poisson 99.9% quantile)")
	distCmd.Flags().BoolVar(&distPlot, "plot", false, "Overlay both pmfs in a chart")
}
