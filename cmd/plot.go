package cmd

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/pointp-sim/pointp-sim/sim"
	"github.com/pointp-sim/pointp-sim/sim/scenario"
)

var (
	plotWidth  int // Chart width in columns
	plotHeight int // Chart height in rows
	plotBins   int // Histogram bins for 1D kinds
)

var plotCmd = &cobra.Command{
	Use:   "plot [kind]",
	Short: "Plot the intensity, counting function and event histogram of one realization",
	Example: `  pointp plot periodic --params 4,0.5
  pointp plot hawkes --params 1.5,0.8,2.0 --seed 7 --bins 25
  pointp plot inhomogeneous-2d --bounds 0,2,0,2`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, _, err := loadSimulation(cmd, args)
		if err != nil {
			return err
		}
		out, err := m.RunSeeded()
		if err != nil {
			return err
		}
		return writePlots(cmd.OutOrStdout(), m, out, plotWidth, plotHeight, plotBins)
	},
}

func writePlots(w io.Writer, m *scenario.Simulation, out scenario.Outcome, width, height, nBins int) error {
	var charts []string
	if m.Kind.Dim == 2 {
		z, err := intensityHeatmap(m, width, height)
		if err != nil {
			return err
		}
		charts = []string{
			titleStyle.Render("intensity λ(x, y) on "+m.Window()) + "\n" + z,
			titleStyle.Render(fmt.Sprintf("%d events", out.Len())) + "\n" + scatterMap(*out.Points, m.Rect, width, height),
		}
	} else {
		charts = []string{
			intensityChart(m, out, width, height),
			countChart(m, out, width, height),
			binChart(m, out, nBins, height),
		}
	}
	_, err := fmt.Fprintln(w, strings.Join(charts, "\n\n"))
	return err
}

// intensityChart plots λ(t), conditioned on the realization for self-exciting kinds.
func intensityChart(m *scenario.Simulation, out scenario.Outcome, width, height int) string {
	n := max(width, 2)
	var y []float64
	caption := "intensity λ(t) on " + m.Window()
	if bp, ok := m.Branching(); ok && out.Branching != nil {
		_, y = sim.ConditionalIntensityCurve(bp, *out.Branching, m.TMin, m.TMax, n)
		caption = "conditional intensity λ(t | history) on " + m.Window()
	} else {
		_, y = sim.IntensityCurve(m.Process1D(), m.TMin, m.TMax, n)
	}
	return asciigraph.Plot(y,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(2),
		asciigraph.Caption(caption),
	)
}

// countChart plots the counting function N(t).
func countChart(m *scenario.Simulation, out scenario.Outcome, width, height int) string {
	y := sim.CountAt(out.Times, m.TMin, m.TMax, max(width, 2))
	return asciigraph.Plot(y,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(0),
		asciigraph.Caption(fmt.Sprintf("counting function N(t), %d events", out.Len())),
	)
}

// binChart plots event counts per bin.
func binChart(m *scenario.Simulation, out scenario.Outcome, nBins, height int) string {
	nBins = max(nBins, 2)
	counts := sim.BinCounts(out.Times, m.TMin, m.TMax, nBins)
	width := (m.TMax - m.TMin) / float64(nBins)
	return asciigraph.Plot(counts,
		asciigraph.Height(height),
		asciigraph.Precision(0),
		asciigraph.Caption(fmt.Sprintf("events per bin (%d bins of width %.3g)", nBins, width)),
	)
}

// shades maps normalised intensity to characters, lowest first.
var shades = []rune(" .:-=+*#%@")

// intensityHeatmap renders λ over m.Rect with one character per grid cell,
// highest y on top.
func intensityHeatmap(m *scenario.Simulation, width, height int) (string, error) {
	_, _, z, err := sim.IntensityGrid(m.Process2D(), m.Rect, max(width, 2), max(height, 2))
	if err != nil {
		return "", err
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, row := range z {
		for _, v := range row {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	var b strings.Builder
	for j := len(z) - 1; j >= 0; j-- {
		for _, v := range z[j] {
			b.WriteRune(shade(v, lo, hi))
		}
		b.WriteByte('\n')
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("min %.3g  max %.3g", lo, hi)))
	return b.String(), nil
}

// scatterMap bins 2D events into a character grid, highest y on top.
func scatterMap(pts sim.Points2D, r sim.Rect, width, height int) string {
	width, height = max(width, 1), max(height, 1)
	grid := make([][]int, height)
	for j := range grid {
		grid[j] = make([]int, width)
	}
	peak := 0
	for i := range pts.X {
		col := int(float64(width) * (pts.X[i] - r.XMin) / (r.XMax - r.XMin))
		row := int(float64(height) * (pts.Y[i] - r.YMin) / (r.YMax - r.YMin))
		col, row = min(max(col, 0), width-1), min(max(row, 0), height-1)
		grid[row][col]++
		peak = max(peak, grid[row][col])
	}
	var b strings.Builder
	for j := height - 1; j >= 0; j-- {
		for _, c := range grid[j] {
			if c == 0 {
				b.WriteRune(shades[0])
				continue
			}
			// Any occupied cell stays visible.
			b.WriteRune(max(shade(float64(c), 0, float64(peak)), shades[1]))
		}
		b.WriteByte('\n')
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func shade(v, lo, hi float64) rune {
	if !(hi > lo) {
		return shades[len(shades)/2]
	}
	i := int(float64(len(shades)-1) * (v - lo) / (hi - lo))
	return shades[min(max(i, 0), len(shades)-1)]
}

func init() {
	addSimulationFlags(plotCmd)
	plotCmd.Flags().IntVar(&plotWidth, "width", 72, "Chart width in columns")
	plotCmd.Flags().IntVar(&plotHeight, "height", 12, "Chart height in rows")
	plotCmd.Flags().IntVar(&plotBins, "bins", 20, "Histogram bins")
}
