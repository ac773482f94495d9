package cmd

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pointp-sim/pointp-sim/sim"
	"github.com/pointp-sim/pointp-sim/sim/scenario"
)

var watchConfig bool // Reload --config on change

var exploreCmd = &cobra.Command{
	Use:   "explore [kind]",
	Short: "Adjust parameters interactively and watch realizations change",
	Long: `explore opens a terminal UI showing the intensity and a realization of the
selected process. Use up/down to select a parameter, left/right to adjust it,
r or enter to draw a new realization and q to quit. With --config and --watch
the scenario file is reloaded whenever it is saved.`,
	Example: `  pointp explore hawkes
  pointp explore --config examples/periodic.yaml --watch`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if watchConfig && configPath == "" {
			return fmt.Errorf("--watch requires --config")
		}
		m, _, err := loadSimulation(cmd, args)
		if err != nil {
			return err
		}
		p := tea.NewProgram(newExplorer(m), tea.WithAltScreen())

		if watchConfig {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go func() {
				err := scenario.Watch(ctx, configPath, scenario.DefaultDebounce, func(s *scenario.Scenario, err error) {
					p.Send(reloadMsg{scenario: s, err: err})
				})
				if err != nil && ctx.Err() == nil {
					logrus.Errorf("watching %s: %v", configPath, err)
				}
			}()
		}
		_, err = p.Run()
		return err
	},
}

// reloadMsg carries a reloaded scenario file into the explorer.
type reloadMsg struct {
	scenario *scenario.Scenario
	err      error
}

// explorer is the bubbletea model of the explore command. Every parameter
// change rebuilds the simulation and redraws with the current trial's stream,
// so only the parameter effect is visible; r advances to the next trial.
type explorer struct {
	kind   sim.Kind
	params []float64
	bounds []float64
	seed   int64
	limits sim.Limits

	cursor int
	trial  int

	sim *scenario.Simulation
	out scenario.Outcome
	err error

	width, height int
}

func newExplorer(m *scenario.Simulation) explorer {
	e := explorer{
		kind:   m.Kind,
		params: slices.Clone(m.Params),
		bounds: simulationBounds(m),
		seed:   m.Seed,
		limits: m.Limits,
		width:  80,
		height: 24,
	}
	e.regenerate()
	return e
}

func simulationBounds(m *scenario.Simulation) []float64 {
	if m.Kind.Dim == 2 {
		return []float64{m.Rect.XMin, m.Rect.XMax, m.Rect.YMin, m.Rect.YMax}
	}
	return []float64{m.TMin, m.TMax}
}

// regenerate redraws the current state; see try.
func (e *explorer) regenerate() {
	e.try(e.kind, e.params, e.bounds, e.seed, e.limits, e.trial)
}

// try builds the simulation for a candidate state and draws its trial. The
// explorer takes the candidate only when both succeed; otherwise the error is
// kept for display and the previous state and realization stay on screen.
func (e *explorer) try(kind sim.Kind, params, bounds []float64, seed int64, limits sim.Limits, trial int) bool {
	m, err := scenario.NewSimulation(kind, params, bounds, seed, limits)
	if err != nil {
		e.err = err
		return false
	}
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(seed)).ForSubsystem(sim.SubsystemTrial(trial))
	out, err := m.Run(sim.NewStream(rng, limits))
	if err != nil {
		e.err = err
		return false
	}
	e.kind, e.params, e.bounds, e.seed, e.limits, e.trial = kind, slices.Clone(params), slices.Clone(bounds), seed, limits, trial
	e.sim, e.out, e.err = m, out, nil
	return true
}

// step is the adjustment applied by one left/right key press.
func step(p sim.ModelParameter) float64 {
	if math.IsInf(p.Min, 0) || math.IsInf(p.Max, 0) {
		return 0.1
	}
	return (p.Max - p.Min) / 20
}

func (e explorer) Init() tea.Cmd { return nil }

func (e explorer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return e.handleKey(msg)
	case tea.WindowSizeMsg:
		e.width, e.height = msg.Width, msg.Height
	case reloadMsg:
		e.reload(msg)
	}
	return e, nil
}

func (e explorer) handleKey(msg tea.KeyMsg) (explorer, tea.Cmd) {
	schema := e.kind.Parameters
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return e, tea.Quit
	case "up", "k":
		if e.cursor > 0 {
			e.cursor--
		}
	case "down", "j":
		if e.cursor < len(schema)-1 {
			e.cursor++
		}
	case "left", "h", "right", "l":
		if len(schema) == 0 {
			break
		}
		p := schema[e.cursor]
		d := step(p)
		if s := msg.String(); s == "left" || s == "h" {
			d = -d
		}
		params := slices.Clone(e.params)
		params[e.cursor] = math.Min(math.Max(params[e.cursor]+d, p.Min), p.Max)
		e.try(e.kind, params, e.bounds, e.seed, e.limits, e.trial)
	case "r", "enter", " ":
		e.try(e.kind, e.params, e.bounds, e.seed, e.limits, e.trial+1)
	case "0":
		e.try(e.kind, e.kind.Defaults(), e.bounds, e.seed, e.limits, e.trial)
	}
	return e, nil
}

// reload replaces the explorer's scenario with a reloaded file. A file that
// fails to load, build or run is reported and the current scenario kept.
func (e *explorer) reload(msg reloadMsg) {
	if msg.err != nil {
		e.err = msg.err
		return
	}
	m, err := msg.scenario.Build()
	if err != nil {
		e.err = err
		return
	}
	if e.try(m.Kind, m.Params, simulationBounds(m), m.Seed, m.Limits, 0) {
		e.cursor = min(e.cursor, max(len(e.kind.Parameters)-1, 0))
	}
}

func (e explorer) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(e.kind.Name))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render(e.kind.Description))
	b.WriteString("\n\n")

	rows := make([]string, len(e.kind.Parameters))
	for i, p := range e.kind.Parameters {
		line := fmt.Sprintf("%-4s %8.4g  [%g, %g]", p.Name, e.params[i], p.Min, p.Max)
		if i == e.cursor {
			rows[i] = hotStyle.Render("> " + line)
		} else {
			rows[i] = "  " + line
		}
	}
	info := []string{strings.Join(rows, "\n"), ""}
	if e.sim != nil {
		info = append(info,
			kv("window", e.sim.Window()),
			kv("seed", fmt.Sprintf("%d", e.seed)),
			kv("trial", fmt.Sprintf("%d", e.trial)),
			kv("events", fmt.Sprintf("%d", e.out.Len())),
		)
		if e.out.Branching != nil {
			info = append(info, kv("max generation", fmt.Sprintf("%d", e.out.MaxGeneration())))
		}
		if ratio, ok := e.sim.BranchingRatio(); ok {
			s := kv("branching ratio", fmt.Sprintf("%.3g", ratio))
			if ratio >= 1 {
				s += " " + warnStyle.Render("supercritical")
			}
			info = append(info, s)
		}
	}
	b.WriteString(panelStyle.Render(strings.Join(info, "\n")))
	b.WriteString("\n")

	if e.sim != nil {
		b.WriteString(e.charts())
		b.WriteString("\n")
	}
	if e.err != nil {
		b.WriteString(warnStyle.Render("error: "+e.err.Error()) + "\n")
	}
	b.WriteString(dimStyle.Render("↑/↓ select  ←/→ adjust  r new realization  0 defaults  q quit"))
	return b.String()
}

// charts renders the plots for the current realization sized to the terminal.
func (e explorer) charts() string {
	width := max(e.width-14, 20)
	height := max((e.height-16)/2, 4)
	if e.sim.Kind.Dim == 2 {
		w := max((e.width-8)/2, 10)
		z, err := intensityHeatmap(e.sim, w, height*2)
		if err != nil {
			return warnStyle.Render(err.Error())
		}
		return lipgloss.JoinHorizontal(lipgloss.Top,
			panelStyle.Render(z),
			panelStyle.Render(scatterMap(*e.out.Points, e.sim.Rect, w, height*2)),
		)
	}
	return intensityChart(e.sim, e.out, width, height) + "\n" + countChart(e.sim, e.out, width, height)
}

func init() {
	addSimulationFlags(exploreCmd)
	exploreCmd.Flags().BoolVar(&watchConfig, "watch", false, "Reload --config whenever the file changes")
}
