package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pointp-sim/pointp-sim/sim"
	"github.com/pointp-sim/pointp-sim/sim/scenario"
)

var (
	// Persistent flags shared by every command
	logLevel      string // Log verbosity level
	maxCandidates int    // Rejection-sampling candidate cap (0 = unlimited)
	maxEvents     int    // Branching event cap (0 = unlimited)

	// Simulation flags shared by simulate, plot, trials and explore
	seed       int64     // Seed for the realization
	params     []float64 // Positional process parameters
	bounds     []float64 // [tMin,tMax] or [xMin,xMax,yMin,yMax]
	configPath string    // Scenario YAML file
	background string    // Background kind of a composed self-exciting process
	trigger    string    // Trigger kind of a composed self-exciting process
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "pointp",
	Short: "Simulate Poisson and self-exciting point processes",
	Long: `pointp simulates homogeneous, inhomogeneous and self-exciting (Hawkes)
point processes in one and two dimensions, and shows their intensities,
counting functions and event histograms in the terminal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging()
	},
}

// setupLogging applies --log to the standard logrus logger.
func setupLogging() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	logrus.SetLevel(level)
	return nil
}

// addSimulationFlags registers the flags that select and configure a simulation.
func addSimulationFlags(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&seed, "seed", 42, "Seed for the realization (overrides the scenario seed when set)")
	cmd.Flags().Float64SliceVar(&params, "params", nil, "Comma-separated process parameters in schema order (default: range midpoints)")
	cmd.Flags().Float64SliceVar(&bounds, "bounds", nil, "Comma-separated window: tMin,tMax for 1D or xMin,xMax,yMin,yMax for 2D")
	cmd.Flags().StringVar(&configPath, "config", "", "Scenario YAML file; flags given explicitly override its fields")
	cmd.Flags().StringVar(&background, "background", "", "Background kind of a self-exciting process (with --trigger)")
	cmd.Flags().StringVar(&trigger, "trigger", "", "Trigger kind of a self-exciting process (with --background)")
}

// scenarioFromFlags merges the scenario file (if any), the positional kind and
// explicitly set flags, in increasing priority.
func scenarioFromFlags(cmd *cobra.Command, args []string) (*scenario.Scenario, error) {
	s := &scenario.Scenario{Version: scenario.CurrentVersion, Seed: seed}
	if configPath != "" {
		loaded, err := scenario.Load(configPath)
		if err != nil {
			return nil, err
		}
		s = loaded
		if cmd.Flags().Changed("seed") {
			logrus.Infof("--seed %d overrides scenario seed %d", seed, s.Seed)
			s.Seed = seed
		}
	}
	if len(args) > 0 {
		s.Process, s.Background, s.Trigger = args[0], "", ""
	}
	if background != "" || trigger != "" {
		s.Process, s.Background, s.Trigger = "", background, trigger
	}
	if cmd.Flags().Changed("params") {
		s.Params = params
	}
	if cmd.Flags().Changed("bounds") {
		s.Bounds = bounds
	}
	if s.Limits == nil {
		s.Limits = &sim.Limits{MaxCandidates: maxCandidates, MaxEvents: maxEvents}
	} else {
		if cmd.Flags().Changed("max-candidates") {
			s.Limits.MaxCandidates = maxCandidates
		}
		if cmd.Flags().Changed("max-events") {
			s.Limits.MaxEvents = maxEvents
		}
	}
	return s, nil
}

// loadSimulation resolves and builds the simulation selected on the command line.
func loadSimulation(cmd *cobra.Command, args []string) (*scenario.Simulation, *scenario.Scenario, error) {
	s, err := scenarioFromFlags(cmd, args)
	if err != nil {
		return nil, nil, err
	}
	m, err := s.Build()
	if err != nil {
		return nil, nil, err
	}
	logrus.Debugf("built %s with params %v on %s (seed %d, limits %+v)", m.Kind.Name, m.Params, m.Window(), m.Seed, m.Limits)
	return m, s, nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	defaults := sim.DefaultLimits()
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().IntVar(&maxCandidates, "max-candidates", defaults.MaxCandidates, "Maximum rejection-sampling candidates per draw (0 = unlimited)")
	rootCmd.PersistentFlags().IntVar(&maxEvents, "max-events", defaults.MaxEvents, "Maximum events in one self-exciting realization (0 = unlimited)")

	rootCmd.AddCommand(processesCmd, simulateCmd, plotCmd, trialsCmd, distCmd, exploreCmd)
}
