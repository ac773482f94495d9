package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pointp-sim/pointp-sim/sim"
)

var showLabels bool // Print LaTeX intensity labels

var processesCmd = &cobra.Command{
	Use:   "processes",
	Short: "List the available process kinds and their parameters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeProcesses(cmd.OutOrStdout(), showLabels)
	},
}

func writeProcesses(w io.Writer, labels bool) error {
	headers := []string{"KIND", "DIM", "PARAMETERS", "DESCRIPTION"}
	if labels {
		headers = append(headers, "INTENSITY")
	}
	t := newTable(headers...)
	for _, name := range sim.KindNames() {
		k, _ := sim.LookupKind(name)
		row := []string{k.Name, fmt.Sprintf("%dD", k.Dim), formatSchema(k.Parameters), k.Description}
		if labels {
			row = append(row, k.Label)
		}
		t.Row(row...)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// formatSchema renders a parameter schema as "name∈[min,max] ...".
func formatSchema(schema []sim.ModelParameter) string {
	parts := make([]string, len(schema))
	for i, p := range schema {
		parts[i] = fmt.Sprintf("%s∈[%g,%g]", p.Name, p.Min, p.Max)
	}
	return strings.Join(parts, " ")
}

func init() {
	processesCmd.Flags().BoolVar(&showLabels, "labels", false, "Include the LaTeX intensity label of each kind")
}
