package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/pointp-sim/pointp-sim/sim/scenario"
)

// Export is one realization together with everything needed to reproduce it.
type Export struct {
	RunID   string           `json:"run_id"`
	Kind    string           `json:"kind"`
	Params  []float64        `json:"params"`
	Window  string           `json:"window"`
	Seed    int64            `json:"seed"`
	Events  int              `json:"events"`
	Outcome scenario.Outcome `json:"outcome"`
}

func newExport(m *scenario.Simulation, out scenario.Outcome) Export {
	return Export{
		RunID:   uuid.NewString(),
		Kind:    m.Kind.Name,
		Params:  m.Params,
		Window:  m.Window(),
		Seed:    m.Seed,
		Events:  out.Len(),
		Outcome: out,
	}
}

// eventColumns returns the column names and per-event values of out.
func eventColumns(out scenario.Outcome) ([]string, [][]float64) {
	switch {
	case out.Points != nil:
		rows := make([][]float64, out.Points.Len())
		for i := range rows {
			rows[i] = []float64{out.Points.X[i], out.Points.Y[i]}
		}
		return []string{"x", "y"}, rows
	case out.Branching != nil:
		r := out.Branching
		rows := make([][]float64, r.Len())
		for i := range rows {
			rows[i] = []float64{r.Times[i], float64(r.Generations[i]), float64(r.Parents[i])}
		}
		return []string{"time", "generation", "parent"}, rows
	default:
		rows := make([][]float64, len(out.Times))
		for i, t := range out.Times {
			rows[i] = []float64{t}
		}
		return []string{"time"}, rows
	}
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeJSON(w io.Writer, e Export) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

func writeCSV(w io.Writer, e Export) error {
	header, rows := eventColumns(e.Outcome)
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	record := make([]string, len(header))
	for _, row := range rows {
		for i, v := range row {
			record[i] = formatValue(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeXLSX saves an "events" sheet with one row per event and a "run" sheet
// with the reproduction metadata.
func writeXLSX(path string, e Export) error {
	f := excelize.NewFile()
	defer f.Close()

	const events, run = "events", "run"
	if err := f.SetSheetName("Sheet1", events); err != nil {
		return fmt.Errorf("creating events sheet: %w", err)
	}
	header, rows := eventColumns(e.Outcome)
	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(events, "A1", &headerRow); err != nil {
		return err
	}
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for i, v := range row {
			values[i] = v
		}
		if err := f.SetSheetRow(events, cell, &values); err != nil {
			return fmt.Errorf("writing event %d: %w", r, err)
		}
	}

	if _, err := f.NewSheet(run); err != nil {
		return fmt.Errorf("creating run sheet: %w", err)
	}
	meta := [][]interface{}{
		{"run_id", e.RunID},
		{"kind", e.Kind},
		{"params", fmt.Sprint(e.Params)},
		{"window", e.Window},
		{"seed", e.Seed},
		{"events", e.Events},
	}
	for r, row := range meta {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(run, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}
