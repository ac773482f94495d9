package cmd

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pointp-sim/pointp-sim/sim"
	"github.com/pointp-sim/pointp-sim/sim/scenario"
	"github.com/pointp-sim/pointp-sim/sim/trials"
)

func mustSimulation(t *testing.T, kind string, params, bounds []float64) *scenario.Simulation {
	t.Helper()
	k, ok := sim.LookupKind(kind)
	require.True(t, ok, kind)
	m, err := scenario.NewSimulation(k, params, bounds, 7, sim.DefaultLimits())
	require.NoError(t, err)
	return m
}

func mustExport(t *testing.T, m *scenario.Simulation) Export {
	t.Helper()
	out, err := m.RunSeeded()
	require.NoError(t, err)
	return newExport(m, out)
}

func TestWriteProcesses_ListsEveryKind(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeProcesses(&buf, true))
	out := buf.String()
	for _, name := range sim.KindNames() {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "INTENSITY")
	assert.Contains(t, out, `\lambda`)
}

func TestFormatSchema(t *testing.T) {
	got := formatSchema([]sim.ModelParameter{{Name: "a", Min: 0, Max: 1.5}, {Name: "w", Min: 0.01, Max: 10}})
	assert.Equal(t, "a∈[0,1.5] w∈[0.01,10]", got)
}

func TestExport_CSVColumnsFollowKind(t *testing.T) {
	tests := []struct {
		kind   string
		params []float64
		bounds []float64
		header []string
	}{
		{"homogeneous", []float64{2}, []float64{0, 10}, []string{"time"}},
		{"hawkes", []float64{1.5, 0.8, 2}, []float64{0, 10}, []string{"time", "generation", "parent"}},
		{"homogeneous-2d", []float64{5}, []float64{0, 2, 0, 2}, []string{"x", "y"}},
	}
	for _, tc := range tests {
		t.Run(tc.kind, func(t *testing.T) {
			// GIVEN a realization of the kind
			e := mustExport(t, mustSimulation(t, tc.kind, tc.params, tc.bounds))

			// WHEN it is written as CSV
			var buf bytes.Buffer
			require.NoError(t, writeCSV(&buf, e))

			// THEN there is one header row plus one row per event
			records, err := csv.NewReader(&buf).ReadAll()
			require.NoError(t, err)
			require.Len(t, records, e.Events+1)
			assert.Equal(t, tc.header, records[0])
		})
	}
}

func TestExport_JSONRoundTripsMetadata(t *testing.T) {
	m := mustSimulation(t, "hawkes", []float64{1.5, 0.8, 2}, []float64{0, 10})
	e := mustExport(t, m)

	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, e))

	var got Export
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, e.RunID, got.RunID)
	assert.Equal(t, "hawkes", got.Kind)
	assert.Equal(t, []float64{1.5, 0.8, 2}, got.Params)
	assert.Equal(t, int64(7), got.Seed)
	require.NotNil(t, got.Outcome.Branching)
	assert.Equal(t, e.Outcome.Branching.Parents, got.Outcome.Branching.Parents)
}

func TestExport_RunIDsAreUnique(t *testing.T) {
	m := mustSimulation(t, "homogeneous", []float64{1}, nil)
	assert.NotEqual(t, mustExport(t, m).RunID, mustExport(t, m).RunID)
}

func TestExport_XLSXSheets(t *testing.T) {
	// GIVEN a branching realization saved as a workbook
	e := mustExport(t, mustSimulation(t, "hawkes", []float64{1.5, 0.8, 2}, []float64{0, 10}))
	path := filepath.Join(t.TempDir(), "run.xlsx")
	require.NoError(t, writeXLSX(path, e))

	// WHEN it is read back
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	// THEN the events sheet has the header and every event
	rows, err := f.GetRows("events")
	require.NoError(t, err)
	require.Len(t, rows, e.Events+1)
	assert.Equal(t, []string{"time", "generation", "parent"}, rows[0])

	// AND the run sheet carries the reproduction metadata
	seedCell, err := f.GetCellValue("run", "B5")
	require.NoError(t, err)
	assert.Equal(t, "7", seedCell)
	kindCell, err := f.GetCellValue("run", "B2")
	require.NoError(t, err)
	assert.Equal(t, "hawkes", kindCell)
}

func TestWriteEventTable_Limit(t *testing.T) {
	e := mustExport(t, mustSimulation(t, "homogeneous", []float64{5}, []float64{0, 10}))
	require.Greater(t, e.Events, 3)

	var buf bytes.Buffer
	require.NoError(t, writeEventTable(&buf, e, 3))
	out := buf.String()
	assert.Contains(t, out, e.RunID)
	assert.Contains(t, out, "more events")

	buf.Reset()
	require.NoError(t, writeEventTable(&buf, e, 0))
	assert.NotContains(t, buf.String(), "more events")
}

func TestWritePlots(t *testing.T) {
	tests := []struct {
		kind   string
		params []float64
		bounds []float64
		want   []string
	}{
		{"periodic", []float64{4, 0.5}, []float64{0, 10}, []string{"intensity λ(t)", "counting function", "events per bin"}},
		{"hawkes", []float64{1.5, 0.8, 2}, []float64{0, 10}, []string{"conditional intensity", "counting function"}},
		{"inhomogeneous-2d", []float64{10, 1, 5, 0.5}, []float64{0, 2, 0, 2}, []string{"intensity λ(x, y)", "events"}},
	}
	for _, tc := range tests {
		t.Run(tc.kind, func(t *testing.T) {
			m := mustSimulation(t, tc.kind, tc.params, tc.bounds)
			out, err := m.RunSeeded()
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, writePlots(&buf, m, out, 40, 8, 10))
			for _, s := range tc.want {
				assert.Contains(t, buf.String(), s)
			}
		})
	}
}

func TestScatterMap_GridShape(t *testing.T) {
	// GIVEN two points in opposite corners of the unit square
	pts := sim.Points2D{X: []float64{0.05, 0.95}, Y: []float64{0.05, 0.95}}

	// WHEN they are binned into a 4x3 grid
	lines := strings.Split(scatterMap(pts, sim.Rect{XMin: 0, XMax: 1, YMin: 0, YMax: 1}, 4, 3), "\n")

	// THEN the top row holds the high point at the right and the bottom row the low point at the left
	require.Len(t, lines, 3)
	for _, l := range lines {
		assert.Len(t, []rune(l), 4)
	}
	assert.NotEqual(t, ' ', []rune(lines[0])[3])
	assert.NotEqual(t, ' ', []rune(lines[2])[0])
	assert.Equal(t, "    ", lines[1])
}

func TestShade_FlatRangeUsesMiddle(t *testing.T) {
	assert.Equal(t, shades[len(shades)/2], shade(3, 3, 3))
	assert.Equal(t, shades[0], shade(0, 0, 1))
	assert.Equal(t, shades[len(shades)-1], shade(1, 0, 1))
}

func TestWriteDist(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeDist(&buf, 5, 1000, 0.005, 10, true))
	out := buf.String()
	assert.Contains(t, out, "POISSON(5)")
	assert.Contains(t, out, "BINOMIAL(1000, 0.005)")
	assert.Contains(t, out, "Poisson (blue)")

	assert.Error(t, writeDist(&buf, 0, 10, 0.5, 5, false))
	assert.Error(t, writeDist(&buf, 5, 0, 0.5, 5, false))
}

func TestWriteSummary(t *testing.T) {
	t.Run("poisson kind shows the count band", func(t *testing.T) {
		m := mustSimulation(t, "homogeneous", []float64{2}, []float64{0, 10})
		records, err := trials.Run(t.Context(), trials.Config{Simulation: m, Trials: 50, Workers: 2})
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, writeSummary(&buf, m, trials.Summarize(records)))
		assert.Contains(t, buf.String(), "20.000")
		assert.Contains(t, buf.String(), "0.1% / 99.9% count")
		assert.NotContains(t, buf.String(), "GENERATION")
	})

	t.Run("self-exciting kind shows generations", func(t *testing.T) {
		m := mustSimulation(t, "hawkes", []float64{1.5, 0.8, 2}, []float64{0, 10})
		records, err := trials.Run(t.Context(), trials.Config{Simulation: m, Trials: 50, Workers: 2})
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, writeSummary(&buf, m, trials.Summarize(records)))
		assert.Contains(t, buf.String(), "branching ratio")
		assert.Contains(t, buf.String(), "GENERATION")
	})
}
