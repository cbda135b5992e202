// Package dashboard renders an interactive HTML summary of a batch dogm
// run: occupied/free/unknown cell counts and mean occupied-cell speed,
// one point per processed frame.
package dashboard

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/dogm-go/dogm/internal/dogm"
)

// FrameStat summarises one processed frame for the dashboard.
type FrameStat struct {
	Timestamp     float64
	OccupiedCells int
	FreeCells     int
	UnknownCells  int
	MeanSpeed     float64
}

// Summarise classifies each cell by pignistic occupancy probability
// (occupied > 0.9, free < 0.1, unknown otherwise) and averages the
// velocity magnitude over the occupied cells.
func Summarise(timestamp float64, cells []dogm.GridCell) FrameStat {
	stat := FrameStat{Timestamp: timestamp}
	var speedSum float64
	for i := range cells {
		cell := &cells[i]
		unknown := 1 - float64(cell.OccMass) - float64(cell.FreeMass)
		occProb := float64(cell.OccMass) + 0.5*unknown
		switch {
		case occProb > 0.9:
			stat.OccupiedCells++
			vx, vy := float64(cell.MeanVx), float64(cell.MeanVy)
			speedSum += math.Hypot(vx, vy)
		case occProb < 0.1:
			stat.FreeCells++
		default:
			stat.UnknownCells++
		}
	}
	if stat.OccupiedCells > 0 {
		stat.MeanSpeed = speedSum / float64(stat.OccupiedCells)
	}
	return stat
}

// Dashboard accumulates per-frame statistics for a single run.
type Dashboard struct {
	runID string
	stats []FrameStat
}

// New creates an empty Dashboard labelled with runID.
func New(runID string) *Dashboard {
	return &Dashboard{runID: runID}
}

// Add appends one frame's statistics.
func (d *Dashboard) Add(stat FrameStat) {
	d.stats = append(d.stats, stat)
}

// Render writes the dashboard as a self-contained HTML page to w: one
// line chart of cell-state counts over time and one of mean occupied
// speed over time.
func (d *Dashboard) Render(w io.Writer) error {
	x := make([]string, len(d.stats))
	occupied := make([]opts.LineData, len(d.stats))
	free := make([]opts.LineData, len(d.stats))
	unknown := make([]opts.LineData, len(d.stats))
	speed := make([]opts.LineData, len(d.stats))
	for i, s := range d.stats {
		x[i] = fmt.Sprintf("%.3f", s.Timestamp)
		occupied[i] = opts.LineData{Value: s.OccupiedCells}
		free[i] = opts.LineData{Value: s.FreeCells}
		unknown[i] = opts.LineData{Value: s.UnknownCells}
		speed[i] = opts.LineData{Value: s.MeanSpeed}
	}

	cellsChart := charts.NewLine()
	cellsChart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Cell state counts", Subtitle: fmt.Sprintf("run=%s frames=%d", d.runID, len(d.stats))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "timestamp (s)"}),
	)
	cellsChart.SetXAxis(x).
		AddSeries("occupied", occupied).
		AddSeries("free", free).
		AddSeries("unknown", unknown).
		SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(false)}))

	speedChart := charts.NewLine()
	speedChart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Mean occupied-cell speed"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "timestamp (s)"}),
	)
	speedChart.SetXAxis(x).
		AddSeries("mean speed (cells/s)", speed)

	page := components.NewPage()
	page.AddCharts(cellsChart, speedChart)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("dashboard: render: %w", err)
	}
	return nil
}
