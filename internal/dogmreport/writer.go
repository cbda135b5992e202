// Package dogmreport writes the batch occupancy report: one CSV row per
// cell whose pignistic occupancy probability falls in the reportable
// band, per frame.
package dogmreport

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dogm-go/dogm/internal/dogm"
)

// Writer wraps a csv.Writer with the occupancy report's fixed schema.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer over w and writes the header row.
func NewWriter(w io.Writer) *Writer {
	cw := &Writer{csv: csv.NewWriter(w)}
	cw.csv.Write([]string{"timestamp", "cell_x", "cell_y", "occ_prob", "mean_vx", "mean_vy"})
	return cw
}

// WriteFrame emits one row per cell whose pignistic occupancy
// probability lies strictly between 0.1 and 0.9.
func (w *Writer) WriteFrame(timestamp float64, cells []dogm.GridCell, gridSize int) error {
	for i := range cells {
		cell := &cells[i]
		occProb := pignistic(cell)
		if occProb <= 0.1 || occProb >= 0.9 {
			continue
		}

		cellX := i % gridSize
		cellY := i / gridSize

		row := []string{
			fmt.Sprintf("%.6f", timestamp),
			fmt.Sprintf("%d", cellX),
			fmt.Sprintf("%d", cellY),
			fmt.Sprintf("%.6f", occProb),
			fmt.Sprintf("%.6f", cell.MeanVx),
			fmt.Sprintf("%.6f", cell.MeanVy),
		}
		if err := w.csv.Write(row); err != nil {
			return fmt.Errorf("dogmreport: write row: %w", err)
		}
	}
	w.csv.Flush()
	return w.csv.Error()
}

// pignistic returns occ + 0.5*unknown, the decision-level occupancy
// probability.
func pignistic(cell *dogm.GridCell) float64 {
	unknown := 1 - float64(cell.OccMass) - float64(cell.FreeMass)
	return float64(cell.OccMass) + 0.5*unknown
}
