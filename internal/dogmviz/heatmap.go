// Package dogmviz renders a dogm grid as a raster PNG occupancy heatmap.
package dogmviz

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/dogm-go/dogm/internal/dogm"
)

// occupancyGrid adapts a dogm grid-cell slice to plotter.GridXYZ, where Z
// is the pignistic occupancy probability of the cell at (x, y).
type occupancyGrid struct {
	cells    []dogm.GridCell
	gridSize int
}

func (g occupancyGrid) Dims() (c, r int) { return g.gridSize, g.gridSize }

func (g occupancyGrid) X(c int) float64 { return float64(c) }

func (g occupancyGrid) Y(r int) float64 { return float64(r) }

func (g occupancyGrid) Z(c, r int) float64 {
	cell := g.cells[r*g.gridSize+c]
	unknown := 1 - float64(cell.OccMass) - float64(cell.FreeMass)
	return float64(cell.OccMass) + 0.5*unknown
}

// WriteHeatmap renders cells (row-major, gridSize×gridSize) as a PNG
// occupancy heatmap at path, pignistic probability 0 (free) to 1
// (occupied).
func WriteHeatmap(cells []dogm.GridCell, gridSize int, title, path string) error {
	if len(cells) != gridSize*gridSize {
		return fmt.Errorf("dogmviz: len(cells)=%d does not match gridSize²=%d", len(cells), gridSize*gridSize)
	}

	p := plot.New()
	p.Title.Text = title

	grid := occupancyGrid{cells: cells, gridSize: gridSize}
	heatMap := plotter.NewHeatMap(grid, moreland.SmoothBlueRed())
	p.Add(heatMap)

	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("dogmviz: save heatmap: %w", err)
	}
	return nil
}
