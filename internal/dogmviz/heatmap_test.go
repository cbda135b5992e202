package dogmviz

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dogm-go/dogm/internal/dogm"
)

func TestWriteHeatmapProducesFile(t *testing.T) {
	const gridSize = 4
	cells := make([]dogm.GridCell, gridSize*gridSize)
	for i := range cells {
		cells[i].OccMass = float32(i) / float32(len(cells))
	}

	path := filepath.Join(t.TempDir(), "heatmap.png")
	if err := WriteHeatmap(cells, gridSize, "test grid", path); err != nil {
		t.Fatalf("WriteHeatmap: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat output file: %v", err)
	}
	if info.Size() == 0 {
		t.Error("expected a non-empty PNG file")
	}
}

func TestWriteHeatmapRejectsMismatchedCellCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heatmap.png")
	if err := WriteHeatmap(make([]dogm.GridCell, 5), 4, "bad", path); err == nil {
		t.Fatal("expected an error for a cell count not matching gridSize²")
	}
}
