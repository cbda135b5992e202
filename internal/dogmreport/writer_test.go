package dogmreport

import (
	"strings"
	"testing"

	"github.com/dogm-go/dogm/internal/dogm"
)

func TestWriterFiltersByOccupancyBand(t *testing.T) {
	cells := []dogm.GridCell{
		{OccMass: 0.5, FreeMass: 0.4, MeanVx: 1.0, MeanVy: 0.5},
		{OccMass: 0.0, FreeMass: 1.0},
		{OccMass: 1.0, FreeMass: 0.0},
	}

	var buf strings.Builder
	w := NewWriter(&buf)
	if err := w.WriteFrame(1.0, cells, 1); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2 (header + 1 row): %q", len(lines), out)
	}
	if !strings.Contains(lines[1], "0.550000") {
		t.Errorf("expected pignistic 0.55 in row, got %q", lines[1])
	}
}
