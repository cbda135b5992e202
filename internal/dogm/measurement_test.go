package dogm

import (
	"math"
	"testing"
	"time"
)

// TestMeasurementBuilderEmptyFrame pins scenario 1: an empty frame leaves
// every measurement cell at zero evidence.
func TestMeasurementBuilderEmptyFrame(t *testing.T) {
	geom := NewGridGeometry(10, 1)
	b := NewMeasurementBuilder(geom)
	meas := make([]MeasurementCell, geom.CellCount())

	frame := &SensorFrame{Timestamp: time.Unix(0, 0), EgoPoseX: 5, EgoPoseY: 0, EgoYaw: math.Pi / 2}
	b.Build(meas, frame, frame.EgoPoseX, frame.EgoPoseY)

	for i, mc := range meas {
		if mc.OccMass != 0 || mc.FreeMass != 0 {
			t.Fatalf("cell %d: occ=%v free=%v, want zero evidence", i, mc.OccMass, mc.FreeMass)
		}
	}
}

// TestMeasurementBuilderSingleLidarBeam pins scenario 2.
func TestMeasurementBuilderSingleLidarBeam(t *testing.T) {
	geom := NewGridGeometry(20, 0.2) // GridSize = 100
	b := NewMeasurementBuilder(geom)
	meas := make([]MeasurementCell, geom.CellCount())

	frame := &SensorFrame{
		Timestamp: time.Unix(0, 0),
		Lidar:     LidarScan{Angles: []float32{float32(math.Pi / 2)}, Ranges: []float32{2.0}},
		EgoPoseX:  10,
		EgoPoseY:  2,
	}
	b.Build(meas, frame, frame.EgoPoseX, frame.EgoPoseY)

	endIdx, ok := geom.CellIndex(50, 20)
	if !ok {
		t.Fatal("expected end cell (50,20) to be in bounds")
	}
	end := meas[endIdx]
	if end.OccMass < 0.8 {
		t.Errorf("end cell OccMass = %v, want >= 0.8", end.OccMass)
	}
	if end.FreeMass != 0 {
		t.Errorf("end cell FreeMass = %v, want 0", end.FreeMass)
	}

	rayIdx, ok := geom.CellIndex(50, 15)
	if !ok {
		t.Fatal("expected ray cell (50,15) to be in bounds")
	}
	ray := meas[rayIdx]
	if ray.FreeMass < 0.7 {
		t.Errorf("ray cell FreeMass = %v, want >= 0.7", ray.FreeMass)
	}
}

// TestMeasurementBuilderSingleRadarDetection pins scenario 3.
func TestMeasurementBuilderSingleRadarDetection(t *testing.T) {
	geom := NewGridGeometry(20, 0.2) // GridSize = 100
	b := NewMeasurementBuilder(geom)
	meas := make([]MeasurementCell, geom.CellCount())

	frame := &SensorFrame{
		Timestamp: time.Unix(0, 0),
		Radar: []RadarDetection{
			{X: 11, Y: 3, RadialVelocity: 1.0, SNR: 20},
		},
	}
	b.Build(meas, frame, 0, 0)

	idx, ok := geom.CellIndex(55, 15)
	if !ok {
		t.Fatal("expected (55,15) to be in bounds")
	}
	cell := meas[idx]
	if cell.OccMass < 0.7 {
		t.Errorf("OccMass = %v, want >= 0.7", cell.OccMass)
	}
	if cell.VelocityConfidence != 1 {
		t.Errorf("VelocityConfidence = %v, want 1 (SNR=20 saturates)", cell.VelocityConfidence)
	}
	if cell.RadialVelocity != 1.0 {
		t.Errorf("RadialVelocity = %v, want 1.0", cell.RadialVelocity)
	}
	if cell.PA < 0.89 || cell.PA > 0.91 {
		t.Errorf("PA = %v, want ~0.9", cell.PA)
	}
}

func TestSnrToConfidence(t *testing.T) {
	if c := snrToConfidence(0); c != 0 {
		t.Errorf("snrToConfidence(0) = %v, want 0", c)
	}
	if c := snrToConfidence(20); c != 1 {
		t.Errorf("snrToConfidence(20) = %v, want 1", c)
	}
	if c := snrToConfidence(100); c != 1 {
		t.Errorf("snrToConfidence(100) = %v, want 1 (clamped)", c)
	}
}

func TestMeasurementBuilderDropsOutOfGridRadar(t *testing.T) {
	geom := NewGridGeometry(10, 1)
	b := NewMeasurementBuilder(geom)
	meas := make([]MeasurementCell, geom.CellCount())

	frame := &SensorFrame{
		Timestamp: time.Unix(0, 0),
		Radar:     []RadarDetection{{X: 1000, Y: 1000, RadialVelocity: 1, SNR: 20}},
	}
	b.Build(meas, frame, 0, 0)

	for i, mc := range meas {
		if mc.OccMass != 0 {
			t.Fatalf("cell %d: expected no evidence from an out-of-grid detection, got OccMass=%v", i, mc.OccMass)
		}
	}
}
