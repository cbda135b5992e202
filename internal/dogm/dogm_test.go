package dogm

import (
	"math"
	"testing"
	"time"
)

func smallTestParams() Params {
	return Params{
		Size:                       10,
		Resolution:                 1,
		ParticleCount:              200,
		NewBornParticleCount:       50,
		PersistenceProb:            0.99,
		StddevProcessNoisePosition: 0.02,
		StddevProcessNoiseVelocity: 0.5,
		BirthProb:                  0.02,
		StddevVelocity:             1.0,
		InitMaxVelocity:            3.0,
		FreespaceDiscount:          0.01,
		Seed:                       7,
	}
}

func TestNewRejectsInvalidParams(t *testing.T) {
	p := smallTestParams()
	p.ParticleCount = 0
	if _, err := New(p); err == nil {
		t.Fatal("expected New to reject invalid Params")
	}
}

func TestUpdateRejectsNilFrame(t *testing.T) {
	d, err := New(smallTestParams())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := d.Update(nil, 0.1); err == nil {
		t.Error("expected Update to reject a nil frame")
	}
}

func TestUpdateRejectsNonPositiveDtAfterFirstFrame(t *testing.T) {
	d, err := New(smallTestParams())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	frame := &SensorFrame{Timestamp: time.Unix(0, 0)}
	if err := d.Update(frame, 0); err != nil {
		t.Fatalf("first Update should ignore dt, got error: %v", err)
	}
	if err := d.Update(frame, 0); err == nil {
		t.Error("expected the second Update to reject dt <= 0")
	}
}

// TestUpdatePreservesParticleCount pins P3.
func TestUpdatePreservesParticleCount(t *testing.T) {
	d, err := New(smallTestParams())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	frame := &SensorFrame{Timestamp: time.Unix(0, 0)}
	for i := 0; i < 3; i++ {
		if err := d.Update(frame, 0.1); err != nil {
			t.Fatalf("Update %d: %v", i, err)
		}
		if got := d.Particles().Len(); got != 200 {
			t.Fatalf("after Update %d: particle count = %d, want 200", i, got)
		}
	}
}

// TestUpdateEmptyFrame pins scenario 1: an empty frame leaves every grid
// cell's occupancy mass at the prior birth-driven mass, with zero mean
// velocity.
func TestUpdateEmptyFrame(t *testing.T) {
	d, err := New(smallTestParams())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	frame := &SensorFrame{
		Timestamp: time.Unix(0, 0),
		EgoPoseX:  5,
		EgoPoseY:  0,
		EgoYaw:    float32(math.Pi / 2),
	}
	if err := d.Update(frame, 0); err != nil {
		t.Fatalf("Update: %v", err)
	}

	for i, c := range d.Cells() {
		if c.OccMass > 0.05 {
			t.Fatalf("cell %d: OccMass = %v, want near 0 on an empty first frame", i, c.OccMass)
		}
		if c.MeanVx != 0 || c.MeanVy != 0 {
			t.Fatalf("cell %d: mean velocity = (%v, %v), want (0, 0)", i, c.MeanVx, c.MeanVy)
		}
	}
}

// TestDeterminism pins P7: equal seed and equal frame sequence produce a
// bitwise-equal grid-cell array.
func TestDeterminism(t *testing.T) {
	params := smallTestParams()

	run := func() []GridCell {
		d, err := New(params)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		frames := []*SensorFrame{
			{Timestamp: time.Unix(0, 0), EgoPoseX: 5, EgoPoseY: 5},
			{
				Timestamp: time.Unix(1, 0),
				Lidar:     LidarScan{Angles: []float32{0}, Ranges: []float32{2}},
				EgoPoseX:  5, EgoPoseY: 5,
			},
		}
		for i, f := range frames {
			dt := float32(0)
			if i > 0 {
				dt = 1
			}
			if err := d.Update(f, dt); err != nil {
				t.Fatalf("Update %d: %v", i, err)
			}
		}
		out := make([]GridCell, len(d.Cells()))
		copy(out, d.Cells())
		return out
	}

	a := run()
	b := run()

	if len(a) != len(b) {
		t.Fatalf("len mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("cell %d diverged: %+v vs %+v", i, a[i], b[i])
		}
	}
}

// TestStaticOccupancyConvergence pins scenario 4: repeatedly observing
// the same cell drives its OccMass up over many frames.
func TestStaticOccupancyConvergence(t *testing.T) {
	params := smallTestParams()
	params.Size = 20
	params.Resolution = 0.2 // GridSize = 100
	d, err := New(params)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	endIdx, ok := d.geom.CellIndex(60, 50)
	if !ok {
		t.Fatal("expected (60,50) to be in bounds")
	}

	frame := &SensorFrame{
		Timestamp: time.Unix(0, 0),
		Lidar:     LidarScan{Angles: []float32{0}, Ranges: []float32{2}},
		EgoPoseX:  10, EgoPoseY: 10,
	}

	firstOcc := float32(-1)
	for i := 0; i < 50; i++ {
		dt := float32(0.1)
		if i == 0 {
			dt = 0
		}
		if err := d.Update(frame, dt); err != nil {
			t.Fatalf("Update %d: %v", i, err)
		}
		if i == 0 {
			firstOcc = d.Cells()[endIdx].OccMass
		}
	}

	lastOcc := d.Cells()[endIdx].OccMass
	if lastOcc <= firstOcc {
		t.Errorf("expected OccMass to increase from %v to something higher after 50 identical frames, got %v", firstOcc, lastOcc)
	}
}

func TestAccessors(t *testing.T) {
	d, err := New(smallTestParams())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if d.GridSize() != 10 {
		t.Errorf("GridSize() = %d, want 10", d.GridSize())
	}
	if d.Resolution() != 1 {
		t.Errorf("Resolution() = %v, want 1", d.Resolution())
	}

	frame := &SensorFrame{Timestamp: time.Unix(0, 0), EgoPoseX: 3, EgoPoseY: 4, EgoYaw: 1}
	if err := d.Update(frame, 0); err != nil {
		t.Fatalf("Update: %v", err)
	}
	x, y, yaw := d.EgoPose()
	if x != 3 || y != 4 || yaw != 1 {
		t.Errorf("EgoPose() = (%v, %v, %v), want (3, 4, 1)", x, y, yaw)
	}
}
