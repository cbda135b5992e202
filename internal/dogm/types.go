package dogm

import "time"

// GridCell holds the posterior occupancy/velocity state of a single grid
// index. Cells are allocated once at construction and mutated in place on
// every frame.
//
// All masses are clamped into [0,1] at every kernel exit. StartIdx/EndIdx
// are only consistent with the particle array between Assigner running and
// the next kernel that reorders particles (Resampler).
type GridCell struct {
	OccMass  float32 // posterior occupied mass
	FreeMass float32 // posterior free mass

	PredOccMass float32 // predicted (pre-measurement) occupancy mass, kept for WeightNormaliser

	PersOccMass    float32 // portion of OccMass attributed to surviving (persistent) evidence
	NewBornOccMass float32 // portion of OccMass attributed to newly-born evidence

	MuA  float32 // association-weighted normaliser (WeightNormaliser scratch)
	MuUA float32 // unassociated normaliser (WeightNormaliser scratch)

	StartIdx int // inclusive start into the sorted particle array, -1 if empty
	EndIdx   int // inclusive end into the sorted particle array, -1 if empty

	MeanVx, MeanVy float32
	VarVx, VarVy   float32
	CovarVxVy      float32
}

// clampMasses pins every mass field of the cell into [0,1].
func (c *GridCell) clampMasses() {
	c.OccMass = clamp32(c.OccMass, 0, 1)
	c.FreeMass = clamp32(c.FreeMass, 0, 1)
	c.PersOccMass = clamp32(c.PersOccMass, 0, 1)
	c.NewBornOccMass = clamp32(c.NewBornOccMass, 0, 1)
}

// MeasurementCell holds the per-frame measurement evidence for a single
// grid index. The slice is fully overwritten by MeasurementBuilder on
// every frame; nothing in it survives between frames.
type MeasurementCell struct {
	OccMass  float32
	FreeMass float32

	Likelihood float32 // >= 0, default 1

	// PA is the probability that a persistent particle in this cell was
	// caused by the current measurement (association probability).
	PA float32

	RadialVelocity     float32
	VelocityConfidence float32 // in [0,1]
}

// defaultMeasurementCell is the zero-evidence state: fully unknown, default
// likelihood, no velocity hint.
func defaultMeasurementCell() MeasurementCell {
	return MeasurementCell{Likelihood: 1}
}

// ParticleState is the continuous (position, velocity) hypothesis carried
// by a single particle, in grid-cell units (not metres).
type ParticleState struct {
	X, Y   float32
	Vx, Vy float32
}

// Particles is a structure-of-arrays buffer of fixed capacity. Fields are
// accessed in long, cache-friendly sweeps by each pipeline stage, so hot
// loops only ever touch the arrays they need.
type Particles struct {
	State      []ParticleState
	CellIdx    []int32
	Weight     []float32
	Associated []bool
}

// NewParticles allocates a Particles buffer with the given capacity.
func NewParticles(capacity int) Particles {
	return Particles{
		State:      make([]ParticleState, capacity),
		CellIdx:    make([]int32, capacity),
		Weight:     make([]float32, capacity),
		Associated: make([]bool, capacity),
	}
}

// Len returns the particle count (I1: constant across a frame).
func (p *Particles) Len() int { return len(p.State) }

// CopyFrom copies the State and Associated flag of src's particle at index
// srcIdx into p[dst]. Weight and CellIdx of p[dst] are left unchanged.
func (p *Particles) CopyFrom(dst int, src *Particles, srcIdx int) {
	p.State[dst] = src.State[srcIdx]
	p.Associated[dst] = src.Associated[srcIdx]
}

// LidarScan is one frame's worth of range-bearing beams.
type LidarScan struct {
	Angles []float32 // radians, robot/sensor frame
	Ranges []float32 // metres
}

// RadarDetection is a single position+radial-velocity Radar return.
type RadarDetection struct {
	X, Y           float32 // world frame, metres
	RadialVelocity float32 // metres/second, positive away from sensor
	SNR            float32 // signal-to-noise ratio, dB
}

// SensorFrame is a timestamped, already-synchronised bundle of LiDAR and
// Radar observations plus the ego pose/yaw that were current when the
// observations were taken.
type SensorFrame struct {
	Timestamp time.Time
	Lidar     LidarScan
	Radar     []RadarDetection
	EgoPoseX  float32 // world frame, metres
	EgoPoseY  float32 // world frame, metres
	EgoYaw    float32 // radians
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
