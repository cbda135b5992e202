package dogm

import "math"

// MeasurementBuilder constructs the per-cell measurement grid from a
// SensorFrame: a LiDAR inverse-sensor-model ray-cast pass, a Radar fusion
// pass, and a Dempster-Shafer normalisation pass. meas is fully
// overwritten on every call.
type MeasurementBuilder struct {
	geom GridGeometry
}

// NewMeasurementBuilder creates a MeasurementBuilder over the given grid
// geometry.
func NewMeasurementBuilder(geom GridGeometry) *MeasurementBuilder {
	return &MeasurementBuilder{geom: geom}
}

// Build overwrites meas (length geom.CellCount()) with the measurement
// grid derived from frame. egoX, egoY are the runtime ego pose in
// world-frame metres (see §9: the source hard-codes the sensor origin at
// (1.5, 1.5) grid-cell units here; this implementation always uses the
// caller-supplied runtime pose instead).
func (b *MeasurementBuilder) Build(meas []MeasurementCell, frame *SensorFrame, egoX, egoY float32) {
	for i := range meas {
		meas[i] = defaultMeasurementCell()
	}

	b.lidarPass(meas, frame, egoX, egoY)
	b.radarPass(meas, frame)

	_ = shardedFor(len(meas), func(start, end int) error {
		for i := start; i < end; i++ {
			b.normaliseCell(&meas[i])
		}
		return nil
	})
}

// lidarPass ray-casts every beam from the ego position, discounting
// occupancy along the way and marking the end-of-beam cell occupied.
func (b *MeasurementBuilder) lidarPass(meas []MeasurementCell, frame *SensorFrame, egoX, egoY float32) {
	res := b.geom.Resolution
	for i, rng := range frame.Lidar.Ranges {
		if math.IsNaN(float64(rng)) || math.IsInf(float64(rng), 0) || rng < 0 {
			continue
		}
		angle := frame.Lidar.Angles[i]
		cosA, sinA := float32(math.Cos(float64(angle))), float32(math.Sin(float64(angle)))

		for r := float32(0); r < rng; r += res {
			gx := b.geom.ToGrid(egoX + r*cosA)
			gy := b.geom.ToGrid(egoY + r*sinA)
			idx, ok := b.geom.CellIndex(gx, gy)
			if !ok {
				continue
			}
			cell := &meas[idx]
			if cell.FreeMass < 0.7 {
				cell.FreeMass = 0.7
			}
			cell.OccMass *= 0.5
		}

		endX := b.geom.ToGrid(egoX + rng*cosA)
		endY := b.geom.ToGrid(egoY + rng*sinA)
		idx, ok := b.geom.CellIndex(endX, endY)
		if !ok {
			continue
		}
		if meas[idx].OccMass < 0.8 {
			meas[idx].OccMass = 0.8
		}
		meas[idx].FreeMass = 0
	}
}

// radarPass fuses each Radar detection into the measurement grid,
// overwriting the velocity hint wherever a detection's SNR-derived
// confidence beats the cell's current best.
func (b *MeasurementBuilder) radarPass(meas []MeasurementCell, frame *SensorFrame) {
	for _, det := range frame.Radar {
		gx := b.geom.ToGrid(det.X)
		gy := b.geom.ToGrid(det.Y)
		idx, ok := b.geom.CellIndex(gx, gy)
		if !ok {
			opsf("radar detection (%.2f, %.2f) outside grid, dropped", det.X, det.Y)
			continue
		}
		c := snrToConfidence(det.SNR)
		cell := &meas[idx]
		if occ := 0.7 * c; cell.OccMass < occ {
			cell.OccMass = occ
		}
		cell.FreeMass *= 1 - c
		if c > cell.VelocityConfidence {
			cell.RadialVelocity = det.RadialVelocity
			cell.VelocityConfidence = c
		}
	}
}

func (b *MeasurementBuilder) normaliseCell(cell *MeasurementCell) {
	total := cell.OccMass + cell.FreeMass
	if total > 1 {
		cell.OccMass /= total
		cell.FreeMass /= total
	}
	cell.Likelihood = 1
	cell.PA = 0.5 + 0.4*cell.VelocityConfidence
}

// snrToConfidence maps SNR (dB) into [0,1]: 0 below 5dB, 1 above 20dB,
// linear in between.
func snrToConfidence(snr float32) float32 {
	c := (snr - 5) / 15
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
