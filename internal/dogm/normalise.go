package dogm

import "math"

// WeightNormaliser re-weights persistent particles against the cell-level
// association split computed by OccupancyUpdater, then folds in a Radar
// radial-velocity likelihood wherever the measurement grid carries a
// confident velocity hint.
type WeightNormaliser struct {
	weightAccum []float64
}

// NewWeightNormaliser creates a WeightNormaliser with scratch sized for
// particleCapacity.
func NewWeightNormaliser(particleCapacity int) *WeightNormaliser {
	return &WeightNormaliser{weightAccum: make([]float64, particleCapacity)}
}

// Normalise updates weightArray in place. egoX, egoY are the runtime ego
// pose in grid-cell units (§9: the source hard-codes (1.5, 1.5) here —
// this implementation always uses the caller-supplied runtime pose).
func (w *WeightNormaliser) Normalise(particles *Particles, cells []GridCell, meas []MeasurementCell, weightArray []float32, egoX, egoY float32) {
	n := particles.Len()

	// Kernel 1: unnormalised weights.
	_ = shardedFor(n, func(start, end int) error {
		for i := start; i < end; i++ {
			weightArray[i] = meas[particles.CellIdx[i]].Likelihood * particles.Weight[i]
		}
		return nil
	})

	w.weightAccum = toFloat64(w.weightAccum, weightArray[:n])
	cumSum64(w.weightAccum, w.weightAccum)

	// Kernel 2: per-cell normalisation components.
	_ = shardedFor(len(cells), func(start, end int) error {
		for c := start; c < end; c++ {
			cell := &cells[c]
			if cell.StartIdx == -1 {
				cell.MuA, cell.MuUA = 0, 0
				continue
			}
			mOccAccum := float32(segmentSum(w.weightAccum, cell.StartIdx, cell.EndIdx))
			if mOccAccum > 0 {
				cell.MuA = cell.PersOccMass / mOccAccum
			} else {
				cell.MuA = 0
			}
			if cell.PredOccMass > 0 {
				cell.MuUA = cell.PersOccMass / cell.PredOccMass
			} else {
				cell.MuUA = 0
			}
		}
		return nil
	})

	// Kernel 3: normalise weights, folding in the radar velocity likelihood.
	_ = shardedFor(n, func(start, end int) error {
		for i := start; i < end; i++ {
			cellIdx := particles.CellIdx[i]
			cell := cells[cellIdx]
			mc := meas[cellIdx]

			newWeight := mc.PA*cell.MuA*weightArray[i] + (1-mc.PA)*cell.MuUA*particles.Weight[i]

			if mc.VelocityConfidence > 0.5 {
				s := particles.State[i]
				dx, dy := s.X-egoX, s.Y-egoY
				angle := math.Atan2(float64(dy), float64(dx))
				particleRadialVel := s.Vx*float32(math.Cos(angle)) + s.Vy*float32(math.Sin(angle))
				velDiff := particleRadialVel - mc.RadialVelocity

				stddev := 0.5 * (1 - mc.VelocityConfidence*0.8)
				velLikelihood := float32(math.Exp(-0.5 * float64(velDiff*velDiff) / float64(stddev*stddev)))
				newWeight *= velLikelihood
			}

			weightArray[i] = newWeight
		}
		return nil
	})
}
