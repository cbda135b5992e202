package dogm

import "math"

// OccupancyUpdater combines each cell's predicted occupancy (from the
// particle weight segment sums) with the measurement grid via
// Dempster-Shafer combination, then splits the posterior occupied mass
// into a surviving (persistent) and a newly-born component.
type OccupancyUpdater struct {
	weightAccum []float64
}

// NewOccupancyUpdater creates an OccupancyUpdater with scratch sized for
// particleCapacity.
func NewOccupancyUpdater(particleCapacity int) *OccupancyUpdater {
	return &OccupancyUpdater{weightAccum: make([]float64, particleCapacity)}
}

// Update reads weightArray (cell-ordered, from Assigner) and meas (from
// MeasurementBuilder), and writes the posterior masses and bornMasses for
// every cell.
func (u *OccupancyUpdater) Update(cells []GridCell, weightArray []float32, meas []MeasurementCell, bornMasses []float32, params Params, dt float32) {
	n := len(weightArray)
	u.weightAccum = toFloat64(u.weightAccum, weightArray[:n])
	cumSum64(u.weightAccum, u.weightAccum)

	alpha := float32(math.Pow(float64(params.FreespaceDiscount), float64(dt)))

	_ = shardedFor(len(cells), func(start, end int) error {
		for i := start; i < end; i++ {
			cell := &cells[i]
			mc := meas[i]

			var mOccPred float32
			if cell.StartIdx != -1 {
				mOccPred = float32(segmentSum(u.weightAccum, cell.StartIdx, cell.EndIdx))
			}
			mOccPred = clamp32(mOccPred, 0, 1)

			mFreePred := alpha * cell.FreeMass
			if ceiling := 1 - mOccPred; mFreePred > ceiling {
				mFreePred = ceiling
			}

			uPred := 1 - mOccPred - mFreePred
			uMeas := 1 - mc.FreeMass - mc.OccMass
			k := mFreePred*mc.OccMass + mOccPred*mc.FreeMass

			var mOccUp, mFreeUp float32
			if conflict := 1 - k; conflict <= 0 {
				// Full conflict: no divide-by-zero, fall back to an empty
				// posterior rather than propagate NaN/Inf.
				mOccUp, mFreeUp = 0, 0
			} else {
				mOccUp = (mOccPred*uMeas + uPred*mc.OccMass + mOccPred*mc.OccMass) / conflict
				mFreeUp = (mFreePred*uMeas + uPred*mc.FreeMass + mFreePred*mc.FreeMass) / conflict
			}

			const eps = 1e-9
			rhoB := mOccUp * params.BirthProb * (1 - mOccPred) / (mOccPred + params.BirthProb*(1-mOccPred) + eps)
			rhoP := mOccUp - rhoB

			bornMasses[i] = clamp32(rhoB, 0, 1)
			cell.PersOccMass = rhoP
			cell.NewBornOccMass = rhoB
			cell.FreeMass = mFreeUp
			cell.OccMass = mOccUp
			cell.PredOccMass = mOccPred
			cell.clampMasses()
		}
		return nil
	})
}
