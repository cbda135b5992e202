package dogm

import "sort"

// Resampler draws the next frame's persistent particle buffer from the
// joint (persistent ∪ birth) weight distribution via multinomial
// resampling, selecting source particles by binary search on the prefix
// sum. The association flag is inherited from whichever source particle
// was drawn, so it survives resampling.
type Resampler struct {
	jointAccum []float64
}

// NewResampler creates a Resampler with scratch sized for
// particleCapacity+birthCapacity.
func NewResampler(particleCapacity, birthCapacity int) *Resampler {
	return &Resampler{jointAccum: make([]float64, 0, particleCapacity+birthCapacity)}
}

// Resample draws len(next.State) particles into next from persistent
// (weighted by weightArray) and birth (weighted by birthWeightArray).
// RNG draws happen in a single serial pass, per the package's
// RNG-confinement rule. If the joint total weight is non-positive, next
// is reinitialised uniformly over the grid instead (the "all weights
// zero" failsafe).
func (r *Resampler) Resample(persistent *Particles, birth *Particles, weightArray, birthWeightArray []float32, next *Particles, rng *Rng, geom GridGeometry, initMaxVelocity float32) {
	persistentCount := persistent.Len()
	birthCount := birth.Len()
	total := persistentCount + birthCount

	joint := make([]float64, total)
	for i := 0; i < persistentCount; i++ {
		joint[i] = float64(weightArray[i])
	}
	for i := 0; i < birthCount; i++ {
		joint[persistentCount+i] = float64(birthWeightArray[i])
	}
	r.jointAccum = cumSum64(growFloat64(r.jointAccum, total), joint)

	totalWeight := 0.0
	if total > 0 {
		totalWeight = r.jointAccum[total-1]
	}

	if totalWeight <= 0 {
		reinitialiseUniform(next, rng, geom, initMaxVelocity)
		return
	}

	newWeight := float32(totalWeight / float64(next.Len()))

	for i := 0; i < next.Len(); i++ {
		target := float64(rng.Uniform(0, float32(totalWeight)))
		idx := sort.Search(total, func(k int) bool { return r.jointAccum[k] >= target })
		if idx >= total {
			idx = total - 1
		}

		if idx < persistentCount {
			next.CopyFrom(i, persistent, idx)
		} else {
			next.CopyFrom(i, birth, idx-persistentCount)
		}
		next.Weight[i] = newWeight
		// CellIdx is recomputed by Predictor on the next frame.
		next.CellIdx[i] = 0
	}
}

// reinitialiseUniform scatters particles uniformly over the grid with
// uniform random velocity in [-initMaxVelocity, initMaxVelocity], the
// same distribution New uses at construction.
func reinitialiseUniform(particles *Particles, rng *Rng, geom GridGeometry, initMaxVelocity float32) {
	n := particles.Len()
	newWeight := float32(1.0 / float64(n))
	g := float32(geom.GridSize)
	for i := 0; i < n; i++ {
		x := rng.Uniform(0, g)
		y := rng.Uniform(0, g)
		vx := rng.Uniform(-initMaxVelocity, initMaxVelocity)
		vy := rng.Uniform(-initMaxVelocity, initMaxVelocity)
		particles.State[i] = ParticleState{X: x, Y: y, Vx: vx, Vy: vy}
		particles.Weight[i] = newWeight
		idx, _ := geom.CellIndex(x, y)
		particles.CellIdx[i] = int32(idx)
		particles.Associated[i] = false
	}
}
