package dogm

// Predictor propagates every persistent particle by dt under a
// constant-velocity motion model with additive Gaussian process noise,
// discounts its weight by the persistence probability, and kills
// (zero-weights) any particle that leaves the grid rather than wrapping
// or reflecting it.
type Predictor struct {
	geom GridGeometry
}

// NewPredictor creates a Predictor over the given grid geometry.
func NewPredictor(geom GridGeometry) *Predictor {
	return &Predictor{geom: geom}
}

// Predict advances particles in place. Process noise is drawn from rng in
// a serial pass before the parallel state-update loop, per the package's
// RNG-confinement rule (internal/dogm/parallel.go).
func (p *Predictor) Predict(particles *Particles, rng *Rng, params Params, dt float32) {
	n := particles.Len()

	posNoise := make([]float32, 2*n)
	velNoise := make([]float32, 2*n)
	for i := 0; i < n; i++ {
		posNoise[2*i] = rng.Normal(0, params.StddevProcessNoisePosition)
		posNoise[2*i+1] = rng.Normal(0, params.StddevProcessNoisePosition)
		velNoise[2*i] = rng.Normal(0, params.StddevProcessNoiseVelocity)
		velNoise[2*i+1] = rng.Normal(0, params.StddevProcessNoiseVelocity)
	}

	_ = shardedFor(n, func(start, end int) error {
		for i := start; i < end; i++ {
			s := &particles.State[i]
			s.X += s.Vx*dt + posNoise[2*i]
			s.Y += s.Vy*dt + posNoise[2*i+1]
			s.Vx += velNoise[2*i]
			s.Vy += velNoise[2*i+1]

			particles.Weight[i] *= params.PersistenceProb

			if !p.geom.InBounds(s.X, s.Y) {
				particles.Weight[i] = 0
				continue
			}
			idx, _ := p.geom.CellIndex(s.X, s.Y)
			particles.CellIdx[i] = int32(idx)
		}
		return nil
	})
}
