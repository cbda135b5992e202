package dogm

import "math/rand"

// Rng is a deterministic pseudo-random source for particle draws. Given
// equal seeds and equal call sequences, Uniform/Normal produce bitwise
// identical output across runs (P7) — callers that parallelise particle-
// or cell-level loops must draw all randomness from Rng in a preceding
// serial pass, never concurrently (see internal/dogm/parallel.go).
type Rng struct {
	src *rand.Rand
}

// NewRng creates an Rng seeded deterministically from seed.
func NewRng(seed uint64) *Rng {
	return &Rng{src: rand.New(rand.NewSource(int64(seed)))}
}

// Uniform draws from the uniform distribution on [lo, hi).
func (r *Rng) Uniform(lo, hi float32) float32 {
	return lo + (hi-lo)*r.src.Float32()
}

// Normal draws from the normal distribution with the given mean and
// standard deviation.
func (r *Rng) Normal(mean, stddev float32) float32 {
	return mean + stddev*float32(r.src.NormFloat64())
}
