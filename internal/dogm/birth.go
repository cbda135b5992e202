package dogm

import "math"

// BirthSampler distributes a fixed-capacity buffer of new-born particles
// over cells in proportion to each cell's born mass (from
// OccupancyUpdater), splitting each cell's allocation into
// measurement-associated and unassociated slots.
type BirthSampler struct {
	geom      GridGeometry
	bornAccum []float64
}

// NewBirthSampler creates a BirthSampler over the given grid geometry.
func NewBirthSampler(geom GridGeometry) *BirthSampler {
	return &BirthSampler{geom: geom, bornAccum: make([]float64, geom.CellCount())}
}

// Sample fills birth (capacity P_B) from bornMasses/meas/cells. Every RNG
// draw happens in this single serial pass — BirthSampler is never
// sharded — per the package's RNG-confinement rule.
func (b *BirthSampler) Sample(birth *Particles, cells []GridCell, meas []MeasurementCell, bornMasses []float32, rng *Rng, params Params, egoX, egoY float32) {
	n := birth.Len()
	b.bornAccum = toFloat64(b.bornAccum, bornMasses)
	cumSum64(b.bornAccum, b.bornAccum)

	total := 0.0
	if len(b.bornAccum) > 0 {
		total = b.bornAccum[len(b.bornAccum)-1]
	}
	if total <= 0 {
		for i := 0; i < n; i++ {
			birth.Weight[i] = 0
		}
		return
	}

	vB := float64(n)
	g := b.geom.GridSize

	for j := range cells {
		startOrder := 0.0
		if j > 0 {
			startOrder = b.bornAccum[j-1]
		}
		endOrder := b.bornAccum[j]

		startIdx := int(math.Ceil(startOrder / total * vB))
		endIdx := int(math.Ceil(endOrder / total * vB))
		if endIdx > n {
			endIdx = n
		}
		numNew := endIdx - startIdx
		if numNew <= 0 {
			continue
		}

		mc := meas[j]
		nuA := int(math.Round(float64(numNew) * float64(mc.PA)))
		nuUA := numNew - nuA

		var wA, wUA float32
		if nuA > 0 {
			wA = mc.PA * bornMasses[j] / float32(nuA)
		}
		if nuUA > 0 {
			wUA = (1 - mc.PA) * bornMasses[j] / float32(nuUA)
		}

		cellX := float32(j%g) + 0.5
		cellY := float32(j/g) + 0.5

		for i := startIdx; i < endIdx; i++ {
			isAssociated := i < startIdx+nuA

			jitterX := rng.Uniform(-0.5, 0.5)
			jitterY := rng.Uniform(-0.5, 0.5)

			var vx, vy float32
			if isAssociated && mc.VelocityConfidence > 0.5 {
				angle := math.Atan2(float64(cellY-egoY), float64(cellX-egoX))
				meanVx := mc.RadialVelocity * float32(math.Cos(angle))
				meanVy := mc.RadialVelocity * float32(math.Sin(angle))
				vx = rng.Normal(meanVx, params.StddevVelocity/2)
				vy = rng.Normal(meanVy, params.StddevVelocity/2)
			} else {
				vx = rng.Normal(0, params.StddevVelocity)
				vy = rng.Normal(0, params.StddevVelocity)
			}

			birth.State[i] = ParticleState{X: cellX + jitterX, Y: cellY + jitterY, Vx: vx, Vy: vy}
			birth.CellIdx[i] = int32(j)
			birth.Associated[i] = isAssociated
			if isAssociated {
				birth.Weight[i] = wA
			} else {
				birth.Weight[i] = wUA
			}
		}
	}
}
