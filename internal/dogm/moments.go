package dogm

import "gonum.org/v1/gonum/floats"

// MomentEstimator extracts the per-cell weighted mean and (co)variance of
// velocity from the particles assigned to that cell, using the
// post-normalisation weight array. Normalisation is by the segment's
// total weight (the bugfixed variant — see §9), not by pers_occ_mass.
type MomentEstimator struct {
	vx, vy, vx2, vy2, vxy, w []float64
}

// NewMomentEstimator creates a MomentEstimator with empty scratch; Estimate
// grows it on demand to the largest cell segment it meets.
func NewMomentEstimator() *MomentEstimator {
	return &MomentEstimator{}
}

// Estimate writes MeanVx/MeanVy/VarVx/VarVy/CovarVxVy for every cell from
// the particles its segment covers and the post-normalisation
// weightArray.
func (m *MomentEstimator) Estimate(cells []GridCell, particles *Particles, weightArray []float32) {
	for c := range cells {
		cell := &cells[c]
		if cell.StartIdx == -1 || cell.PersOccMass == 0 {
			cell.MeanVx, cell.MeanVy = 0, 0
			cell.VarVx, cell.VarVy, cell.CovarVxVy = 0, 0, 0
			continue
		}

		start, end := cell.StartIdx, cell.EndIdx
		count := end - start + 1
		m.vx = growFloat64(m.vx, count)
		m.vy = growFloat64(m.vy, count)
		m.vx2 = growFloat64(m.vx2, count)
		m.vy2 = growFloat64(m.vy2, count)
		m.vxy = growFloat64(m.vxy, count)
		m.w = growFloat64(m.w, count)

		for i := 0; i < count; i++ {
			s := particles.State[start+i]
			w := float64(weightArray[start+i])
			m.w[i] = w
			m.vx[i] = float64(s.Vx)
			m.vy[i] = float64(s.Vy)
			m.vx2[i] = float64(s.Vx) * float64(s.Vx)
			m.vy2[i] = float64(s.Vy) * float64(s.Vy)
			m.vxy[i] = float64(s.Vx) * float64(s.Vy)
		}

		totalWeight := floats.Sum(m.w)
		if totalWeight < 1e-9 {
			continue
		}

		sumVx := floats.Dot(m.w, m.vx)
		sumVy := floats.Dot(m.w, m.vy)
		sumVx2 := floats.Dot(m.w, m.vx2)
		sumVy2 := floats.Dot(m.w, m.vy2)
		sumVxy := floats.Dot(m.w, m.vxy)

		invW := 1 / totalWeight
		meanVx := invW * sumVx
		meanVy := invW * sumVy

		cell.MeanVx = float32(meanVx)
		cell.MeanVy = float32(meanVy)
		cell.VarVx = float32(invW*sumVx2 - meanVx*meanVx)
		cell.VarVy = float32(invW*sumVy2 - meanVy*meanVy)
		cell.CovarVxVy = float32(invW*sumVxy - meanVx*meanVy)
	}
}

func growFloat64(s []float64, n int) []float64 {
	if cap(s) < n {
		return make([]float64, n)
	}
	return s[:n]
}
