package dogm

// Assigner sorts particles by CellIdx (ascending, stability not
// required) using a counting sort — CellIdx is small-integer bounded by
// the cell count, which makes counting sort a better fit than a
// comparison sort — then fills each cell's [StartIdx, EndIdx] and copies
// weights into a cell-ordered weight array so later stages can
// segment-reduce by cell via prefix sums (I2).
type Assigner struct {
	cellCount int

	// scratch, reused across frames to avoid per-frame allocation.
	counts []int32
	offset []int32
	sorted Particles
}

// NewAssigner creates an Assigner for a grid with the given cell count
// and particle capacity.
func NewAssigner(cellCount, particleCapacity int) *Assigner {
	return &Assigner{
		cellCount: cellCount,
		counts:    make([]int32, cellCount+1),
		offset:    make([]int32, cellCount+1),
		sorted:    NewParticles(particleCapacity),
	}
}

// Assign sorts particles ascending by CellIdx in place and fills cells'
// StartIdx/EndIdx plus weightArray (same order as the sorted particles).
func (a *Assigner) Assign(particles *Particles, cells []GridCell, weightArray []float32) {
	n := particles.Len()

	for i := range a.counts {
		a.counts[i] = 0
	}
	for i := 0; i < n; i++ {
		a.counts[particles.CellIdx[i]+1]++
	}
	for i := 1; i < len(a.counts); i++ {
		a.counts[i] += a.counts[i-1]
	}
	copy(a.offset, a.counts)

	for i := 0; i < n; i++ {
		c := particles.CellIdx[i]
		dst := a.offset[c]
		a.sorted.State[dst] = particles.State[i]
		a.sorted.CellIdx[dst] = c
		a.sorted.Weight[dst] = particles.Weight[i]
		a.sorted.Associated[dst] = particles.Associated[i]
		a.offset[c]++
	}

	copy(particles.State[:n], a.sorted.State[:n])
	copy(particles.CellIdx[:n], a.sorted.CellIdx[:n])
	copy(particles.Weight[:n], a.sorted.Weight[:n])
	copy(particles.Associated[:n], a.sorted.Associated[:n])

	for c := range cells {
		cells[c].StartIdx = -1
		cells[c].EndIdx = -1
	}
	if n == 0 {
		return
	}

	cells[particles.CellIdx[0]].StartIdx = 0
	for i := 1; i < n; i++ {
		weightArray[i-1] = particles.Weight[i-1]
		prev, cur := particles.CellIdx[i-1], particles.CellIdx[i]
		if cur != prev {
			cells[prev].EndIdx = i - 1
			cells[cur].StartIdx = i
		}
	}
	cells[particles.CellIdx[n-1]].EndIdx = n - 1
	weightArray[n-1] = particles.Weight[n-1]
}
