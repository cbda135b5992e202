package dogm

import "fmt"

// Dogm owns the full particle and grid state of one occupancy map and
// advances it one sensor frame at a time. It is not safe for concurrent
// use by multiple goroutines — each Update call internally fans work out
// across shards and joins before returning.
type Dogm struct {
	params Params
	geom   GridGeometry

	cells []GridCell
	meas  []MeasurementCell

	current *Particles
	next    *Particles
	birth   Particles

	weightArray      []float32
	birthWeightArray []float32
	bornMasses       []float32

	rng *Rng

	measurementBuilder *MeasurementBuilder
	predictor          *Predictor
	assigner           *Assigner
	occupancyUpdater   *OccupancyUpdater
	weightNormaliser   *WeightNormaliser
	birthSampler       *BirthSampler
	momentEstimator    *MomentEstimator
	resampler          *Resampler

	egoX, egoY float32 // world frame, metres; current ego pose
	egoYaw     float32

	firstFrame bool
}

// New validates params and allocates every buffer the pipeline needs.
func New(params Params) (*Dogm, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	geom := NewGridGeometry(params.Size, params.Resolution)
	cellCount := geom.CellCount()

	a := NewParticles(params.ParticleCount)
	b := NewParticles(params.ParticleCount)

	d := &Dogm{
		params:  params,
		geom:    geom,
		cells:   make([]GridCell, cellCount),
		meas:    make([]MeasurementCell, cellCount),
		current: &a,
		next:    &b,
		birth:   NewParticles(params.NewBornParticleCount),

		weightArray:      make([]float32, params.ParticleCount),
		birthWeightArray: make([]float32, params.NewBornParticleCount),
		bornMasses:       make([]float32, cellCount),

		rng: NewRng(params.Seed),

		measurementBuilder: NewMeasurementBuilder(geom),
		predictor:          NewPredictor(geom),
		assigner:           NewAssigner(cellCount, params.ParticleCount),
		occupancyUpdater:   NewOccupancyUpdater(params.ParticleCount),
		weightNormaliser:   NewWeightNormaliser(params.ParticleCount),
		birthSampler:       NewBirthSampler(geom),
		momentEstimator:    NewMomentEstimator(),
		resampler:          NewResampler(params.ParticleCount, params.NewBornParticleCount),

		firstFrame: true,
	}

	reinitialiseUniform(d.current, d.rng, geom, params.InitMaxVelocity)
	for i := range d.cells {
		d.cells[i].StartIdx, d.cells[i].EndIdx = -1, -1
	}

	return d, nil
}

// Update advances the map by one sensor frame covering dt seconds. dt
// must be positive on every frame after the first; it is ignored on the
// first frame (there is nothing yet to predict forward).
func (d *Dogm) Update(frame *SensorFrame, dt float32) error {
	if frame == nil {
		return fmt.Errorf("dogm: nil sensor frame")
	}
	if !d.firstFrame && dt <= 0 {
		return fmt.Errorf("dogm: dt must be positive, got %f", dt)
	}

	d.egoX, d.egoY = frame.EgoPoseX, frame.EgoPoseY
	d.egoYaw = frame.EgoYaw
	gridEgoX, gridEgoY := d.geom.ToGrid(d.egoX), d.geom.ToGrid(d.egoY)

	d.measurementBuilder.Build(d.meas, frame, d.egoX, d.egoY)

	if !d.firstFrame {
		d.predictor.Predict(d.current, d.rng, d.params, dt)
	}

	d.assigner.Assign(d.current, d.cells, d.weightArray)
	tracef("assign: %d particles across %d cells", d.current.Len(), len(d.cells))

	d.occupancyUpdater.Update(d.cells, d.weightArray, d.meas, d.bornMasses, d.params, dt)
	tracef("occupancy update done, dt=%f", dt)

	d.weightNormaliser.Normalise(d.current, d.cells, d.meas, d.weightArray, gridEgoX, gridEgoY)
	tracef("weights normalised around ego=(%f, %f)", gridEgoX, gridEgoY)

	d.birthSampler.Sample(&d.birth, d.cells, d.meas, d.bornMasses, d.rng, d.params, gridEgoX, gridEgoY)
	tracef("birth sampled: %d new particles", d.birth.Len())

	d.momentEstimator.Estimate(d.cells, d.current, d.weightArray)

	for i := 0; i < d.birth.Len(); i++ {
		d.birthWeightArray[i] = d.birth.Weight[i]
	}

	d.resampler.Resample(d.current, &d.birth, d.weightArray, d.birthWeightArray, d.next, d.rng, d.geom, d.params.InitMaxVelocity)

	d.current, d.next = d.next, d.current
	d.firstFrame = false
	diagf("frame updated: particles=%d cells=%d", d.current.Len(), len(d.cells))
	return nil
}

// Cells returns the current grid cell array, read-only by convention —
// callers must not retain it across the next Update call.
func (d *Dogm) Cells() []GridCell { return d.cells }

// Measurement returns the measurement grid built from the most recent
// sensor frame.
func (d *Dogm) Measurement() []MeasurementCell { return d.meas }

// Particles returns the live persistent particle buffer.
func (d *Dogm) Particles() *Particles { return d.current }

// GridSize returns G, the number of cells along one side of the grid.
func (d *Dogm) GridSize() int { return d.geom.GridSize }

// Resolution returns the grid resolution in metres per cell.
func (d *Dogm) Resolution() float32 { return d.geom.Resolution }

// EgoPose returns the world-frame ego pose and yaw used by the most
// recent Update call.
func (d *Dogm) EgoPose() (x, y, yaw float32) { return d.egoX, d.egoY, d.egoYaw }
