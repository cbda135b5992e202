package dogm

import "gonum.org/v1/gonum/floats"

// segmentSum returns the sum of the half-open-inclusive range
// accum[start..=end] given accum is a prefix sum (accum[i] = sum of the
// first i+1 elements of the original array). It is the Go rendition of
// the source's "subtract" helper used to pull a cell's segment sum out of
// a prefix-summed weight array in O(1).
func segmentSum(accum []float64, start, end int) float64 {
	if start == 0 {
		return accum[end]
	}
	return accum[end] - accum[start-1]
}

// cumSum64 fills dst (same length as src) with the running prefix sum of
// src, using gonum/floats' CumSum so the accumulation — which every
// prefix-sum stage in the pipeline depends on (OccupancyUpdater,
// WeightNormaliser, BirthSampler, Resampler) — shares one well-tested
// implementation instead of four hand-rolled loops.
func cumSum64(dst, src []float64) []float64 {
	return floats.CumSum(dst, src)
}

// toFloat64 converts a float32 slice into a reusable float64 scratch
// buffer, growing dst if needed.
func toFloat64(dst []float64, src []float32) []float64 {
	if cap(dst) < len(src) {
		dst = make([]float64, len(src))
	}
	dst = dst[:len(src)]
	for i, v := range src {
		dst[i] = float64(v)
	}
	return dst
}
