package dogm

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// shardedFor runs fn(start, end) over disjoint, contiguous [start, end)
// shards covering [0, n), using up to runtime.GOMAXPROCS(0) goroutines.
// It is the Go rendition of the source's "#pragma omp parallel for"
// kernels: within a stage, shards write only to slots they own
// (particle i or cell c), so there is no cross-shard interference and no
// locking is required. fn must not read or write package-level Rng state;
// any randomness a stage needs must be drawn in a preceding serial pass.
//
// shardedFor blocks until every shard has completed or one has returned
// an error, in which case the first error is returned and remaining
// shards are allowed to finish (they do not observe cancellation — each
// shard is a pure, independent computation with no I/O to abort).
func shardedFor(n int, fn func(start, end int) error) error {
	if n == 0 {
		return nil
	}
	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	shardSize := (n + workers - 1) / workers

	var g errgroup.Group
	for start := 0; start < n; start += shardSize {
		end := start + shardSize
		if end > n {
			end = n
		}
		start, end := start, end
		g.Go(func() error {
			return fn(start, end)
		})
	}
	return g.Wait()
}
