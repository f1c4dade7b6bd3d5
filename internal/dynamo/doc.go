// Package dynamo provides core simulation primitives shared by the engine,
// the spatial grid and the metrics layer.
//
//   - [Pool]: fixed-size fork-join worker pool over index ranges
//   - [InvSqrt]: fast approximate reciprocal square root
//   - [Wrap], [WrapDelta]: toroidal coordinate helpers
//   - sentinel errors for lifecycle validation
//
// # Example
//
//	pool := dynamo.NewPool(0)
//	pool.For(len(xs), 256, func(worker, start, end int) {
//	    for i := start; i < end; i++ {
//	        out[i] = xs[i] * 2
//	    }
//	})
//
// # Thread Safety
//
// A Pool may be shared, but For calls must not be nested on the same pool.
// Each invocation of fn receives a disjoint [start, end) range; callers rely
// on that to write per-index results without locking.
package dynamo
