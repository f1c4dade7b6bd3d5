// Package particles implements the particle-life engine: typed point particles
// in a toroidal world that attract or repel each other according to an
// asymmetric per-type-pair strength matrix.
//
// A tick is synchronous. Update rebuilds the spatial grid, accumulates
// short-range forces in parallel, damps velocities, then integrates and wraps
// positions serially. Mutating calls (SetAttraction, RandomizeRules,
// ResetParticles, Reinit, ApplyMouseForce) belong between ticks.
//
// # Example
//
//	sys, err := particles.New(5000, 3, 1600, 900, particles.WithSeed(42))
//	if err != nil {
//	    return err
//	}
//	sys.RandomizeRules()
//	for i := 0; i < 600; i++ {
//	    sys.Update(0.016)
//	}
//	view := sys.View()
//
// # Thread Safety
//
// A System is not safe for concurrent use. Views alias engine storage and are
// valid until the next mutating call; use View.Clone to keep one longer.
package particles
