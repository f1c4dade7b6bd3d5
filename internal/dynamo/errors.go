package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation lifecycle operations.
var (
	// ErrParticleCount indicates a particle count outside the supported range.
	ErrParticleCount = errors.New("dynamo: particle count out of range")

	// ErrTypeCount indicates a type count outside the supported range.
	ErrTypeCount = errors.New("dynamo: type count out of range")

	// ErrWorldSize indicates a non-positive world dimension.
	ErrWorldSize = errors.New("dynamo: world size must be positive")

	// ErrTimestep indicates a non-positive or non-finite timestep.
	ErrTimestep = errors.New("dynamo: timestep must be positive")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrDimensionMismatch indicates a rules matrix that does not match the type count.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between rules and types")
)

// SimulationError wraps an error with the tick it happened on.
type SimulationError struct {
	Tick    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("tick %d (t=%.4f): %v", e.Tick, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
