// Package metrics computes scalar observables over particle views.
package metrics

import (
	"github.com/san-kum/nucleon/internal/particles"
)

// Metric accumulates a scalar from successive observations.
type Metric interface {
	Name() string
	Observe(v particles.View, t float64)
	Value() float64
	Reset()
}

// Defaults returns the standard metric set for a system with numTypes types.
func Defaults(numTypes int) []Metric {
	ms := []Metric{
		NewKineticEnergy(),
		NewMaxSpeed(),
		NewStability(1.0),
		NewLocalDensity(particles.CutoffRadius),
	}
	if numTypes >= 2 {
		ms = append(ms, NewTypeSeparation(0, 1))
	}
	return ms
}

// Names lists metric names in order.
func Names(ms []Metric) []string {
	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = m.Name()
	}
	return names
}
