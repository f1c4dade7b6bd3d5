package metrics

import (
	"math"

	"github.com/san-kum/nucleon/internal/particles"
)

// KineticEnergy is the mean per-particle kinetic energy ½|v|² of the latest
// observation, assuming unit mass.
type KineticEnergy struct {
	name  string
	value float64
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(v particles.View, t float64) {
	n := v.Len()
	if n == 0 {
		e.value = 0
		return
	}
	var sum float64
	for i := 0; i < n; i++ {
		vx, vy := float64(v.VX[i]), float64(v.VY[i])
		sum += 0.5 * (vx*vx + vy*vy)
	}
	e.value = sum / float64(n)
}

func (e *KineticEnergy) Value() float64 { return e.value }

func (e *KineticEnergy) Reset() { e.value = 0 }

// MaxSpeed tracks the fastest particle seen since Reset.
type MaxSpeed struct {
	name string
	max  float64
}

func NewMaxSpeed() *MaxSpeed {
	return &MaxSpeed{name: "max_speed"}
}

func (m *MaxSpeed) Name() string { return m.name }

func (m *MaxSpeed) Observe(v particles.View, t float64) {
	for i := 0; i < v.Len(); i++ {
		vx, vy := float64(v.VX[i]), float64(v.VY[i])
		m.max = math.Max(m.max, math.Sqrt(vx*vx+vy*vy))
	}
}

func (m *MaxSpeed) Value() float64 { return m.max }

func (m *MaxSpeed) Reset() { m.max = 0 }
