package metrics

import (
	"github.com/san-kum/nucleon/internal/particles"
)

// Stability is the fraction of particles moving slower than threshold in
// the latest observation. 1 means the system has settled.
type Stability struct {
	name      string
	threshold float64
	settled   int
	total     int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(v particles.View, t float64) {
	th2 := s.threshold * s.threshold
	s.settled, s.total = 0, v.Len()
	for i := 0; i < v.Len(); i++ {
		vx, vy := float64(v.VX[i]), float64(v.VY[i])
		if vx*vx+vy*vy < th2 {
			s.settled++
		}
	}
}

func (s *Stability) Value() float64 {
	if s.total == 0 {
		return 1.0
	}
	return float64(s.settled) / float64(s.total)
}

func (s *Stability) Reset() {
	s.settled = 0
	s.total = 0
}
