package viz

import (
	"github.com/san-kum/nucleon/internal/config"
	"github.com/san-kum/nucleon/internal/particles"
)

// Ranges of the interactive controls shared by the terminal and window views.
const (
	RuleStep          float32 = 0.05
	CountStep                 = 500
	MinCount                  = 100
	MouseStrengthStep         = 1.0
	MaxMouseStrength          = 25.0
	MouseRadiusFactor         = 1.25
	MinMouseRadius            = 10.0
	MaxMouseRadius            = 1000.0
)

// RuleCursor selects one cell of the active attraction matrix. A is the
// acting type, B the type it reacts to.
type RuleCursor struct{ A, B int }

// Move steps row by row through the n×n active cells, wrapping at both ends.
func (c RuleCursor) Move(delta, n int) RuleCursor {
	if n < 1 {
		return RuleCursor{}
	}
	c = c.Clamp(n)
	cells := n * n
	idx := ((c.A*n+c.B+delta)%cells + cells) % cells
	return RuleCursor{A: idx / n, B: idx % n}
}

// Clamp keeps the cursor inside the active block after the type count shrinks.
func (c RuleCursor) Clamp(n int) RuleCursor {
	if c.A >= n {
		c.A = n - 1
	}
	if c.B >= n {
		c.B = n - 1
	}
	return RuleCursor{A: max(c.A, 0), B: max(c.B, 0)}
}

// NudgeRule shifts the selected attraction by delta, clamped to [-1, 1], and
// returns the new value.
func NudgeRule(sys *particles.System, c RuleCursor, delta float32) float32 {
	c = c.Clamp(sys.NumTypes())
	v := min(max(sys.Attraction(c.A, c.B)+delta, -1), 1)
	sys.SetAttraction(c.A, c.B, v)
	return sys.Attraction(c.A, c.B)
}

// ResizeParticles respawns sys with count particles and the same types.
// Reinit zeroes the matrix, so the active rules are read back and rewritten
// afterwards.
func ResizeParticles(sys *particles.System, count int) error {
	count = min(max(count, MinCount), particles.MaxParticles)
	if count == sys.Count() {
		return nil
	}
	n := sys.NumTypes()
	keep := sys.Matrix()
	if err := sys.Reinit(count, n); err != nil {
		return err
	}
	m := sys.Matrix()
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			m[a][b] = keep[a][b]
		}
	}
	sys.SetMatrix(m)
	return nil
}

// StepMouseStrength adds delta to the cursor force, kept in [0, MaxMouseStrength].
func StepMouseStrength(m *config.MouseConfig, delta float64) {
	m.Strength = min(max(m.Strength+delta, 0), MaxMouseStrength)
}

// ScaleMouseRadius multiplies the cursor radius by f, kept in
// [MinMouseRadius, MaxMouseRadius].
func ScaleMouseRadius(m *config.MouseConfig, f float64) {
	m.Radius = min(max(m.Radius*f, MinMouseRadius), MaxMouseRadius)
}
