// Package spawn provides initial-layout strategies for particle systems.
package spawn

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/aquilax/go-perlin"

	"github.com/san-kum/nucleon/internal/particles"
)

var ErrUnknownSpawner = errors.New("spawn: unknown spawner")

const (
	perlinAlpha   = 2.0
	perlinBeta    = 2.0
	perlinOctaves = 3

	// DefaultScale gives roughly one blob per 400 world units.
	DefaultScale    = 1.0 / 400
	DefaultContrast = 3.0

	maxRejections = 64
)

// Perlin places particles with a density that follows 2D Perlin noise, so
// the initial layout is patchy instead of uniform. Positions are drawn by
// rejection sampling against the noise field.
type Perlin struct {
	noise    *perlin.Perlin
	Scale    float64
	Contrast float64
}

func NewPerlin(seed int64) *Perlin {
	return &Perlin{
		noise:    perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, seed),
		Scale:    DefaultScale,
		Contrast: DefaultContrast,
	}
}

// Density returns the acceptance probability in [0, 1] at (x, y).
func (p *Perlin) Density(x, y float64) float64 {
	n := p.noise.Noise2D(x*p.Scale, y*p.Scale)
	d := (n + 1) / 2
	if d < 0 {
		d = 0
	} else if d > 1 {
		d = 1
	}
	return math.Pow(d, p.Contrast)
}

func (p *Perlin) Spawn(rng *rand.Rand, width, height float32) (float32, float32) {
	var x, y float32
	for i := 0; i < maxRejections; i++ {
		x, y = rng.Float32()*width, rng.Float32()*height
		if rng.Float64() < p.Density(float64(x), float64(y)) {
			return x, y
		}
	}
	// low-density field: keep the last uniform draw
	return x, y
}

var builders = map[string]func(seed int64) particles.Spawner{
	"uniform": func(int64) particles.Spawner { return particles.UniformSpawner{} },
	"perlin":  func(seed int64) particles.Spawner { return NewPerlin(seed) },
}

// ByName returns the named spawner. An empty name selects "uniform".
func ByName(name string, seed int64) (particles.Spawner, error) {
	if name == "" {
		name = "uniform"
	}
	b, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownSpawner)
	}
	return b(seed), nil
}

func Names() []string {
	names := make([]string, 0, len(builders))
	for n := range builders {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
