package particles

import (
	"math/rand"

	"github.com/san-kum/nucleon/internal/dynamo"
)

// Spawner picks initial particle positions.
type Spawner interface {
	Spawn(rng *rand.Rand, width, height float32) (x, y float32)
}

// UniformSpawner places particles uniformly over the world.
type UniformSpawner struct{}

func (UniformSpawner) Spawn(rng *rand.Rand, width, height float32) (float32, float32) {
	return rng.Float32() * width, rng.Float32() * height
}

// Option configures a System at construction.
type Option func(*System)

// WithSeed makes the system's random source deterministic.
func WithSeed(seed int64) Option {
	return func(s *System) {
		s.seed = seed
		s.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRand supplies the random source directly.
func WithRand(rng *rand.Rand) Option {
	return func(s *System) {
		s.rng = rng
	}
}

// WithWorkers sets the force-phase worker count. Non-positive uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(s *System) {
		s.pool = dynamo.NewPool(n)
	}
}

// WithPool shares an existing pool.
func WithPool(p *dynamo.Pool) Option {
	return func(s *System) {
		s.pool = p
	}
}

func WithSpawner(sp Spawner) Option {
	return func(s *System) {
		s.spawner = sp
	}
}
