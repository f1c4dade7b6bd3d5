package particles

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/san-kum/nucleon/internal/dynamo"
	"github.com/san-kum/nucleon/internal/grid"
)

const (
	MaxTypes     = 10
	MaxParticles = 100000

	CellSize     float32 = 80
	CutoffRadius float32 = 80
	Damping      float32 = 0.5

	// BaseRate converts dt in seconds to 60 Hz frame units.
	BaseRate float32 = 60

	// MinStep is the smallest dt drivers should pass to Update. It sits just
	// above the default dt at 1% speed, which counts as paused.
	MinStep float32 = 1.7e-4

	mouseScale     float32 = 100
	minMouseDistSq float32 = 1

	minForceChunk = 256
)

// Matrix holds attraction strengths. Row is the acting-on type, column the
// source type. Cells outside the active NumTypes square are unused.
type Matrix [MaxTypes][MaxTypes]float32

// MatrixFromRows builds a Matrix from a square slice-of-rows layout.
func MatrixFromRows(rows [][]float64) (Matrix, error) {
	var m Matrix
	if len(rows) > MaxTypes {
		return m, fmt.Errorf("%d rows: %w", len(rows), dynamo.ErrDimensionMismatch)
	}
	for a, row := range rows {
		if len(row) != len(rows) {
			return m, fmt.Errorf("row %d has %d columns, want %d: %w", a, len(row), len(rows), dynamo.ErrDimensionMismatch)
		}
		for b, v := range row {
			m[a][b] = float32(v)
		}
	}
	return m, nil
}

// Rows returns the top-left n×n block as nested slices.
func (m Matrix) Rows(n int) [][]float64 {
	if n > MaxTypes {
		n = MaxTypes
	}
	out := make([][]float64, n)
	for a := 0; a < n; a++ {
		out[a] = make([]float64, n)
		for b := 0; b < n; b++ {
			out[a][b] = float64(m[a][b])
		}
	}
	return out
}

// System is the particle engine. Particle state is kept as parallel slices
// indexed by particle id.
type System struct {
	x, y   []float32
	vx, vy []float32
	typ    []uint8

	count    int
	numTypes int
	width    float32
	height   float32

	matrix Matrix
	grid   *grid.Grid
	tick   uint64

	pool    *dynamo.Pool
	rng     *rand.Rand
	seed    int64
	spawner Spawner

	// neighbour buffers, one per pool worker
	scratch [][]int
}

// New builds and initializes a System.
func New(count, numTypes int, width, height float32, opts ...Option) (*System, error) {
	s := &System{}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.seed = time.Now().UnixNano()
		s.rng = rand.New(rand.NewSource(s.seed))
	}
	if s.pool == nil {
		s.pool = dynamo.NewPool(0)
	}
	if s.spawner == nil {
		s.spawner = UniformSpawner{}
	}
	s.scratch = make([][]int, s.pool.Workers())

	if err := s.Init(count, numTypes, width, height); err != nil {
		return nil, err
	}
	return s, nil
}

// Init discards all state and creates count particles of numTypes types in a
// width×height world. The attraction matrix is zeroed.
func (s *System) Init(count, numTypes int, width, height float32) error {
	if count < 0 || count > MaxParticles {
		return fmt.Errorf("count %d: %w", count, dynamo.ErrParticleCount)
	}
	if numTypes < 1 || numTypes > MaxTypes {
		return fmt.Errorf("types %d: %w", numTypes, dynamo.ErrTypeCount)
	}
	if !(width > 0 && height > 0) || math.IsInf(float64(width), 0) || math.IsInf(float64(height), 0) {
		return fmt.Errorf("%vx%v: %w", width, height, dynamo.ErrWorldSize)
	}

	s.count = count
	s.numTypes = numTypes
	s.width = width
	s.height = height
	s.tick = 0
	s.matrix = Matrix{}

	s.x = make([]float32, count)
	s.y = make([]float32, count)
	s.vx = make([]float32, count)
	s.vy = make([]float32, count)
	s.typ = make([]uint8, count)
	s.grid = grid.NewToroidal(width, height, CellSize)

	for i := 0; i < count; i++ {
		s.typ[i] = uint8(s.rng.Intn(numTypes))
	}
	s.scatter()
	return nil
}

// Reinit re-runs Init with the current world size.
func (s *System) Reinit(count, numTypes int) error {
	return s.Init(count, numTypes, s.width, s.height)
}

// SetAttraction sets how strongly type a is pulled toward type b.
// Indices outside [0, MaxTypes) panic.
func (s *System) SetAttraction(a, b int, v float32) {
	s.matrix[a][b] = v
}

func (s *System) Attraction(a, b int) float32 {
	return s.matrix[a][b]
}

// Matrix returns a copy of the attraction matrix.
func (s *System) Matrix() Matrix { return s.matrix }

func (s *System) SetMatrix(m Matrix) { s.matrix = m }

// RandomizeRules draws every active cell uniformly from [-1, 1], excluding 0.
func (s *System) RandomizeRules() {
	for a := 0; a < s.numTypes; a++ {
		for b := 0; b < s.numTypes; b++ {
			v := float32(0)
			for v == 0 {
				v = s.rng.Float32()*2 - 1
			}
			s.matrix[a][b] = v
		}
	}
}

// ResetParticles scatters particles to new random positions at rest.
// Types and count are unchanged.
func (s *System) ResetParticles() {
	s.scatter()
}

func (s *System) scatter() {
	for i := 0; i < s.count; i++ {
		x, y := s.spawner.Spawn(s.rng, s.width, s.height)
		s.x[i] = dynamo.Wrap(x, s.width)
		s.y[i] = dynamo.Wrap(y, s.height)
		s.vx[i] = 0
		s.vy[i] = 0
	}
}

// Update advances the simulation by dt seconds.
func (s *System) Update(dt float32) {
	s.grid.Rebuild(s.x, s.y, s.count, s.pool)
	s.pool.For(s.count, minForceChunk, s.accumulate)

	step := dt * BaseRate
	for i := 0; i < s.count; i++ {
		s.x[i] = dynamo.Wrap(s.x[i]+s.vx[i]*step, s.width)
		s.y[i] = dynamo.Wrap(s.y[i]+s.vy[i]*step, s.height)
	}
	s.tick++
}

// accumulate computes forces for particles [start, end) and applies damping.
// It reads positions and types of any particle but writes only velocities in
// its own range.
func (s *System) accumulate(worker, start, end int) {
	const cutoff2 = CutoffRadius * CutoffRadius
	buf := s.scratch[worker]
	w, h := s.width, s.height

	for i := start; i < end; i++ {
		xi, yi := s.x[i], s.y[i]
		row := &s.matrix[s.typ[i]]
		var fx, fy float32

		buf = s.grid.QueryInto(xi, yi, buf)
		for _, j := range buf {
			if j == i {
				continue
			}
			dx := dynamo.WrapDelta(s.x[j]-xi, w)
			dy := dynamo.WrapDelta(s.y[j]-yi, h)
			d2 := dx*dx + dy*dy
			if !(d2 > 0 && d2 < cutoff2) {
				continue
			}
			f := row[s.typ[j]] * dynamo.InvSqrt(d2)
			fx += f * dx
			fy += f * dy
		}

		s.vx[i] = (s.vx[i] + fx) * Damping
		s.vy[i] = (s.vy[i] + fy) * Damping
	}

	s.scratch[worker] = buf
}

// ApplyMouseForce pushes every particle within radius of (cx, cy). Positive
// strength pulls particles toward the cursor, negative pushes them away.
func (s *System) ApplyMouseForce(cx, cy, strength, radius float32) {
	r2 := radius * radius
	for i := 0; i < s.count; i++ {
		dx := dynamo.WrapDelta(cx-s.x[i], s.width)
		dy := dynamo.WrapDelta(cy-s.y[i], s.height)
		d2 := dx*dx + dy*dy
		if !(d2 > minMouseDistSq && d2 < r2) {
			continue
		}
		dist := float32(math.Sqrt(float64(d2)))
		f := strength * mouseScale / dist
		s.vx[i] += f * dx / dist
		s.vy[i] += f * dy / dist
	}
}

func (s *System) Count() int       { return s.count }
func (s *System) NumTypes() int    { return s.numTypes }
func (s *System) Width() float32   { return s.width }
func (s *System) Height() float32  { return s.height }
func (s *System) Tick() uint64     { return s.tick }
func (s *System) Seed() int64      { return s.seed }
func (s *System) Workers() int     { return s.pool.Workers() }
func (s *System) Grid() *grid.Grid { return s.grid }

// View aliases the engine's particle storage.
func (s *System) View() View {
	return View{
		X:        s.x,
		Y:        s.y,
		VX:       s.vx,
		VY:       s.vy,
		Type:     s.typ,
		NumTypes: s.numTypes,
		Width:    s.width,
		Height:   s.height,
	}
}

// Snapshot returns an owned copy of the current state.
func (s *System) Snapshot() Snapshot {
	return Snapshot{View: s.View().Clone(), Tick: s.tick, Matrix: s.matrix}
}

// TypeCounts returns how many particles have each type.
func (s *System) TypeCounts() []int {
	counts := make([]int, s.numTypes)
	for _, t := range s.typ {
		counts[t]++
	}
	return counts
}
