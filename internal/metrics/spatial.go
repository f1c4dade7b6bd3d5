package metrics

import (
	"fmt"
	"math"

	"github.com/san-kum/nucleon/internal/dynamo"
	"github.com/san-kum/nucleon/internal/grid"
	"github.com/san-kum/nucleon/internal/particles"
)

const minPairChunk = 64

// TypeSeparation is the mean toroidal distance between every particle of
// type a and every particle of type b. It is 0 when either type is absent.
type TypeSeparation struct {
	name  string
	a, b  uint8
	pool  *dynamo.Pool
	value float64

	ia, ib  []int
	partial []float64
}

func NewTypeSeparation(a, b int) *TypeSeparation {
	return &TypeSeparation{
		name: fmt.Sprintf("separation_%d_%d", a, b),
		a:    uint8(a),
		b:    uint8(b),
		pool: dynamo.NewPool(0),
	}
}

func (s *TypeSeparation) Name() string { return s.name }

func (s *TypeSeparation) Observe(v particles.View, t float64) {
	s.ia, s.ib = s.ia[:0], s.ib[:0]
	for i, typ := range v.Type {
		if typ == s.a {
			s.ia = append(s.ia, i)
		}
		if typ == s.b {
			s.ib = append(s.ib, i)
		}
	}
	if len(s.ia) == 0 || len(s.ib) == 0 {
		s.value = 0
		return
	}

	if len(s.partial) != s.pool.Workers() {
		s.partial = make([]float64, s.pool.Workers())
	}
	for i := range s.partial {
		s.partial[i] = 0
	}

	s.pool.For(len(s.ia), minPairChunk, func(worker, start, end int) {
		var sum float64
		for _, i := range s.ia[start:end] {
			for _, j := range s.ib {
				dx := dynamo.WrapDelta(v.X[j]-v.X[i], v.Width)
				dy := dynamo.WrapDelta(v.Y[j]-v.Y[i], v.Height)
				sum += math.Sqrt(float64(dx*dx + dy*dy))
			}
		}
		s.partial[worker] = sum
	})

	var total float64
	for _, p := range s.partial {
		total += p
	}
	s.value = total / float64(len(s.ia)*len(s.ib))
}

func (s *TypeSeparation) Value() float64 { return s.value }

func (s *TypeSeparation) Reset() { s.value = 0 }

// LocalDensity is the mean number of other particles within radius of each
// particle. Neighbours are found with a private toroidal grid.
type LocalDensity struct {
	name   string
	radius float32
	pool   *dynamo.Pool
	grid   *grid.Grid
	gw, gh float32
	value  float64

	counts  []int
	scratch [][]int
}

func NewLocalDensity(radius float32) *LocalDensity {
	pool := dynamo.NewPool(0)
	return &LocalDensity{
		name:    "local_density",
		radius:  radius,
		pool:    pool,
		scratch: make([][]int, pool.Workers()),
	}
}

func (d *LocalDensity) Name() string { return d.name }

func (d *LocalDensity) Observe(v particles.View, t float64) {
	n := v.Len()
	if n == 0 {
		d.value = 0
		return
	}
	if d.grid == nil || d.gw != v.Width || d.gh != v.Height {
		d.grid = grid.NewToroidal(v.Width, v.Height, d.radius)
		d.gw, d.gh = v.Width, v.Height
	}
	d.grid.Rebuild(v.X, v.Y, n, d.pool)

	if cap(d.counts) < n {
		d.counts = make([]int, n)
	}
	d.counts = d.counts[:n]
	r2 := d.radius * d.radius

	d.pool.For(n, minPairChunk, func(worker, start, end int) {
		buf := d.scratch[worker]
		for i := start; i < end; i++ {
			c := 0
			buf = d.grid.QueryInto(v.X[i], v.Y[i], buf)
			for _, j := range buf {
				if j == i {
					continue
				}
				dx := dynamo.WrapDelta(v.X[j]-v.X[i], v.Width)
				dy := dynamo.WrapDelta(v.Y[j]-v.Y[i], v.Height)
				if dx*dx+dy*dy < r2 {
					c++
				}
			}
			d.counts[i] = c
		}
		d.scratch[worker] = buf
	})

	total := 0
	for _, c := range d.counts {
		total += c
	}
	d.value = float64(total) / float64(n)
}

func (d *LocalDensity) Value() float64 { return d.value }

func (d *LocalDensity) Reset() { d.value = 0 }
