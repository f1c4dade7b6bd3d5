package particles

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/nucleon/internal/dynamo"
)

func meanCrossDistance(s *System, a, b uint8) float64 {
	var sum float64
	var n int
	for i := 0; i < s.count; i++ {
		if s.typ[i] != a {
			continue
		}
		for j := 0; j < s.count; j++ {
			if s.typ[j] != b {
				continue
			}
			dx := dynamo.WrapDelta(s.x[j]-s.x[i], s.width)
			dy := dynamo.WrapDelta(s.y[j]-s.y[i], s.height)
			sum += math.Sqrt(float64(dx*dx + dy*dy))
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func expectInWorld(s *System) {
	for i := 0; i < s.count; i++ {
		ExpectWithOffset(1, s.x[i]).To(BeNumerically(">=", 0))
		ExpectWithOffset(1, s.x[i]).To(BeNumerically("<", s.width))
		ExpectWithOffset(1, s.y[i]).To(BeNumerically(">=", 0))
		ExpectWithOffset(1, s.y[i]).To(BeNumerically("<", s.height))
	}
}

var _ = Describe("System", func() {
	Describe("New", func() {
		It("creates the requested population at rest", func() {
			s, err := New(5000, 3, 1600, 900, WithSeed(1))
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Count()).To(Equal(5000))
			Expect(s.NumTypes()).To(Equal(3))
			Expect(s.Seed()).To(Equal(int64(1)))

			v := s.View()
			for i := 0; i < v.Len(); i++ {
				Expect(v.VX[i]).To(BeZero())
				Expect(v.VY[i]).To(BeZero())
				Expect(v.Type[i]).To(BeNumerically("<", 3))
			}
			expectInWorld(s)
			Expect(s.Matrix()).To(Equal(Matrix{}))
		})

		DescribeTable("rejects invalid parameters",
			func(count, types int, w, h float32, want error) {
				_, err := New(count, types, w, h)
				Expect(err).To(MatchError(want))
			},
			Entry("negative count", -1, 3, float32(100), float32(100), dynamo.ErrParticleCount),
			Entry("too many particles", MaxParticles+1, 3, float32(100), float32(100), dynamo.ErrParticleCount),
			Entry("zero types", 10, 0, float32(100), float32(100), dynamo.ErrTypeCount),
			Entry("too many types", 10, MaxTypes+1, float32(100), float32(100), dynamo.ErrTypeCount),
			Entry("zero width", 10, 3, float32(0), float32(100), dynamo.ErrWorldSize),
			Entry("NaN height", 10, 3, float32(100), float32(math.NaN()), dynamo.ErrWorldSize),
		)

		It("accepts an empty population", func() {
			s, err := New(0, 1, 100, 100, WithSeed(2))
			Expect(err).NotTo(HaveOccurred())
			Expect(func() { s.Update(0.016) }).NotTo(Panic())
			Expect(s.Tick()).To(Equal(uint64(1)))
		})
	})

	Describe("Update", func() {
		It("keeps every particle inside the world", func() {
			s, err := New(3000, 5, 1600, 900, WithSeed(3), WithWorkers(4))
			Expect(err).NotTo(HaveOccurred())
			s.RandomizeRules()

			for tick := 0; tick < 50; tick++ {
				if tick%10 == 0 {
					s.ApplyMouseForce(800, 450, 500, 400)
				}
				s.Update(0.016)
				expectInWorld(s)
			}
		})

		It("keeps slices aligned and types stable within a generation", func() {
			s, err := New(1000, 4, 800, 600, WithSeed(4))
			Expect(err).NotTo(HaveOccurred())
			s.RandomizeRules()
			types := append([]uint8(nil), s.View().Type...)

			for tick := 0; tick < 20; tick++ {
				s.Update(0.016)
			}

			v := s.View()
			Expect(v.X).To(HaveLen(1000))
			Expect(v.Y).To(HaveLen(1000))
			Expect(v.VX).To(HaveLen(1000))
			Expect(v.VY).To(HaveLen(1000))
			Expect(v.Type).To(Equal(types))
		})

		It("is deterministic for a seed regardless of worker count", func() {
			a, err := New(2000, 4, 1600, 900, WithSeed(5), WithWorkers(1))
			Expect(err).NotTo(HaveOccurred())
			b, err := New(2000, 4, 1600, 900, WithSeed(5), WithWorkers(8))
			Expect(err).NotTo(HaveOccurred())
			a.RandomizeRules()
			b.RandomizeRules()

			for tick := 0; tick < 30; tick++ {
				a.Update(0.016)
				b.Update(0.016)
			}
			Expect(a.View().X).To(Equal(b.View().X))
			Expect(a.View().VY).To(Equal(b.View().VY))
		})

		It("reads the matrix in type order", func() {
			s, err := New(2, 2, 400, 400, WithSeed(6))
			Expect(err).NotTo(HaveOccurred())
			s.typ[0], s.typ[1] = 0, 1
			s.x[0], s.y[0] = 100, 100
			s.x[1], s.y[1] = 130, 100
			s.SetAttraction(0, 1, 0.5)
			s.SetAttraction(1, 0, -0.5)

			s.Update(0.016)

			// projections onto the line from each particle to the other
			toward0 := s.vx[0] * 1
			toward1 := s.vx[1] * -1
			Expect(toward0).To(BeNumerically(">", 0))
			Expect(toward1).To(BeNumerically("<", 0))
			Expect(s.vy[0]).To(BeZero())
		})

		It("interacts across the world seam", func() {
			s, err := New(2, 1, 400, 400, WithSeed(7))
			Expect(err).NotTo(HaveOccurred())
			s.x[0], s.y[0] = 5, 200
			s.x[1], s.y[1] = 395, 200
			s.SetAttraction(0, 0, 1)

			s.Update(0.001)

			// shortest path from 0 to 1 is through x = 0
			Expect(s.vx[0]).To(BeNumerically("<", 0))
			Expect(s.vx[1]).To(BeNumerically(">", 0))
		})

		It("ignores neighbours beyond the cutoff", func() {
			s, err := New(2, 1, 1000, 1000, WithSeed(8))
			Expect(err).NotTo(HaveOccurred())
			s.x[0], s.y[0] = 100, 100
			s.x[1], s.y[1] = 100+CutoffRadius+1, 100
			s.SetAttraction(0, 0, 1)

			s.Update(0.016)

			Expect(s.vx[0]).To(BeZero())
			Expect(s.vx[1]).To(BeZero())
		})

		It("ignores coincident particles", func() {
			s, err := New(2, 1, 400, 400, WithSeed(9))
			Expect(err).NotTo(HaveOccurred())
			s.x[0], s.y[0] = 50, 50
			s.x[1], s.y[1] = 50, 50
			s.SetAttraction(0, 0, 1)

			s.Update(0.016)

			Expect(s.vx[0]).To(BeZero())
			Expect(math.IsNaN(float64(s.x[0]))).To(BeFalse())
		})

		It("pushes mutually repelling types apart", func() {
			s, err := New(100, 2, 240, 240, WithSeed(10))
			Expect(err).NotTo(HaveOccurred())
			s.SetAttraction(0, 1, -1)
			s.SetAttraction(1, 0, -1)
			counts := s.TypeCounts()
			Expect(counts[0]).To(BeNumerically(">", 0))
			Expect(counts[1]).To(BeNumerically(">", 0))

			before := meanCrossDistance(s, 0, 1)
			for tick := 0; tick < 100; tick++ {
				s.Update(0.016)
			}
			after := meanCrossDistance(s, 0, 1)

			Expect(after).To(BeNumerically(">", before))
		})

		It("damps a lone particle by half each tick", func() {
			s, err := New(1, 1, 400, 400, WithSeed(11))
			Expect(err).NotTo(HaveOccurred())
			s.SetAttraction(0, 0, 1)
			s.x[0], s.y[0] = 200, 200
			s.ApplyMouseForce(260, 200, 1, 150)
			Expect(s.vx[0]).To(BeNumerically(">", 0))

			for tick := 0; tick < 10; tick++ {
				prev := s.vx[0]
				Expect(func() { s.Update(0.016) }).NotTo(Panic())
				Expect(s.vx[0]).To(Equal(prev * Damping))
			}
		})
	})

	Describe("ApplyMouseForce", func() {
		var s *System

		BeforeEach(func() {
			var err error
			s, err = New(1, 1, 400, 400, WithSeed(12))
			Expect(err).NotTo(HaveOccurred())
			s.x[0], s.y[0] = 100, 100
		})

		It("pulls toward the cursor for positive strength", func() {
			s.ApplyMouseForce(150, 100, 5, 150)
			Expect(s.vx[0]).To(BeNumerically("~", 5*100.0/50, 1e-3))
			Expect(s.vy[0]).To(BeZero())
		})

		It("pushes away for negative strength", func() {
			s.ApplyMouseForce(100, 150, -5, 150)
			Expect(s.vy[0]).To(BeNumerically("<", 0))
		})

		It("wraps the cursor offset", func() {
			s.x[0] = 390
			s.ApplyMouseForce(10, 100, 1, 150)
			Expect(s.vx[0]).To(BeNumerically(">", 0))
		})

		DescribeTable("leaves particles alone",
			func(cx, cy, radius float32) {
				s.ApplyMouseForce(cx, cy, 5, radius)
				Expect(s.vx[0]).To(BeZero())
				Expect(s.vy[0]).To(BeZero())
			},
			Entry("outside the radius", float32(300), float32(100), float32(150)),
			Entry("under the cursor", float32(100.5), float32(100), float32(150)),
			Entry("zero radius", float32(110), float32(100), float32(0)),
		)
	})

	Describe("rules", func() {
		It("stores asymmetric attractions", func() {
			s, err := New(10, 3, 100, 100, WithSeed(13))
			Expect(err).NotTo(HaveOccurred())
			s.SetAttraction(0, 1, 0.7)
			s.SetAttraction(1, 0, -0.3)
			Expect(s.Attraction(0, 1)).To(Equal(float32(0.7)))
			Expect(s.Attraction(1, 0)).To(Equal(float32(-0.3)))
		})

		It("panics on indices beyond MaxTypes", func() {
			s, err := New(10, 3, 100, 100, WithSeed(14))
			Expect(err).NotTo(HaveOccurred())
			Expect(func() { s.SetAttraction(MaxTypes, 0, 1) }).To(Panic())
		})

		It("fills the active submatrix on randomize", func() {
			s, err := New(10, 4, 100, 100, WithSeed(15))
			Expect(err).NotTo(HaveOccurred())

			s.RandomizeRules()
			first := s.Matrix()
			for a := 0; a < MaxTypes; a++ {
				for b := 0; b < MaxTypes; b++ {
					if a < 4 && b < 4 {
						Expect(first[a][b]).NotTo(BeZero())
						Expect(first[a][b]).To(BeNumerically(">=", -1))
						Expect(first[a][b]).To(BeNumerically("<=", 1))
					} else {
						Expect(first[a][b]).To(BeZero())
					}
				}
			}

			s.RandomizeRules()
			Expect(s.Matrix()).NotTo(Equal(first))
		})

		It("round-trips through rows", func() {
			rows := [][]float64{{-0.32, -0.17, 0.34}, {0.15, -0.1, -0.34}, {-0.2, 0.1, 0.15}}
			m, err := MatrixFromRows(rows)
			Expect(err).NotTo(HaveOccurred())
			Expect(m[1][2]).To(Equal(float32(-0.34)))
			Expect(m.Rows(3)[2][0]).To(BeNumerically("~", -0.2, 1e-6))
		})

		It("rejects ragged rows", func() {
			_, err := MatrixFromRows([][]float64{{1, 2}, {3}})
			Expect(err).To(MatchError(dynamo.ErrDimensionMismatch))
		})
	})

	Describe("lifecycle", func() {
		It("reinitializes to the requested shape", func() {
			s, err := New(5000, 3, 1600, 900, WithSeed(16))
			Expect(err).NotTo(HaveOccurred())
			s.RandomizeRules()
			s.Update(0.016)

			Expect(s.Reinit(2000, 4)).To(Succeed())

			Expect(s.Count()).To(Equal(2000))
			Expect(s.NumTypes()).To(Equal(4))
			Expect(s.Tick()).To(BeZero())
			Expect(s.Matrix()).To(Equal(Matrix{}))
			v := s.View()
			Expect(v.X).To(HaveLen(2000))
			for _, t := range v.Type {
				Expect(t).To(BeNumerically("<", 4))
			}
			total := 0
			for _, c := range s.TypeCounts() {
				total += c
			}
			Expect(total).To(Equal(2000))
			Expect(s.Width()).To(Equal(float32(1600)))
		})

		It("keeps state when reinit is rejected", func() {
			s, err := New(100, 3, 400, 400, WithSeed(17))
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Reinit(10, 0)).To(MatchError(dynamo.ErrTypeCount))
			Expect(s.Count()).To(Equal(100))
		})

		It("resets positions and velocities but not types", func() {
			s, err := New(500, 3, 400, 400, WithSeed(18))
			Expect(err).NotTo(HaveOccurred())
			s.RandomizeRules()
			for tick := 0; tick < 5; tick++ {
				s.Update(0.016)
			}
			types := append([]uint8(nil), s.typ...)
			xs := append([]float32(nil), s.x...)

			s.ResetParticles()

			Expect(s.typ).To(Equal(types))
			Expect(s.x).NotTo(Equal(xs))
			for i := range s.vx {
				Expect(s.vx[i]).To(BeZero())
				Expect(s.vy[i]).To(BeZero())
			}
			expectInWorld(s)
		})

		It("uses the configured spawner", func() {
			s, err := New(50, 2, 400, 400, WithRand(rand.New(rand.NewSource(19))), WithSpawner(cornerSpawner{}))
			Expect(err).NotTo(HaveOccurred())
			for i := 0; i < s.Count(); i++ {
				Expect(s.x[i]).To(BeNumerically("<", 10))
				Expect(s.y[i]).To(BeNumerically("<", 10))
			}
		})

		It("snapshots independently of the engine", func() {
			s, err := New(20, 2, 400, 400, WithSeed(20))
			Expect(err).NotTo(HaveOccurred())
			snap := s.Snapshot()
			x0 := snap.X[0]
			s.ApplyMouseForce(s.x[0]+10, s.y[0], 5, 150)
			s.Update(0.016)
			Expect(snap.X[0]).To(Equal(x0))
			Expect(snap.Tick).To(BeZero())
		})
	})
})

type cornerSpawner struct{}

func (cornerSpawner) Spawn(rng *rand.Rand, width, height float32) (float32, float32) {
	return rng.Float32() * 10, rng.Float32() * 10
}
