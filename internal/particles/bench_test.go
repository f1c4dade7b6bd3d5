package particles

import (
	"fmt"
	"testing"
)

func BenchmarkUpdate(b *testing.B) {
	sizes := []int{1000, 5000, 20000}
	for _, n := range sizes {
		s, err := New(n, 6, 1600, 900, WithSeed(1))
		if err != nil {
			b.Fatal(err)
		}
		s.RandomizeRules()

		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				s.Update(0.016)
			}
		})
	}
}

func BenchmarkApplyMouseForce(b *testing.B) {
	s, err := New(5000, 3, 1600, 900, WithSeed(2))
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.ApplyMouseForce(800, 450, 5, 150)
	}
}
