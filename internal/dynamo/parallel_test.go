package dynamo

import (
	"sync/atomic"
	"testing"
)

func TestPoolFor_VisitsEachIndexOnce(t *testing.T) {
	tests := []struct {
		name     string
		workers  int
		n        int
		minChunk int
	}{
		{"serial", 1, 100, 1},
		{"small n", 8, 3, 16},
		{"even split", 4, 1000, 10},
		{"uneven split", 3, 1001, 7},
		{"more workers than items", 16, 5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := NewPool(tt.workers)
			visits := make([]int32, tt.n)

			pool.For(tt.n, tt.minChunk, func(worker, start, end int) {
				if worker < 0 || worker >= pool.Workers() {
					t.Errorf("worker %d out of range", worker)
				}
				for i := start; i < end; i++ {
					atomic.AddInt32(&visits[i], 1)
				}
			})

			for i, v := range visits {
				if v != 1 {
					t.Fatalf("index %d visited %d times", i, v)
				}
			}
		})
	}
}

func TestPoolFor_WorkerIDsUnique(t *testing.T) {
	pool := NewPool(4)
	var seen [4]int32

	pool.For(4000, 1, func(worker, start, end int) {
		atomic.AddInt32(&seen[worker], 1)
	})

	for w, c := range seen {
		if c > 1 {
			t.Errorf("worker %d ran %d chunks", w, c)
		}
	}
}

func TestPoolFor_Empty(t *testing.T) {
	called := false
	NewPool(4).For(0, 1, func(worker, start, end int) { called = true })
	if called {
		t.Error("fn called for empty range")
	}
}

func TestNewPool_Default(t *testing.T) {
	if NewPool(0).Workers() < 1 {
		t.Error("default pool has no workers")
	}
}

func TestParallelFor(t *testing.T) {
	var sum int64
	ParallelFor(500, 10, func(start, end int) {
		local := int64(0)
		for i := start; i < end; i++ {
			local += int64(i)
		}
		atomic.AddInt64(&sum, local)
	})

	if sum != 499*500/2 {
		t.Errorf("sum = %d, want %d", sum, 499*500/2)
	}
}
