package dynamo

import (
	"runtime"
	"sync"
)

// Pool is a fixed-size fork-join pool. It holds no goroutines between calls;
// every For spawns at most Workers() goroutines and joins them before returning.
type Pool struct {
	workers int
}

// NewPool returns a pool with the given worker count. Non-positive counts use GOMAXPROCS.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{workers: workers}
}

func (p *Pool) Workers() int { return p.workers }

// For executes fn over [0, n) split into contiguous, disjoint chunks.
// worker identifies the chunk's goroutine and is in [0, Workers()).
func (p *Pool) For(n, minChunk int, fn func(worker, start, end int)) {
	if n <= 0 {
		return
	}
	if minChunk < 1 {
		minChunk = 1
	}

	workers := p.workers
	if n <= minChunk || workers <= 1 {
		fn(0, 0, n)
		return
	}
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		if start >= n {
			break
		}
		end := start + chunkSize
		if end > n {
			end = n
		}

		wg.Add(1)
		go func(worker, s, e int) {
			defer wg.Done()
			fn(worker, s, e)
		}(w, start, end)
	}

	wg.Wait()
}

var defaultPool = NewPool(0)

// ParallelFor executes a function in parallel over a range [0, n)
func ParallelFor(n, minChunk int, fn func(start, end int)) {
	defaultPool.For(n, minChunk, func(_, start, end int) {
		fn(start, end)
	})
}
