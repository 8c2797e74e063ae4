// Package parallel splits index ranges across worker goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Parallelize calls fn on disjoint [start, end) chunks covering [0, n),
// one chunk per worker, and waits for all of them.
func Parallelize(n int, fn func(start, end int)) {
	ParallelizeWorkers(n, runtime.GOMAXPROCS(0), fn)
}

// ParallelizeWithThreshold runs fn sequentially when n is below threshold and
// in parallel otherwise. Small inputs are not worth the goroutine overhead.
func ParallelizeWithThreshold(n, threshold int, fn func(start, end int)) {
	if n < threshold {
		if n > 0 {
			fn(0, n)
		}
		return
	}
	Parallelize(n, fn)
}

// ParallelizeWorkers is Parallelize with an explicit worker count.
func ParallelizeWorkers(n, workers int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	if workers == 1 {
		fn(0, n)
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(start, end)
	}
	wg.Wait()
}
