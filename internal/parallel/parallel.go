// Package parallel provides deterministic work partitioning for batched
// computations. Batches are split into contiguous chunks dispatched to
// worker goroutines; each worker writes only its own index range, so results
// land in original order regardless of worker count.
package parallel

import (
	"runtime"
	"sync"
)

// Workers resolves a configured shard count: non-positive means one shard
// per CPU.
func Workers(n int) int {
	if n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// For executes fn over contiguous chunks of [0, n) on the given number of
// workers. fn must only write to indices within its chunk.
func For(n, workers int, fn func(start, end int)) {
	workers = Workers(workers)
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		fn(0, n)
		return
	}

	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > n {
			end = n
		}
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}
