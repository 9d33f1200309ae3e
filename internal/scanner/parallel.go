package scanner

import (
	"runtime"
	"sync"
)

// ParallelFor runs fn(i) over i in [0, n) using up to the given number of
// workers (GOMAXPROCS when workers <= 0). Work is distributed by striding
// to balance uneven workloads. fn must not panic.
func ParallelFor(n, workers int, fn func(i int)) {
	if n <= 0 {
		return
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}

	var wg sync.WaitGroup
	wg.Add(workers)

	for w := 0; w < workers; w++ {
		w := w
		go func() {
			defer wg.Done()
			for i := w; i < n; i += workers {
				fn(i)
			}
		}()
	}

	wg.Wait()
}
