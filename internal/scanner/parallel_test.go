package scanner

import (
	"sync/atomic"
	"testing"
)

func TestParallelFor(t *testing.T) {
	testCases := []struct {
		name    string
		n       int
		workers int
	}{
		{"no work", 0, 4},
		{"single worker", 10, 1},
		{"more workers than work", 3, 16},
		{"default worker count", 100, 0},
		{"bounded workers", 100, 4},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			visits := make([]int32, testCase.n)
			ParallelFor(testCase.n, testCase.workers, func(i int) {
				atomic.AddInt32(&visits[i], 1)
			})

			for i, count := range visits {
				if count != 1 {
					t.Errorf("index %d visited %d times", i, count)
				}
			}
		})
	}
}
