// Package parallel contains parallel ForEach() and parallel LoopUntil() plus
// other concurrency primitives used by batch preprocessing and weight
// fingerprinting.
package parallel

import (
	"sync"
	"sync/atomic"
)

// ForEach runs body(i) for every i in [0, length) on at most limit
// goroutines and returns when all calls have finished. The iteration
// order is unspecified.
func ForEach(length, limit int, body func(i int)) {
	if length <= 0 {
		return
	}
	if limit <= 0 {
		limit = 1
	}
	if limit > length {
		limit = length
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	wg.Add(limit)

	for n := 0; n < limit; n++ {
		go func() {
			defer wg.Done()
			for {
				i := int(next.Add(1)) - 1
				if i >= length {
					return
				}
				body(i)
			}
		}()
	}

	wg.Wait()
}
