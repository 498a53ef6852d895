package parallel

import (
	"math"
	"sync"
	"sync/atomic"
)

// LoopStopper is an interface to check if the loop should stop.
type LoopStopper interface {

	// Load reports true if the loop should stop.
	Load() bool
}

// Loop is the number of goroutines a LoopUntil search runs on.
type Loop int

// LoopUntil hands out candidate indexes 0, 1, 2, ... to 'l' goroutines
// until some yield returns true or the uint32 range is exhausted. A yield
// may also poll ender to bail out of long work once another goroutine
// has found a result.
func (l Loop) LoopUntil(yield func(i uint32, ender LoopStopper) bool) {
	var (
		next  atomic.Uint32
		ender atomic.Bool
		wg    sync.WaitGroup
	)

	for n := 0; n < int(l); n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for !ender.Load() {
				i := next.Add(1)
				if i == math.MaxUint32 {
					ender.Store(true)
					return
				}
				if yield(i-1, &ender) {
					ender.Store(true)
					return
				}
			}
		}()
	}

	wg.Wait()
}
