package features

import (
	"runtime"
	"sync/atomic"

	"github.com/neurlang/engine/hash"
	"github.com/neurlang/engine/parallel"
)

// Collisions counts vocabulary pairs that share a bucket under salt.
func Collisions(vocab []string, salt, buckets uint32) int {
	seen := make(map[uint32]int, len(vocab))
	var pairs int
	for _, w := range vocab {
		b := hash.String(w, salt, buckets)
		pairs += seen[b]
		seen[b]++
	}
	return pairs
}

// FindSalt searches salts 0, 1, 2, ... in parallel for one that buckets
// the vocabulary without collisions. It returns the first such salt found
// and true, or 0 and false once attempts salts were tried in vain.
func FindSalt(vocab []string, buckets uint32, attempts uint32) (uint32, bool) {
	var salt atomic.Uint32
	var found atomic.Bool
	parallel.Loop(runtime.NumCPU()).LoopUntil(func(i uint32, ender parallel.LoopStopper) bool {
		if i >= attempts {
			return true
		}
		if Collisions(vocab, i, buckets) == 0 {
			salt.Store(i)
			found.Store(true)
			return true
		}
		return false
	})
	if !found.Load() {
		return 0, false
	}
	return salt.Load(), true
}
