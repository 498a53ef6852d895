package parallel

import "sync"

// CycleSet is a thread-safe set of fingerprints scoped to a generation.
// When the generation changes, all recorded fingerprints are cleared, so
// digests from different generations never compare equal. Early stopping
// uses it to notice a model revisiting weights it already held since the
// last improvement.
type CycleSet struct {
	mu         sync.RWMutex
	set        map[[32]byte]struct{}
	generation byte
}

// NewCycleSet initializes and returns a new CycleSet. Initial generation is 0.
func NewCycleSet() *CycleSet {
	return &CycleSet{
		set: make(map[[32]byte]struct{}),
	}
}

// Insert records a fingerprint under the given generation. A generation
// change empties the set first.
func (c *CycleSet) Insert(sum [32]byte, generation byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != generation {
		c.set = make(map[[32]byte]struct{})
		c.generation = generation
	}
	c.set[sum] = struct{}{}
}

// Exists reports whether the fingerprint was recorded under the given
// generation. A generation mismatch reports false without touching the set.
func (c *CycleSet) Exists(sum [32]byte, generation byte) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.generation != generation {
		return false
	}
	_, ok := c.set[sum]
	return ok
}
