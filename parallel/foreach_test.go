package parallel

import (
	"sync/atomic"
	"testing"
)

func TestForEach(t *testing.T) {
	const n = 1000
	var visits [n]int32
	ForEach(n, 7, func(i int) {
		atomic.AddInt32(&visits[i], 1)
	})
	for i, v := range visits {
		if v != 1 {
			t.Errorf("index %d visited %d times", i, v)
		}
	}
	// degenerate arguments must not hang or panic
	ForEach(0, 4, func(i int) { t.Error("body called for empty range") })
	ForEach(3, 0, func(i int) {})
	ForEach(3, 100, func(i int) {})
}

func TestLoopUntil(t *testing.T) {
	var found atomic.Uint32
	Loop(4).LoopUntil(func(i uint32, ender LoopStopper) bool {
		if i >= 1234 {
			found.Store(i)
			return true
		}
		return false
	})
	if got := found.Load(); got < 1234 {
		t.Errorf("stopped at %d before any goroutine found a result", got)
	}
}

func TestCycleSet(t *testing.T) {
	s := NewCycleSet()
	a := [32]byte{1}
	b := [32]byte{2}

	s.Insert(a, 0)
	if !s.Exists(a, 0) {
		t.Error("inserted fingerprint missing")
	}
	if s.Exists(b, 0) {
		t.Error("absent fingerprint reported present")
	}
	if s.Exists(a, 1) {
		t.Error("fingerprint visible under wrong generation")
	}

	// generation change clears prior fingerprints
	s.Insert(b, 1)
	if s.Exists(a, 1) || s.Exists(a, 0) {
		t.Error("old generation fingerprint survived the change")
	}
	if !s.Exists(b, 1) {
		t.Error("fingerprint inserted at the generation change missing")
	}
}
