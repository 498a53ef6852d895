package data

import "github.com/neurlang/quaternary"

// MissSet is an immutable membership filter over sample indexes, built
// from the indexes a model got wrong. It answers Has in constant time
// from a flat filter instead of keeping the index set around.
type MissSet struct {
	filter quaternary.Filter
	n      int
}

// NewMissSet builds the filter over a universe of n indexes. Indexes
// listed in missed answer true, all others false.
func NewMissSet(missed []int, n int) *MissSet {
	set := make(map[uint32]bool, n)
	for i := 0; i < n; i++ {
		set[uint32(i)] = false
	}
	for _, i := range missed {
		if i >= 0 && i < n {
			set[uint32(i)] = true
		}
	}
	return &MissSet{filter: quaternary.Make(set), n: n}
}

// Has reports whether index i was recorded as missed.
func (m *MissSet) Has(i int) bool {
	if m == nil || i < 0 || i >= m.n {
		return false
	}
	return m.filter.Get(uint32(i))
}

// Size reports the filter's byte size.
func (m *MissSet) Size() int {
	return len(m.filter)
}
