package features

import "github.com/jbarham/primegen"

// PrimeBuckets rounds n up to the nearest prime. Prime bucket counts keep
// regularly strided ids (offsets, character codes, grid indexes) from
// aliasing onto a few buckets.
func PrimeBuckets(n int) uint32 {
	if n < 2 {
		n = 2
	}
	p := primegen.New()
	for {
		v := p.Next()
		if v >= uint64(n) {
			return uint32(v)
		}
	}
}
