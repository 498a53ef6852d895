package hash

// Fixed-width lanes over array pointers hash without bounds checks and
// unroll cleanly. The lane width is matched to the host vector unit at
// startup (see dispatch_amd64.go); the bodies stay portable Go.

func hashLane8(out, n, s *[8]uint32, max uint32) {
	for j := 0; j < 8; j++ {
		out[j] = Hash(n[j], s[j], max)
	}
}

func hashLane16(out, n, s *[16]uint32, max uint32) {
	for j := 0; j < 16; j++ {
		out[j] = Hash(n[j], s[j], max)
	}
}

func hash8Vectorized(out []uint32, n []uint32, s []uint32, max uint32) {
	i := 0
	for ; i+8 <= len(out); i += 8 {
		hashLane8((*[8]uint32)(out[i:]), (*[8]uint32)(n[i:]), (*[8]uint32)(s[i:]), max)
	}
	for ; i < len(out); i++ {
		out[i] = Hash(n[i], s[i], max)
	}
}

func hash16Vectorized(out []uint32, n []uint32, s []uint32, max uint32) {
	i := 0
	for ; i+16 <= len(out); i += 16 {
		hashLane16((*[16]uint32)(out[i:]), (*[16]uint32)(n[i:]), (*[16]uint32)(s[i:]), max)
	}
	for ; i < len(out); i++ {
		out[i] = Hash(n[i], s[i], max)
	}
}

func hashLane8Distinct(out, n, s, max *[8]uint32) {
	for j := 0; j < 8; j++ {
		out[j] = Hash(n[j], s[j], max[j])
	}
}

func hashLane16Distinct(out, n, s, max *[16]uint32) {
	for j := 0; j < 16; j++ {
		out[j] = Hash(n[j], s[j], max[j])
	}
}

func hash8VectorizedDistinct(out []uint32, n []uint32, s []uint32, max []uint32) {
	i := 0
	for ; i+8 <= len(out); i += 8 {
		hashLane8Distinct((*[8]uint32)(out[i:]), (*[8]uint32)(n[i:]), (*[8]uint32)(s[i:]), (*[8]uint32)(max[i:]))
	}
	for ; i < len(out); i++ {
		out[i] = Hash(n[i], s[i], max[i])
	}
}

func hash16VectorizedDistinct(out []uint32, n []uint32, s []uint32, max []uint32) {
	i := 0
	for ; i+16 <= len(out); i += 16 {
		hashLane16Distinct((*[16]uint32)(out[i:]), (*[16]uint32)(n[i:]), (*[16]uint32)(s[i:]), (*[16]uint32)(max[i:]))
	}
	for ; i < len(out); i++ {
		out[i] = Hash(n[i], s[i], max[i])
	}
}
