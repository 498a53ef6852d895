// Package hash implements the fast salted modular hash behind the feature
// hashers. Hash maps a value and a salt into [0, max); changing the salt
// gives an independent bucket assignment, which is what the hashing trick
// and the miss filters rely on.
package hash

func Hash(n uint32, s uint32, max uint32) uint32 {
	// mixing stage, fold the salt in by subtraction
	var m = n - s

	// hashing stage, xorshift with prime coefficients
	m ^= m << 2
	m ^= m << 3
	m ^= m >> 5
	m ^= m >> 7
	m ^= m << 11
	m ^= m << 13
	m ^= m >> 17
	m ^= m << 19

	// mixing stage 2, fold the salt in by addition
	m += s

	// range stage, multiply-shift in place of the slower modulo
	// https://lemire.me/blog/2016/06/27/a-fast-alternative-to-the-modulo-reduction/
	return uint32((uint64(m) * uint64(max)) >> 32)
}

// String hashes a string into [0, max) under salt s. The bytes are folded
// FNV-1a style into a word which then goes through Hash, so all salts see
// the same fold but land in independent buckets.
func String(str string, s uint32, max uint32) uint32 {
	var n uint32 = 2166136261
	for i := 0; i < len(str); i++ {
		n ^= uint32(str[i])
		n *= 16777619
	}
	return Hash(n, s, max)
}
