package hash

// HashVectorized computes many hashes at once, all against the same max.
// The implementation is chosen at startup for the host CPU.
var HashVectorized func(out []uint32, n []uint32, s []uint32, max uint32) = hashNotVectorized

// HashVectorizedDistinct is HashVectorized with a per-element max.
var HashVectorizedDistinct func(out []uint32, n []uint32, s []uint32, max []uint32) = hashNotVectorizedDistinct

var hashVectorizedParallelism int = 1

// HashVectorizedParallelism reports the batch size worth hashing at once on this platform.
// Can't return 0.
func HashVectorizedParallelism() int {
	return hashVectorizedParallelism
}

func hashNotVectorized(out []uint32, n []uint32, s []uint32, max uint32) {
	for i := range out {
		out[i] = Hash(n[i], s[i], max)
	}
}
func hashNotVectorizedDistinct(out []uint32, n []uint32, s []uint32, max []uint32) {
	for i := range out {
		out[i] = Hash(n[i], s[i], max[i])
	}
}
