//go:build amd64

package hash

import "github.com/klauspost/cpuid/v2"

func init() {
	switch {
	case cpuid.CPU.Supports(cpuid.AVX512F, cpuid.AVX512DQ):
		HashVectorized = hash16Vectorized
		HashVectorizedDistinct = hash16VectorizedDistinct
		hashVectorizedParallelism = 16
	case cpuid.CPU.Supports(cpuid.AVX2):
		HashVectorized = hash8Vectorized
		HashVectorizedDistinct = hash8VectorizedDistinct
		hashVectorizedParallelism = 8
	}
}
