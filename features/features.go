// Package features turns symbolic inputs into fixed-width float vectors
// with the hashing trick. Tokens are hashed into a prime number of buckets
// with a salted modular hash; a second salt decides the sign of each
// contribution so that colliding tokens tend to cancel instead of piling up.
package features

import "github.com/neurlang/engine/hash"

// Hasher featurizes tokens into Dim() buckets. The zero Salt is fine for
// most vocabularies; FindSalt picks a collision-free one when the
// vocabulary is known up front.
type Hasher struct {
	buckets uint32
	Salt    uint32
	// Signed flips the sign of a contribution by a second hash. It keeps
	// the expected value of a bucket at zero under collisions.
	Signed bool
}

// NewHasher returns a signed hasher with at least buckets buckets, rounded
// up to the next prime.
func NewHasher(buckets int) *Hasher {
	return &Hasher{
		buckets: PrimeBuckets(buckets),
		Signed:  true,
	}
}

// Dim is the vector width rows produced by this hasher have.
func (h *Hasher) Dim() int {
	return int(h.buckets)
}

func (h *Hasher) sign(token string) float64 {
	if !h.Signed {
		return 1
	}
	if hash.String(token, h.Salt+1, 2) == 0 {
		return -1
	}
	return 1
}

// Add folds one weighted token into row. len(row) must be Dim().
func (h *Hasher) Add(row []float64, token string, weight float64) {
	row[hash.String(token, h.Salt, h.buckets)] += h.sign(token) * weight
}

// Row featurizes a token bag into a fresh vector, each token with weight 1.
func (h *Hasher) Row(tokens []string) []float64 {
	row := make([]float64, h.buckets)
	for _, token := range tokens {
		h.Add(row, token, 1)
	}
	return row
}

// RowIDs featurizes numeric token ids, hashing them in vectorized batches.
func (h *Hasher) RowIDs(ids []uint32) []float64 {
	row := make([]float64, h.buckets)
	n := len(ids)
	out := make([]uint32, n)
	salts := make([]uint32, n)
	for i := range salts {
		salts[i] = h.Salt
	}
	hash.HashVectorized(out, ids, salts, h.buckets)
	if !h.Signed {
		for _, b := range out {
			row[b]++
		}
		return row
	}
	signs := make([]uint32, n)
	for i := range salts {
		salts[i] = h.Salt + 1
	}
	hash.HashVectorized(signs, ids, salts, 2)
	for i, b := range out {
		if signs[i] == 0 {
			row[b]--
		} else {
			row[b]++
		}
	}
	return row
}
