package parallel

import (
	"crypto/sha256"
	"encoding/binary"
	"hash"
	"math"
	"sync"
)

// Fingerprint condenses n float64 values, written concurrently and out of
// order, into a stable 32-byte digest. Values are folded into the hash in
// index order as soon as their 64-byte block is complete, so memory stays
// proportional to the unhashed tail rather than to n.
type Fingerprint struct {
	mut  sync.Mutex
	sha  hash.Hash
	n    int
	ate  int
	data [][64]byte
	mask []byte
}

// NewFingerprint prepares a fingerprint over n values.
func NewFingerprint(n int) *Fingerprint {
	return &Fingerprint{
		sha:  sha256.New(),
		n:    n,
		data: make([][64]byte, (n+7)/8),
		mask: make([]byte, (n+7)/8),
	}
}

func (f *Fingerprint) full(block int) byte {
	if valid := f.n - block*8; valid < 8 {
		return byte(1<<uint(valid)) - 1
	}
	return 0xff
}

func (f *Fingerprint) ready() bool {
	return f.ate < len(f.data) && f.mask[f.ate] == f.full(f.ate)
}

func (f *Fingerprint) eat() {
	f.sha.Write(f.data[f.ate][:])
	f.ate++
}

// MustPut records value number i. Writing an index twice, or after its
// block has been hashed, panics.
func (f *Fingerprint) MustPut(i int, value float64) {
	block := i / 8
	offset := (i % 8) * 8
	binary.LittleEndian.PutUint64(f.data[block][offset:], math.Float64bits(value))

	f.mut.Lock()
	defer f.mut.Unlock()

	if block < f.ate {
		panic("already consumed block")
	}
	bit := byte(1) << uint(i%8)
	if f.mask[block]&bit != 0 {
		panic("duplicate write")
	}
	f.mask[block] |= bit

	for f.ready() {
		f.eat()
	}
}

// Sum flushes the remaining blocks, unwritten values hashing as zero, and
// returns the digest. Further calls return the same digest.
func (f *Fingerprint) Sum() (ret [32]byte) {
	f.mut.Lock()
	for f.ate < len(f.data) {
		f.eat()
	}
	copy(ret[:], f.sha.Sum(nil))
	f.mut.Unlock()
	return
}
