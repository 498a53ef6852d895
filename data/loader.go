package data

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Option configures a Loader.
type Option func(*Loader)

// WithShuffle reorders samples each epoch, deterministically from the
// loader seed and the epoch number.
func WithShuffle() Option {
	return func(l *Loader) { l.shuffle = true }
}

// WithSeed fixes the shuffle seed. The default seed is 1.
func WithSeed(seed int64) Option {
	return func(l *Loader) { l.seed = seed }
}

// WithDropLast drops a trailing batch smaller than the batch size.
func WithDropLast() Option {
	return func(l *Loader) { l.dropLast = true }
}

// WithBoost duplicates samples the filter marks as missed, giving hard
// samples twice the gradient steps per epoch.
func WithBoost(set *MissSet) Option {
	return func(l *Loader) { l.SetBoost(set) }
}

// Loader batches a dataset for the engine. It satisfies engine.Loader
// and engine.Sized; Reset starts a new epoch, Next produces *Batch
// values.
type Loader struct {
	ds       Dataset
	batch    int
	shuffle  bool
	dropLast bool
	seed     int64
	extras   []int
	order    []int
	pos      int
	epoch    int64
}

// NewLoader wraps a dataset. Batch sizes below 1 are raised to 1.
func NewLoader(ds Dataset, batch int, opts ...Option) *Loader {
	if batch < 1 {
		batch = 1
	}
	l := &Loader{ds: ds, batch: batch, seed: 1}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SetBoost replaces the boost filter, typically from a handler after a
// validation pass collected fresh misses. A nil set clears boosting. The
// change takes effect at the next Reset.
func (l *Loader) SetBoost(set *MissSet) {
	l.extras = l.extras[:0]
	if set == nil {
		return
	}
	for i := 0; i < l.ds.Len(); i++ {
		if set.Has(i) {
			l.extras = append(l.extras, i)
		}
	}
}

// Len reports the number of batches one epoch produces, boosted
// duplicates included.
func (l *Loader) Len() int {
	n := l.ds.Len() + len(l.extras)
	if l.dropLast {
		return n / l.batch
	}
	return (n + l.batch - 1) / l.batch
}

// Reset starts a new epoch.
func (l *Loader) Reset() {
	n := l.ds.Len()
	total := n + len(l.extras)
	if cap(l.order) < total {
		l.order = make([]int, 0, total)
	}
	l.order = l.order[:0]
	for i := 0; i < n; i++ {
		l.order = append(l.order, i)
	}
	l.order = append(l.order, l.extras...)
	if l.shuffle {
		rng := rand.New(rand.NewSource(l.seed + l.epoch))
		rng.Shuffle(len(l.order), func(i, j int) {
			l.order[i], l.order[j] = l.order[j], l.order[i]
		})
	}
	l.epoch++
	l.pos = 0
}

// Next returns the next batch of the epoch.
func (l *Loader) Next() (interface{}, bool) {
	remaining := len(l.order) - l.pos
	if remaining <= 0 || (l.dropLast && remaining < l.batch) {
		return nil, false
	}
	k := l.batch
	if k > remaining {
		k = remaining
	}
	picked := l.order[l.pos : l.pos+k]
	l.pos += k

	x0, y0 := l.ds.Sample(picked[0])
	x := mat.NewDense(k, len(x0), nil)
	y := mat.NewDense(k, len(y0), nil)
	indices := make([]int, k)
	for r, i := range picked {
		xi, yi := l.ds.Sample(i)
		x.SetRow(r, xi)
		y.SetRow(r, yi)
		indices[r] = i
	}
	return &Batch{X: x, Y: y, Indices: indices}, true
}
