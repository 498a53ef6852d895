package metrics

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Accuracy counts rows whose predicted argmax matches the target argmax.
type Accuracy struct {
	correct int
	total   int
}

func NewAccuracy() *Accuracy { return &Accuracy{} }

func (a *Accuracy) Reset() {
	a.correct, a.total = 0, 0
}

func (a *Accuracy) Update(output interface{}) error {
	v, err := asValue(output)
	if err != nil {
		return err
	}
	rows, _ := v.Pred.Dims()
	for i := 0; i < rows; i++ {
		if rowArgmax(v.Pred, i) == rowArgmax(v.True, i) {
			a.correct++
		}
	}
	a.total += rows
	return nil
}

func (a *Accuracy) Compute() (float64, error) {
	if a.total == 0 {
		return 0, ErrNoUpdates
	}
	return float64(a.correct) / float64(a.total), nil
}

// Precision is the fraction of rows predicted as the positive class that
// really belong to it. Rows predicted as other classes do not count
// either way, so a model that never says Positive scores zero.
type Precision struct {
	Positive int

	tp, fp int
	total  int
}

func NewPrecision(positive int) *Precision { return &Precision{Positive: positive} }

func (p *Precision) Reset() {
	p.tp, p.fp, p.total = 0, 0, 0
}

func (p *Precision) Update(output interface{}) error {
	v, err := asValue(output)
	if err != nil {
		return err
	}
	rows, _ := v.Pred.Dims()
	for i := 0; i < rows; i++ {
		if rowArgmax(v.Pred, i) != p.Positive {
			continue
		}
		if rowArgmax(v.True, i) == p.Positive {
			p.tp++
		} else {
			p.fp++
		}
	}
	p.total += rows
	return nil
}

func (p *Precision) Compute() (float64, error) {
	if p.total == 0 {
		return 0, ErrNoUpdates
	}
	if p.tp+p.fp == 0 {
		return 0, nil
	}
	return float64(p.tp) / float64(p.tp+p.fp), nil
}

// Recall is the fraction of rows truly in the positive class that the
// model found.
type Recall struct {
	Positive int

	tp, fn int
	total  int
}

func NewRecall(positive int) *Recall { return &Recall{Positive: positive} }

func (r *Recall) Reset() {
	r.tp, r.fn, r.total = 0, 0, 0
}

func (r *Recall) Update(output interface{}) error {
	v, err := asValue(output)
	if err != nil {
		return err
	}
	rows, _ := v.Pred.Dims()
	for i := 0; i < rows; i++ {
		if rowArgmax(v.True, i) != r.Positive {
			continue
		}
		if rowArgmax(v.Pred, i) == r.Positive {
			r.tp++
		} else {
			r.fn++
		}
	}
	r.total += rows
	return nil
}

func (r *Recall) Compute() (float64, error) {
	if r.total == 0 {
		return 0, ErrNoUpdates
	}
	if r.tp+r.fn == 0 {
		return 0, nil
	}
	return float64(r.tp) / float64(r.tp+r.fn), nil
}

// ConfusionMatrix tallies true class against predicted class for k
// classes. Compute reports overall accuracy; the counts stay inspectable
// through Count and Matrix.
type ConfusionMatrix struct {
	classes int
	counts  []int
	total   int
}

func NewConfusionMatrix(classes int) *ConfusionMatrix {
	if classes < 1 {
		classes = 1
	}
	return &ConfusionMatrix{classes: classes, counts: make([]int, classes*classes)}
}

func (c *ConfusionMatrix) Reset() {
	for i := range c.counts {
		c.counts[i] = 0
	}
	c.total = 0
}

func (c *ConfusionMatrix) Update(output interface{}) error {
	v, err := asValue(output)
	if err != nil {
		return err
	}
	rows, _ := v.Pred.Dims()
	for i := 0; i < rows; i++ {
		t := rowArgmax(v.True, i)
		p := rowArgmax(v.Pred, i)
		if t >= c.classes || p >= c.classes {
			return fmt.Errorf("confusion matrix: class out of range, got true %d pred %d with %d classes", t, p, c.classes)
		}
		c.counts[t*c.classes+p]++
	}
	c.total += rows
	return nil
}

// Compute never errors so the matrix can be attached to sparse
// validation sets; with no samples the accuracy is zero.
func (c *ConfusionMatrix) Compute() (float64, error) {
	if c.total == 0 {
		return 0, nil
	}
	diag := 0
	for i := 0; i < c.classes; i++ {
		diag += c.counts[i*c.classes+i]
	}
	return float64(diag) / float64(c.total), nil
}

// Count returns how many samples of class t were predicted as class p.
func (c *ConfusionMatrix) Count(t, p int) int {
	if t < 0 || t >= c.classes || p < 0 || p >= c.classes {
		return 0
	}
	return c.counts[t*c.classes+p]
}

// Matrix copies the counts into a dense matrix, true classes as rows.
func (c *ConfusionMatrix) Matrix() *mat.Dense {
	data := make([]float64, len(c.counts))
	for i, n := range c.counts {
		data[i] = float64(n)
	}
	return mat.NewDense(c.classes, c.classes, data)
}
