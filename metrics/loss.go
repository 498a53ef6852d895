package metrics

import (
	"math"

	"github.com/neurlang/engine/nn"
)

// Loss averages a criterion over an epoch, weighting each batch by its
// row count so uneven final batches do not skew the mean.
type Loss struct {
	criterion nn.Criterion

	sum float64
	n   int
}

func NewLoss(c nn.Criterion) *Loss { return &Loss{criterion: c} }

func (l *Loss) Reset() {
	l.sum, l.n = 0, 0
}

func (l *Loss) Update(output interface{}) error {
	v, err := asValue(output)
	if err != nil {
		return err
	}
	loss, _ := l.criterion.Loss(v.Pred, v.True)
	rows, _ := v.Pred.Dims()
	l.sum += loss * float64(rows)
	l.n += rows
	return nil
}

func (l *Loss) Compute() (float64, error) {
	if l.n == 0 {
		return 0, ErrNoUpdates
	}
	return l.sum / float64(l.n), nil
}

// MeanSquaredError averages squared prediction error over every entry
// seen during the epoch.
type MeanSquaredError struct {
	sum float64
	n   int
}

func NewMeanSquaredError() *MeanSquaredError { return &MeanSquaredError{} }

func (m *MeanSquaredError) Reset() {
	m.sum, m.n = 0, 0
}

func (m *MeanSquaredError) Update(output interface{}) error {
	v, err := asValue(output)
	if err != nil {
		return err
	}
	rows, cols := v.Pred.Dims()
	for i := 0; i < rows; i++ {
		p := v.Pred.RawRowView(i)
		t := v.True.RawRowView(i)
		for j := range p {
			d := p[j] - t[j]
			m.sum += d * d
		}
	}
	m.n += rows * cols
	return nil
}

func (m *MeanSquaredError) Compute() (float64, error) {
	if m.n == 0 {
		return 0, ErrNoUpdates
	}
	return m.sum / float64(m.n), nil
}

// MeanAbsoluteError averages absolute prediction error over every entry
// seen during the epoch.
type MeanAbsoluteError struct {
	sum float64
	n   int
}

func NewMeanAbsoluteError() *MeanAbsoluteError { return &MeanAbsoluteError{} }

func (m *MeanAbsoluteError) Reset() {
	m.sum, m.n = 0, 0
}

func (m *MeanAbsoluteError) Update(output interface{}) error {
	v, err := asValue(output)
	if err != nil {
		return err
	}
	rows, cols := v.Pred.Dims()
	for i := 0; i < rows; i++ {
		p := v.Pred.RawRowView(i)
		t := v.True.RawRowView(i)
		for j := range p {
			m.sum += math.Abs(p[j] - t[j])
		}
	}
	m.n += rows * cols
	return nil
}

func (m *MeanAbsoluteError) Compute() (float64, error) {
	if m.n == 0 {
		return 0, ErrNoUpdates
	}
	return m.sum / float64(m.n), nil
}
