package optim

import (
	"math"

	"github.com/neurlang/engine/nn"
)

// Adam keeps per-weight first and second moment estimates and scales each
// update by them, with bias correction for the early steps.
type Adam struct {
	LR          float64
	Beta1       float64
	Beta2       float64
	Eps         float64
	WeightDecay float64

	step int
	m    map[*nn.Param][]float64
	v    map[*nn.Param][]float64
}

// NewAdam returns Adam with the usual 0.9/0.999 betas and 1e-8 epsilon.
func NewAdam(lr float64) *Adam {
	return &Adam{
		LR:    lr,
		Beta1: 0.9,
		Beta2: 0.999,
		Eps:   1e-8,
		m:     make(map[*nn.Param][]float64),
		v:     make(map[*nn.Param][]float64),
	}
}

func (a *Adam) Step(params []*nn.Param) error {
	if a.m == nil {
		a.m = make(map[*nn.Param][]float64)
	}
	if a.v == nil {
		a.v = make(map[*nn.Param][]float64)
	}
	a.step++
	bc1 := 1 - math.Pow(a.Beta1, float64(a.step))
	bc2 := 1 - math.Pow(a.Beta2, float64(a.step))

	for _, p := range params {
		value := p.Value.RawMatrix()
		grad := p.Grad.RawMatrix()
		n := value.Rows * value.Cols

		m := a.m[p]
		if m == nil {
			m = make([]float64, n)
			a.m[p] = m
		}
		v := a.v[p]
		if v == nil {
			v = make([]float64, n)
			a.v[p] = v
		}

		idx := 0
		for r := 0; r < value.Rows; r++ {
			vrow := value.Data[r*value.Stride : r*value.Stride+value.Cols]
			grow := grad.Data[r*grad.Stride : r*grad.Stride+grad.Cols]
			for c := range vrow {
				g := grow[c] + a.WeightDecay*vrow[c]
				m[idx] = a.Beta1*m[idx] + (1-a.Beta1)*g
				v[idx] = a.Beta2*v[idx] + (1-a.Beta2)*g*g
				vrow[c] -= a.LR * (m[idx] / bc1) / (math.Sqrt(v[idx]/bc2) + a.Eps)
				idx++
			}
		}
	}
	return nil
}
