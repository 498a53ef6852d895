// Package optim implements the parameter update rules. An Optimizer
// consumes the gradients a backward pass accumulated and adjusts the
// parameter values in place; the process function calls Step once per
// batch, after Network.Backward.
package optim

import "github.com/neurlang/engine/nn"

// Optimizer applies one update step to params from their gradients.
type Optimizer interface {
	Step(params []*nn.Param) error
}

// SGD is stochastic gradient descent with optional momentum and weight
// decay.
type SGD struct {
	LR          float64 // learning rate
	Momentum    float64 // velocity retention, 0 disables the velocity buffers
	WeightDecay float64 // L2 penalty folded into the gradient

	velocity map[*nn.Param][]float64
}

// NewSGD returns plain SGD at the given learning rate.
func NewSGD(lr float64) *SGD {
	return &SGD{LR: lr}
}

func (s *SGD) Step(params []*nn.Param) error {
	for _, p := range params {
		value := p.Value.RawMatrix()
		grad := p.Grad.RawMatrix()

		var vel []float64
		if s.Momentum != 0 {
			if s.velocity == nil {
				s.velocity = make(map[*nn.Param][]float64)
			}
			vel = s.velocity[p]
			if vel == nil {
				vel = make([]float64, value.Rows*value.Cols)
				s.velocity[p] = vel
			}
		}

		idx := 0
		for r := 0; r < value.Rows; r++ {
			vrow := value.Data[r*value.Stride : r*value.Stride+value.Cols]
			grow := grad.Data[r*grad.Stride : r*grad.Stride+grad.Cols]
			for c := range vrow {
				g := grow[c] + s.WeightDecay*vrow[c]
				if vel != nil {
					vel[idx] = s.Momentum*vel[idx] + g
					g = vel[idx]
				}
				vrow[c] -= s.LR * g
				idx++
			}
		}
	}
	return nil
}
