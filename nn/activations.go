package nn

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// ReLU zeroes negative entries.
type ReLU struct {
	x *mat.Dense
}

func NewReLU() *ReLU {
	return &ReLU{}
}

func (l *ReLU) Forward(x *mat.Dense) *mat.Dense {
	l.x = mat.DenseCopyOf(x)
	y := new(mat.Dense)
	y.Apply(func(i, j int, v float64) float64 {
		if v > 0 {
			return v
		}
		return 0
	}, x)
	return y
}

func (l *ReLU) Backward(grad *mat.Dense) *mat.Dense {
	dx := new(mat.Dense)
	dx.Apply(func(i, j int, g float64) float64 {
		if l.x.At(i, j) > 0 {
			return g
		}
		return 0
	}, grad)
	return dx
}

func (l *ReLU) Params() []*Param { return nil }

// Sigmoid squashes entries into (0, 1).
type Sigmoid struct {
	y *mat.Dense
}

func NewSigmoid() *Sigmoid {
	return &Sigmoid{}
}

func (l *Sigmoid) Forward(x *mat.Dense) *mat.Dense {
	y := new(mat.Dense)
	y.Apply(func(i, j int, v float64) float64 {
		return 1 / (1 + math.Exp(-v))
	}, x)
	l.y = y
	return y
}

func (l *Sigmoid) Backward(grad *mat.Dense) *mat.Dense {
	dx := new(mat.Dense)
	dx.Apply(func(i, j int, g float64) float64 {
		y := l.y.At(i, j)
		return g * y * (1 - y)
	}, grad)
	return dx
}

func (l *Sigmoid) Params() []*Param { return nil }

// Tanh squashes entries into (-1, 1).
type Tanh struct {
	y *mat.Dense
}

func NewTanh() *Tanh {
	return &Tanh{}
}

func (l *Tanh) Forward(x *mat.Dense) *mat.Dense {
	y := new(mat.Dense)
	y.Apply(func(i, j int, v float64) float64 {
		return math.Tanh(v)
	}, x)
	l.y = y
	return y
}

func (l *Tanh) Backward(grad *mat.Dense) *mat.Dense {
	dx := new(mat.Dense)
	dx.Apply(func(i, j int, g float64) float64 {
		y := l.y.At(i, j)
		return g * (1 - y*y)
	}, grad)
	return dx
}

func (l *Tanh) Params() []*Param { return nil }
