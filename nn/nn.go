// Package nn implements small dense networks: layers with explicit
// forward and backward passes over gonum matrices, parameter access for
// the optimizers, loss criteria, and compressed weight files. Rows are
// samples, columns are features, throughout.
package nn

import (
	"runtime"

	"github.com/neurlang/engine/parallel"
	"gonum.org/v1/gonum/mat"
)

// Param is one tensor of learnable weights with its gradient accumulator.
// Both matrices always have the same shape.
type Param struct {
	Value *mat.Dense
	Grad  *mat.Dense
}

func newParam(r, c int, data []float64) *Param {
	return &Param{
		Value: mat.NewDense(r, c, data),
		Grad:  mat.NewDense(r, c, nil),
	}
}

// Zero clears the accumulated gradient.
func (p *Param) Zero() {
	p.Grad.Zero()
}

// Layer is one differentiable stage of a network. Backward consumes the
// gradient of the loss with respect to the layer's output, accumulates
// into the layer's parameter gradients, and returns the gradient with
// respect to the layer's input.
type Layer interface {
	Forward(x *mat.Dense) *mat.Dense
	Backward(grad *mat.Dense) *mat.Dense
	Params() []*Param
}

// Network chains layers. It is itself a Layer.
type Network struct {
	layers []Layer
}

// NewNetwork builds a network from layers in forward order.
func NewNetwork(layers ...Layer) *Network {
	return &Network{layers: layers}
}

// Add appends a layer to the end of the network.
func (n *Network) Add(l Layer) {
	n.layers = append(n.layers, l)
}

// Forward runs x through all layers.
func (n *Network) Forward(x *mat.Dense) *mat.Dense {
	for _, l := range n.layers {
		x = l.Forward(x)
	}
	return x
}

// Backward runs the loss gradient back through all layers.
func (n *Network) Backward(grad *mat.Dense) *mat.Dense {
	for i := len(n.layers) - 1; i >= 0; i-- {
		grad = n.layers[i].Backward(grad)
	}
	return grad
}

// Params collects the parameters of all layers in forward order.
func (n *Network) Params() (params []*Param) {
	for _, l := range n.layers {
		params = append(params, l.Params()...)
	}
	return
}

// ZeroGrad clears all accumulated gradients, typically once per batch.
func (n *Network) ZeroGrad() {
	for _, p := range n.Params() {
		p.Zero()
	}
}

// Fingerprint digests all weights into 32 bytes. Two networks fingerprint
// equal exactly when their parameter values are bit-for-bit equal, which
// is what the training cycle detector compares.
func (n *Network) Fingerprint() [32]byte {
	params := n.Params()
	offsets := make([]int, len(params))
	var total int
	for i, p := range params {
		offsets[i] = total
		r, c := p.Value.Dims()
		total += r * c
	}
	f := parallel.NewFingerprint(total)
	parallel.ForEach(len(params), runtime.NumCPU(), func(i int) {
		raw := params[i].Value.RawMatrix()
		k := offsets[i]
		for r := 0; r < raw.Rows; r++ {
			for _, v := range raw.Data[r*raw.Stride : r*raw.Stride+raw.Cols] {
				f.MustPut(k, v)
				k++
			}
		}
	})
	return f.Sum()
}
