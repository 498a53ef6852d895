package nn

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Dense is a fully connected layer computing y = x W^T + b. W is out rows
// by in columns, b is one row of out columns broadcast over the batch.
type Dense struct {
	W *Param
	B *Param

	x *mat.Dense
}

// NewDense builds a dense layer with Xavier-uniform weights and zero bias.
// Weight draws come from the package math/rand source, so seed it for
// reproducible models.
func NewDense(in, out int) *Dense {
	limit := math.Sqrt(6 / float64(in+out))
	data := make([]float64, in*out)
	for i := range data {
		data[i] = (rand.Float64()*2 - 1) * limit
	}
	return &Dense{
		W: newParam(out, in, data),
		B: newParam(1, out, nil),
	}
}

func (d *Dense) Forward(x *mat.Dense) *mat.Dense {
	d.x = mat.DenseCopyOf(x)
	rows, _ := x.Dims()
	out, _ := d.W.Value.Dims()
	y := mat.NewDense(rows, out, nil)
	y.Mul(x, d.W.Value.T())
	bias := d.B.Value.RawRowView(0)
	for i := 0; i < rows; i++ {
		row := y.RawRowView(i)
		for j := range row {
			row[j] += bias[j]
		}
	}
	return y
}

func (d *Dense) Backward(grad *mat.Dense) *mat.Dense {
	var dw mat.Dense
	dw.Mul(grad.T(), d.x)
	d.W.Grad.Add(d.W.Grad, &dw)

	rows, cols := grad.Dims()
	db := d.B.Grad.RawRowView(0)
	for i := 0; i < rows; i++ {
		row := grad.RawRowView(i)
		for j := 0; j < cols; j++ {
			db[j] += row[j]
		}
	}

	dx := new(mat.Dense)
	dx.Mul(grad, d.W.Value)
	return dx
}

func (d *Dense) Params() []*Param {
	return []*Param{d.W, d.B}
}
