package nn

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Criterion scores predictions against targets and hands back the
// gradient of the loss with respect to the predictions, ready to feed
// into Network.Backward.
type Criterion interface {
	Loss(pred, target *mat.Dense) (float64, *mat.Dense)
}

// MSE is the mean squared error over every matrix entry.
type MSE struct{}

func NewMSE() *MSE { return &MSE{} }

func (MSE) Loss(pred, target *mat.Dense) (float64, *mat.Dense) {
	rows, cols := pred.Dims()
	n := float64(rows * cols)
	grad := mat.NewDense(rows, cols, nil)
	var sum float64
	for i := 0; i < rows; i++ {
		p := pred.RawRowView(i)
		t := target.RawRowView(i)
		g := grad.RawRowView(i)
		for j := range p {
			d := p[j] - t[j]
			sum += d * d
			g[j] = 2 * d / n
		}
	}
	return sum / n, grad
}

// CrossEntropy fuses softmax over each row with the negative log
// likelihood against one-hot (or probability) targets. Feeding it raw
// logits is both cheaper and better conditioned than a separate softmax
// layer.
type CrossEntropy struct{}

func NewCrossEntropy() *CrossEntropy { return &CrossEntropy{} }

func (CrossEntropy) Loss(pred, target *mat.Dense) (float64, *mat.Dense) {
	rows, cols := pred.Dims()
	grad := mat.NewDense(rows, cols, nil)
	var sum float64
	for i := 0; i < rows; i++ {
		p := pred.RawRowView(i)
		t := target.RawRowView(i)
		g := grad.RawRowView(i)

		max := p[0]
		for _, v := range p[1:] {
			if v > max {
				max = v
			}
		}
		var z float64
		for _, v := range p {
			z += math.Exp(v - max)
		}
		logZ := math.Log(z)
		for j := range p {
			logSoftmax := p[j] - max - logZ
			sum -= t[j] * logSoftmax
			g[j] = (math.Exp(logSoftmax) - t[j]) / float64(rows)
		}
	}
	return sum / float64(rows), grad
}
