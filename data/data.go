// Package data feeds the training loop. A Dataset is an indexed
// collection of (input, target) rows; a Loader batches one into gonum
// matrices, optionally shuffled per epoch, with hard-sample boosting
// through a MissSet filter.
package data

import (
	"math"
	"runtime"

	"github.com/neurlang/engine/parallel"
	"gonum.org/v1/gonum/mat"
)

// Dataset is an indexed collection of samples. Sample returns the input
// row and the target row for index i; all rows must have consistent
// widths.
type Dataset interface {
	Len() int
	Sample(i int) (x, y []float64)
}

// Slices is an in-memory dataset over two row slices.
type Slices struct {
	X [][]float64
	Y [][]float64
}

func (s Slices) Len() int {
	return len(s.X)
}

func (s Slices) Sample(i int) ([]float64, []float64) {
	return s.X[i], s.Y[i]
}

// Batch is one loader step: a matrix of input rows, a matrix of target
// rows, and the dataset indexes they came from.
type Batch struct {
	X       *mat.Dense
	Y       *mat.Dense
	Indices []int
}

// OneHot expands class labels into one-hot target rows.
func OneHot(labels []int, classes int) [][]float64 {
	rows := make([][]float64, len(labels))
	for i, label := range labels {
		row := make([]float64, classes)
		if label >= 0 && label < classes {
			row[label] = 1
		}
		rows[i] = row
	}
	return rows
}

// MeanStd computes the per-column mean and standard deviation of rows.
// Columns are processed in parallel. A constant column reports std 1 so
// that normalizing by it is a no-op instead of a division by zero.
func MeanStd(rows [][]float64) (mean, std []float64) {
	if len(rows) == 0 {
		return nil, nil
	}
	cols := len(rows[0])
	mean = make([]float64, cols)
	std = make([]float64, cols)
	parallel.ForEach(cols, runtime.NumCPU(), func(j int) {
		var sum float64
		for _, row := range rows {
			sum += row[j]
		}
		m := sum / float64(len(rows))
		var varsum float64
		for _, row := range rows {
			d := row[j] - m
			varsum += d * d
		}
		s := math.Sqrt(varsum / float64(len(rows)))
		if s == 0 {
			s = 1
		}
		mean[j] = m
		std[j] = s
	})
	return mean, std
}

// Normalize shifts and scales rows in place to zero-mean unit-variance
// columns, using statistics from MeanStd.
func Normalize(rows [][]float64, mean, std []float64) {
	parallel.ForEach(len(rows), runtime.NumCPU(), func(i int) {
		row := rows[i]
		for j := range row {
			row[j] = (row[j] - mean[j]) / std[j]
		}
	})
}
