// Package hdf5 loads datasets from HDF5 tables, the format the public
// ANN benchmark corpora ship in.
package hdf5

import (
	"fmt"

	"github.com/neurlang/engine/data"
	hdf "gonum.org/v1/hdf5"
)

// Pairs reads inputs from the xName table and target rows from the yName
// table of the file at path. Both tables must be rank 2 float32 with
// matching row counts.
func Pairs(path, xName, yName string) (data.Slices, error) {
	f, err := hdf.OpenFile(path, hdf.F_ACC_RDONLY)
	if err != nil {
		return data.Slices{}, err
	}
	defer f.Close()

	x, err := readMatrix(f, xName)
	if err != nil {
		return data.Slices{}, err
	}
	y, err := readMatrix(f, yName)
	if err != nil {
		return data.Slices{}, err
	}
	if len(x) != len(y) {
		return data.Slices{}, fmt.Errorf("%s has %d rows but %s has %d", xName, len(x), yName, len(y))
	}
	return data.Slices{X: x, Y: y}, nil
}

// Classes reads inputs from the xName table and int32 class labels from
// the rank 1 yName table, expanding the labels one-hot.
func Classes(path, xName, yName string, classes int) (data.Slices, error) {
	f, err := hdf.OpenFile(path, hdf.F_ACC_RDONLY)
	if err != nil {
		return data.Slices{}, err
	}
	defer f.Close()

	x, err := readMatrix(f, xName)
	if err != nil {
		return data.Slices{}, err
	}
	labels, err := readLabels(f, yName)
	if err != nil {
		return data.Slices{}, err
	}
	if len(x) != len(labels) {
		return data.Slices{}, fmt.Errorf("%s has %d rows but %s has %d", xName, len(x), yName, len(labels))
	}
	return data.Slices{X: x, Y: data.OneHot(labels, classes)}, nil
}

func readMatrix(f *hdf.File, name string) ([][]float64, error) {
	dataset, err := f.OpenDataset(name)
	if err != nil {
		return nil, err
	}
	defer dataset.Close()

	space := dataset.Space()
	dims, _, err := space.SimpleExtentDims()
	if err != nil {
		return nil, err
	}
	if len(dims) != 2 {
		return nil, fmt.Errorf("dataset %s has rank %d, want 2", name, len(dims))
	}
	rows, cols := int(dims[0]), int(dims[1])

	flat := make([]float32, rows*cols)
	if err := dataset.Read(&flat); err != nil {
		return nil, err
	}
	out := make([][]float64, rows)
	for i := range out {
		row := make([]float64, cols)
		for j := range row {
			row[j] = float64(flat[i*cols+j])
		}
		out[i] = row
	}
	return out, nil
}

func readLabels(f *hdf.File, name string) ([]int, error) {
	dataset, err := f.OpenDataset(name)
	if err != nil {
		return nil, err
	}
	defer dataset.Close()

	fileSpace := dataset.Space()
	numTicks := fileSpace.SimpleExtentNPoints()

	flat := make([]int32, numTicks)
	if err := dataset.Read(&flat); err != nil {
		return nil, err
	}
	out := make([]int, len(flat))
	for i, v := range flat {
		out[i] = int(v)
	}
	return out, nil
}
