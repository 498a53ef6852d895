package nn

import "compress/zlib"
import "encoding/json"
import "fmt"
import "io"
import "os"

import "gonum.org/v1/gonum/mat"

type weightTensor struct {
	Rows int       `json:"rows"`
	Cols int       `json:"cols"`
	Data []float64 `json:"data"`
}

// WriteCompressedWeightsToFile writes model weights to a zlib file
func (n *Network) WriteCompressedWeightsToFile(name string) error {
	file, err := os.Create(name)
	if err != nil {
		return err
	}
	err = n.WriteCompressedWeights(file)
	file.Close()
	return err
}

// WriteCompressedWeights writes model weights to a writer
func (n *Network) WriteCompressedWeights(w io.Writer) error {
	zw := zlib.NewWriter(w)
	var doc []weightTensor
	for _, p := range n.Params() {
		rows, cols := p.Value.Dims()
		data := make([]float64, 0, rows*cols)
		for i := 0; i < rows; i++ {
			data = append(data, p.Value.RawRowView(i)...)
		}
		doc = append(doc, weightTensor{Rows: rows, Cols: cols, Data: data})
	}
	if err := json.NewEncoder(zw).Encode(doc); err != nil {
		return err
	}
	return zw.Close()
}

// ReadCompressedWeightsFromFile reads model weights from a zlib file
func (n *Network) ReadCompressedWeightsFromFile(name string) error {
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	err = n.ReadCompressedWeights(file)
	file.Close()
	return err
}

// ReadCompressedWeights reads model weights from a reader into the
// network. The file must hold exactly the tensors the network has, in
// order and shape; anything else is an error and the network is left
// untouched.
func (n *Network) ReadCompressedWeights(r io.Reader) error {
	zr, err := zlib.NewReader(r)
	if err != nil {
		return err
	}
	defer zr.Close()

	var doc []weightTensor
	if err := json.NewDecoder(zr).Decode(&doc); err != nil {
		return err
	}
	params := n.Params()
	if len(doc) != len(params) {
		return fmt.Errorf("weights hold %d tensors, network has %d", len(doc), len(params))
	}
	for i, p := range params {
		rows, cols := p.Value.Dims()
		if doc[i].Rows != rows || doc[i].Cols != cols || len(doc[i].Data) != rows*cols {
			return fmt.Errorf("tensor %d is %dx%d with %d values, network wants %dx%d",
				i, doc[i].Rows, doc[i].Cols, len(doc[i].Data), rows, cols)
		}
	}
	for i, p := range params {
		p.Value.Copy(mat.NewDense(doc[i].Rows, doc[i].Cols, doc[i].Data))
	}
	return nil
}
