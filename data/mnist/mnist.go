// Package mnist reads the gzipped idx files of the MNIST handwritten
// digit corpus and adapts them to the data loader.
package mnist

import "bytes"
import "compress/gzip"
import "crypto/sha256"
import "encoding/binary"
import "fmt"
import "io"
import "os"
import "path/filepath"
import "runtime"

import "github.com/neurlang/engine/data"
import "github.com/neurlang/engine/parallel"

// ImgSize is the side of one digit image.
const ImgSize = 28

// SmallImgSize is the side after 2x2 max pooling over the 26x26 interior.
const SmallImgSize = 13

const inferSetImg = "t10k-images-idx3-ubyte.gz"
const inferSetVal = "t10k-labels-idx1-ubyte.gz"
const trainSetImg = "train-images-idx3-ubyte.gz"
const trainSetVal = "train-labels-idx1-ubyte.gz"
const inferDigImg = "8d422c7b0a1c1c79245a5bcf07fe86e33eeafee792b84584aec276f5a2dbc4e6"
const inferDigVal = "f7ae60f92e00ec6debd23a6088c31dbd2371eca3ffa0defaefb259924204aec6"
const trainDigImg = "440fcabf73cc546fa21475e81ea370265605f56be210a4024d2ca8f203523609"
const trainDigVal = "3552534a0a558bbed6aed32b30c495cca23d567ec52cac8be1a0730e8010255c"

const imagesMagic = 2051
const labelsMagic = 2049

// Set is one split of the corpus.
type Set struct {
	Images [][ImgSize * ImgSize]byte
	Labels []byte
}

// Len reports the number of digits in the set.
func (s *Set) Len() int {
	return len(s.Labels)
}

// Dataset adapts the set for the loader: pixels scaled into [0, 1],
// one-hot labels over the ten digit classes.
func (s *Set) Dataset() data.Slices {
	x := make([][]float64, s.Len())
	labels := make([]int, s.Len())
	parallel.ForEach(s.Len(), runtime.NumCPU(), func(i int) {
		row := make([]float64, ImgSize*ImgSize)
		for j, p := range s.Images[i] {
			row[j] = float64(p) / 255
		}
		x[i] = row
		labels[i] = int(s.Labels[i])
	})
	return data.Slices{X: x, Y: data.OneHot(labels, 10)}
}

// SmallSet is a split downscaled to 13x13.
type SmallSet struct {
	Images [][SmallImgSize * SmallImgSize]byte
	Labels []byte
}

// Len reports the number of digits in the set.
func (s *SmallSet) Len() int {
	return len(s.Labels)
}

// Dataset adapts the downscaled set for the loader.
func (s *SmallSet) Dataset() data.Slices {
	x := make([][]float64, s.Len())
	labels := make([]int, s.Len())
	parallel.ForEach(s.Len(), runtime.NumCPU(), func(i int) {
		row := make([]float64, SmallImgSize*SmallImgSize)
		for j, p := range s.Images[i] {
			row[j] = float64(p) / 255
		}
		x[i] = row
		labels[i] = int(s.Labels[i])
	})
	return data.Slices{X: x, Y: data.OneHot(labels, 10)}
}

func max4(a, b, c, d byte) (o byte) {
	o = a
	if b > o {
		o = b
	}
	if c > o {
		o = c
	}
	if d > o {
		o = d
	}
	return o
}

// Small downscales every digit by 2x2 max pooling over the 26x26
// interior, the compact input the small demos train on.
func (s *Set) Small() *SmallSet {
	small := &SmallSet{
		Images: make([][SmallImgSize * SmallImgSize]byte, s.Len()),
		Labels: s.Labels,
	}
	parallel.ForEach(s.Len(), runtime.NumCPU(), func(i int) {
		img := &s.Images[i]
		out := &small.Images[i]
		for y := 0; y < SmallImgSize; y++ {
			for x := 0; x < SmallImgSize; x++ {
				base := (2*y+1)*ImgSize + 2*x + 1
				out[y*SmallImgSize+x] = max4(
					img[base],
					img[base+1],
					img[base+ImgSize],
					img[base+ImgSize+1],
				)
			}
		}
	})
	return small
}

func searchDirs(dir string) []string {
	if dir != "" {
		return []string{dir}
	}
	dirs := []string{"/tmp/mnist"}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, "mnist"))
	}
	return dirs
}

// Load reads both splits. An empty dir searches /tmp/mnist and
// $HOME/mnist. Every file is digest-checked before parsing.
func Load(dir string) (train, infer *Set, err error) {
	for _, d := range searchDirs(dir) {
		train, err = loadVerified(d, trainSetImg, trainDigImg, trainSetVal, trainDigVal)
		if err != nil {
			continue
		}
		infer, err = loadVerified(d, inferSetImg, inferDigImg, inferSetVal, inferDigVal)
		if err != nil {
			continue
		}
		return train, infer, nil
	}
	return nil, nil, err
}

func loadVerified(dir, imgName, imgDigest, lblName, lblDigest string) (*Set, error) {
	images, err := readVerified(filepath.Join(dir, imgName), imgDigest)
	if err != nil {
		return nil, err
	}
	labels, err := readVerified(filepath.Join(dir, lblName), lblDigest)
	if err != nil {
		return nil, err
	}
	return parseSet(images, labels)
}

// ReadSet reads one split from explicit image and label files without
// digest verification. Load is the checked entry point.
func ReadSet(imgPath, lblPath string) (*Set, error) {
	images, err := readVerified(imgPath, "")
	if err != nil {
		return nil, err
	}
	labels, err := readVerified(lblPath, "")
	if err != nil {
		return nil, err
	}
	return parseSet(images, labels)
}

// readVerified returns the decompressed file content, checking the raw
// file against digest first when one is given.
func readVerified(name, digest string) ([]byte, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if digest != "" {
		sum := sha256.Sum256(raw)
		if fmt.Sprintf("%x", sum) != digest {
			return nil, fmt.Errorf("file %s has a wrong digest", name)
		}
	}
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("ungzipping %s: %w", name, err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("ungzipping %s: %w", name, err)
	}
	return out, nil
}

func parseSet(images, labels []byte) (*Set, error) {
	imgs, err := parseImages(images)
	if err != nil {
		return nil, err
	}
	lbls, err := parseLabels(labels)
	if err != nil {
		return nil, err
	}
	if len(imgs) != len(lbls) {
		return nil, fmt.Errorf("%d images but %d labels", len(imgs), len(lbls))
	}
	return &Set{Images: imgs, Labels: lbls}, nil
}

func parseImages(b []byte) ([][ImgSize * ImgSize]byte, error) {
	if len(b) < 16 {
		return nil, fmt.Errorf("image file too short for its header")
	}
	if magic := binary.BigEndian.Uint32(b); magic != imagesMagic {
		return nil, fmt.Errorf("image file magic %d, want %d", magic, imagesMagic)
	}
	n := int(binary.BigEndian.Uint32(b[4:]))
	rows := int(binary.BigEndian.Uint32(b[8:]))
	cols := int(binary.BigEndian.Uint32(b[12:]))
	if rows != ImgSize || cols != ImgSize {
		return nil, fmt.Errorf("images are %dx%d, want %dx%d", rows, cols, ImgSize, ImgSize)
	}
	if len(b) != 16+n*ImgSize*ImgSize {
		return nil, fmt.Errorf("image file holds %d bytes for %d images", len(b)-16, n)
	}
	set := make([][ImgSize * ImgSize]byte, n)
	for i := range set {
		copy(set[i][:], b[16+i*ImgSize*ImgSize:])
	}
	return set, nil
}

func parseLabels(b []byte) ([]byte, error) {
	if len(b) < 8 {
		return nil, fmt.Errorf("label file too short for its header")
	}
	if magic := binary.BigEndian.Uint32(b); magic != labelsMagic {
		return nil, fmt.Errorf("label file magic %d, want %d", magic, labelsMagic)
	}
	n := int(binary.BigEndian.Uint32(b[4:]))
	if len(b) != 8+n {
		return nil, fmt.Errorf("label file holds %d labels, header says %d", len(b)-8, n)
	}
	return b[8:], nil
}
