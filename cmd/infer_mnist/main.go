package main

import "flag"
import "fmt"

import "github.com/neurlang/engine/data"
import "github.com/neurlang/engine/data/mnist"
import "github.com/neurlang/engine/metrics"
import "github.com/neurlang/engine/nn"
import "github.com/neurlang/engine/supervised"

func ratio(num, div int) float64 {
	if div == 0 {
		return 0
	}
	return float64(num) / float64(div)
}

func main() {
	dir := flag.String("dir", ".", "directory with the mnist idx files")
	batch := flag.Int("batch", 256, "minibatch size")
	dstmodel := flag.String("dstmodel", "", "model source .bin.zlib file")
	flag.Parse()

	if *dstmodel == "" {
		println("dstmodel is mandatory")
		return
	}

	_, inferSet, err := mnist.Load(*dir)
	if err != nil {
		panic(err.Error())
	}

	net := nn.NewNetwork(
		nn.NewDense(mnist.ImgSize*mnist.ImgSize, 128),
		nn.NewReLU(),
		nn.NewDense(128, 10),
	)
	if err := net.ReadCompressedWeightsFromFile(*dstmodel); err != nil {
		panic(err.Error())
	}

	evaluator := supervised.Evaluator(net)
	cm := metrics.NewConfusionMatrix(10)
	metrics.Attach(evaluator, "acc", &metrics.Accuracy{})
	metrics.Attach(evaluator, "cm", cm)

	if err := evaluator.Run(data.NewLoader(inferSet.Dataset(), *batch), 1); err != nil {
		panic(err.Error())
	}

	fmt.Printf("accuracy %.4f over %d digits\n", evaluator.State().Metrics["acc"], inferSet.Len())
	fmt.Println("digit precision recall")
	for digit := 0; digit < 10; digit++ {
		var predicted, actual int
		for other := 0; other < 10; other++ {
			predicted += cm.Count(other, digit)
			actual += cm.Count(digit, other)
		}
		hit := cm.Count(digit, digit)
		fmt.Printf("%5d %9.4f %6.4f\n", digit, ratio(hit, predicted), ratio(hit, actual))
	}
}
