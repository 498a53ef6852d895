package main

import "flag"
import "fmt"
import "math/rand"

import "gonum.org/v1/gonum/mat"

import "github.com/neurlang/engine/data"
import "github.com/neurlang/engine/features"
import "github.com/neurlang/engine/metrics"
import "github.com/neurlang/engine/nn"
import "github.com/neurlang/engine/optim"
import "github.com/neurlang/engine/supervised"

func isAlnum(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func main() {
	epochs := flag.Int("epochs", 200, "number of epochs to train")
	lr := flag.Float64("lr", 0.01, "learning rate")
	seed := flag.Int64("seed", 7, "weight init seed")
	flag.Parse()

	rand.Seed(*seed)

	// feature width before prime rounding
	const buckets = 4096

	// salts tried before settling for collisions
	const attempts = 20000

	hasher := features.NewHasher(buckets)
	vocab := make([]string, 256)
	for i := range vocab {
		vocab[i] = string([]byte{byte(i)})
	}
	if salt, ok := features.FindSalt(vocab, uint32(hasher.Dim()), attempts); ok {
		hasher.Salt = salt
	} else {
		println("no collision free salt found, keeping salt 0")
	}

	labels := make([]int, 256)
	X := make([][]float64, 256)
	for i := range X {
		X[i] = hasher.Row([]string{vocab[i]})
		if isAlnum(byte(i)) {
			labels[i] = 1
		}
	}
	dataset := data.Slices{X: X, Y: data.OneHot(labels, 2)}

	net := nn.NewNetwork(
		nn.NewDense(hasher.Dim(), 16),
		nn.NewReLU(),
		nn.NewDense(16, 2),
	)

	trainer := supervised.Trainer(net, optim.NewAdam(*lr), nn.NewCrossEntropy())
	metrics.Attach(trainer, "loss", metrics.NewRunningAverage(0.9))

	evaluator := supervised.Evaluator(net)
	metrics.Attach(evaluator, "acc", &metrics.Accuracy{})

	loader := data.NewLoader(dataset, 32, data.WithShuffle(), data.WithSeed(*seed))
	if err := trainer.Run(loader, *epochs); err != nil {
		panic(err.Error())
	}
	if err := evaluator.Run(data.NewLoader(dataset, 256), 1); err != nil {
		panic(err.Error())
	}
	fmt.Printf("loss %f acc %f\n", trainer.State().Metrics["loss"], evaluator.State().Metrics["acc"])

	for i := 0; i < 256; i++ {
		pred := net.Forward(mat.NewDense(1, hasher.Dim(), X[i]))
		got := pred.At(0, 1) > pred.At(0, 0)
		if got != isAlnum(byte(i)) {
			fmt.Printf("byte %d classified as alnum=%v\n", i, got)
		}
	}
}
