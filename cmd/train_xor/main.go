package main

import "flag"
import "fmt"
import "math/rand"

import "gonum.org/v1/gonum/mat"

import "github.com/neurlang/engine"
import "github.com/neurlang/engine/data"
import "github.com/neurlang/engine/metrics"
import "github.com/neurlang/engine/nn"
import "github.com/neurlang/engine/optim"
import "github.com/neurlang/engine/supervised"

func main() {
	epochs := flag.Int("epochs", 2000, "number of epochs to train")
	lr := flag.Float64("lr", 0.5, "learning rate")
	seed := flag.Int64("seed", 1, "weight init seed")
	flag.Parse()

	rand.Seed(*seed)

	xor := data.Slices{
		X: [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
		Y: [][]float64{{0}, {1}, {1}, {0}},
	}

	net := nn.NewNetwork(
		nn.NewDense(2, 8),
		nn.NewTanh(),
		nn.NewDense(8, 1),
		nn.NewSigmoid(),
	)

	opt := optim.NewSGD(*lr)
	opt.Momentum = 0.9 // heavy ball, xor plateaus without it

	trainer := supervised.Trainer(net, opt, nn.NewMSE())
	metrics.Attach(trainer, "loss", metrics.NewRunningAverage(0.9))
	trainer.OnEvery(engine.EpochCompleted, 500, func(e *engine.Engine) error {
		fmt.Printf("epoch %d loss %f\n", e.State().Epoch, e.State().Metrics["loss"])
		return nil
	})

	if err := trainer.Run(data.NewLoader(xor, 4), *epochs); err != nil {
		panic(err.Error())
	}

	for i := 0; i < xor.Len(); i++ {
		x, y := xor.Sample(i)
		pred := net.Forward(mat.NewDense(1, len(x), x))
		fmt.Printf("%v -> %.3f (want %v)\n", x, pred.At(0, 0), y[0])
	}
}
