package main

import "flag"
import "math/rand"

import log "github.com/sirupsen/logrus"

import "github.com/neurlang/engine/data"
import "github.com/neurlang/engine/data/mnist"
import "github.com/neurlang/engine/handlers"
import "github.com/neurlang/engine/history"
import "github.com/neurlang/engine/metrics"
import "github.com/neurlang/engine/nn"
import "github.com/neurlang/engine/optim"
import "github.com/neurlang/engine/optim/cu"
import "github.com/neurlang/engine/supervised"

func main() {
	dir := flag.String("dir", ".", "directory with the mnist idx files")
	epochs := flag.Int("epochs", 20, "number of epochs to train")
	batch := flag.Int("batch", 64, "minibatch size")
	lr := flag.Float64("lr", 0.05, "learning rate")
	patience := flag.Int("patience", 5, "epochs without improvement before stopping")
	seed := flag.Int64("seed", 42, "shuffle and weight init seed")
	dstmodel := flag.String("dstmodel", "", "model destination .bin.zlib file")
	resume := flag.Bool("resume", false, "resume training")
	record := flag.String("record", "", "record run history: postgres or purekv")
	cuda := flag.Bool("cuda", false, "step the optimizer on the gpu")
	boost := flag.Bool("boost", false, "oversample misclassified samples each epoch")
	flag.Parse()

	if *record != "" && *record != "postgres" && *record != "purekv" {
		println("unknown history recorder:", *record)
		return
	}

	rand.Seed(*seed)

	trainSet, inferSet, err := mnist.Load(*dir)
	if err != nil {
		panic(err.Error())
	}
	trainLoader := data.NewLoader(trainSet.Dataset(), *batch, data.WithShuffle(), data.WithSeed(*seed))
	inferLoader := data.NewLoader(inferSet.Dataset(), *batch)

	net := nn.NewNetwork(
		nn.NewDense(mnist.ImgSize*mnist.ImgSize, 128),
		nn.NewReLU(),
		nn.NewDense(128, 10),
	)

	var opt optim.Optimizer
	if *cuda {
		gpu, err := cu.NewSGD(*lr)
		if err != nil {
			panic(err.Error())
		}
		defer gpu.Close()
		opt = gpu
	} else {
		sgd := optim.NewSGD(*lr)
		sgd.Momentum = 0.9
		opt = sgd
	}

	trainer := supervised.Trainer(net, opt, nn.NewCrossEntropy())
	trainer.SetSeed(*seed)
	evaluator := supervised.Evaluator(net)

	metrics.Attach(trainer, "loss", metrics.NewRunningAverage(0.98))
	metrics.Attach(evaluator, "acc", &metrics.Accuracy{})
	metrics.Attach(evaluator, "loss", metrics.NewLoss(nn.NewCrossEntropy()))

	validation := handlers.NewValidation(evaluator, inferLoader)
	if *boost {
		validation.Boost = trainLoader
	}
	validation.Attach(trainer)

	handlers.NewProgressBar().Attach(trainer)
	handlers.NewMetricsLogger().Attach(trainer)
	handlers.NewTerminateOnNaN().Attach(trainer)

	stopper := handlers.NewEarlyStopping(*patience, handlers.MetricScore("val_acc"))
	stopper.Net = net
	stopper.Attach(trainer)

	if *dstmodel != "" {
		checkpoint := handlers.NewCheckpoint(net, *dstmodel, handlers.MetricScore("val_acc"))
		if *resume {
			if err := checkpoint.Resume(trainer); err != nil {
				panic(err.Error())
			}
		}
		checkpoint.Attach(trainer)
	}

	switch *record {
	case "postgres":
		pg, err := history.NewPostgres(history.LoadPostgresConfig())
		if err != nil {
			panic(err.Error())
		}
		if err := pg.EnsureSchema(); err != nil {
			panic(err.Error())
		}
		history.Attach(trainer, "train_mnist", pg)
	case "purekv":
		kv, err := history.NewPureKV(history.LoadPureKVConfig())
		if err != nil {
			panic(err.Error())
		}
		defer kv.Close()
		history.Attach(trainer, "train_mnist", kv)
	}

	if err := trainer.Run(trainLoader, *epochs); err != nil {
		panic(err.Error())
	}

	log.WithFields(log.Fields{
		"epochs":  trainer.State().Epoch,
		"val_acc": trainer.State().Metrics["val_acc"],
	}).Info("training finished")
}
