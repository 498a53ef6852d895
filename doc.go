// Package engine implements an event-driven training loop.
//
// An Engine owns nothing but the loop: it pulls batches from a Loader,
// invokes a user-supplied process function on each batch, and fires
// lifecycle events (run/epoch/iteration boundaries) to registered
// handlers. Everything else - metrics, checkpointing, early stopping,
// progress reporting, run recording - is a handler listening to those
// events. The numeric work happens inside the process function, typically
// built from the nn, optim and data subpackages.
//
// A minimal supervised run:
//
//	net := nn.NewNetwork(nn.NewDense(2, 8), nn.NewReLU(), nn.NewDense(8, 2))
//	opt := optim.NewSGD(0.1)
//	trainer := supervised.Trainer(net, opt, nn.NewCrossEntropy())
//	trainer.OnEvery(engine.EpochCompleted, 10, func(e *engine.Engine) error {
//		println("epoch", e.State().Epoch)
//		return nil
//	})
//	err := trainer.Run(loader, 100)
//
// Handlers run synchronously on the loop goroutine, in registration
// order. An error returned by the process function or by any handler
// aborts the run and is returned from Run.
package engine
