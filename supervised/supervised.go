// Package supervised glues networks, optimizers and criteria into
// engines. Trainer steps the optimizer once per batch and publishes the
// batch loss; Evaluator only runs the forward pass and publishes
// prediction/target pairs for attached metrics. Together they form the
// usual two-engine loop: train an epoch, then let the evaluator sweep a
// validation loader.
package supervised

import (
	"fmt"

	"github.com/neurlang/engine"
	"github.com/neurlang/engine/data"
	"github.com/neurlang/engine/metrics"
	"github.com/neurlang/engine/nn"
	"github.com/neurlang/engine/optim"
)

func asBatch(batch interface{}) (*data.Batch, error) {
	b, ok := batch.(*data.Batch)
	if !ok {
		return nil, fmt.Errorf("supervised: want *data.Batch, got %T", batch)
	}
	return b, nil
}

// Trainer builds an engine whose process runs one optimization step per
// batch: zero the gradients, forward, loss, backward, step. The batch
// loss becomes State.Output.
func Trainer(net *nn.Network, opt optim.Optimizer, crit nn.Criterion) *engine.Engine {
	return engine.New(func(e *engine.Engine, batch interface{}) (interface{}, error) {
		b, err := asBatch(batch)
		if err != nil {
			return nil, err
		}
		net.ZeroGrad()
		pred := net.Forward(b.X)
		loss, grad := crit.Loss(pred, b.Y)
		net.Backward(grad)
		if err := opt.Step(net.Params()); err != nil {
			return nil, err
		}
		return loss, nil
	})
}

// Evaluator builds an engine whose process runs the forward pass only,
// publishing a metrics.Value. Weights are never touched.
func Evaluator(net *nn.Network) *engine.Engine {
	return engine.New(func(e *engine.Engine, batch interface{}) (interface{}, error) {
		b, err := asBatch(batch)
		if err != nil {
			return nil, err
		}
		return metrics.Value{Pred: net.Forward(b.X), True: b.Y}, nil
	})
}
