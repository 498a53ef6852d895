package handlers

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/neurlang/engine"
	"github.com/neurlang/engine/data"
	"github.com/neurlang/engine/metrics"
)

// Validation runs an evaluator engine over a holdout loader after every
// training epoch and copies the evaluator's metrics into the trainer's
// state under Prefix, "val_" when empty. With Boost set, the samples the
// evaluator got wrong are oversampled in the boosted loader's following
// epochs; the evaluator must then sweep the same dataset that loader
// serves. Attach it before MetricsLogger and Checkpoint so they see the
// copied metrics.
type Validation struct {
	Evaluator *engine.Engine
	Loader    engine.Loader
	Prefix    string
	Boost     *data.Loader

	misses   []int
	universe int
}

func NewValidation(evaluator *engine.Engine, loader engine.Loader) *Validation {
	return &Validation{Evaluator: evaluator, Loader: loader}
}

func rowArgmax(m *mat.Dense, i int) int {
	row := m.RawRowView(i)
	best := 0
	for j, v := range row {
		if v > row[best] {
			best = j
		}
	}
	return best
}

func asValue(output interface{}) (metrics.Value, bool) {
	switch out := output.(type) {
	case metrics.Value:
		return out, true
	case *metrics.Value:
		return *out, true
	}
	return metrics.Value{}, false
}

// Attach registers the validation pass on the trainer's EpochCompleted.
func (v *Validation) Attach(trainer *engine.Engine) {
	if v.Boost != nil {
		v.Evaluator.On(engine.IterationCompleted, v.collect)
	}
	prefix := v.Prefix
	if prefix == "" {
		prefix = "val_"
	}
	trainer.On(engine.EpochCompleted, func(e *engine.Engine) error {
		v.misses, v.universe = nil, 0
		if err := v.Evaluator.Run(v.Loader, 1); err != nil {
			return fmt.Errorf("validation: %w", err)
		}
		for name, value := range v.Evaluator.State().Metrics {
			e.State().Metrics[prefix+name] = value
		}
		if v.Boost == nil {
			return nil
		}
		if len(v.misses) > 0 {
			v.Boost.SetBoost(data.NewMissSet(v.misses, v.universe))
		} else {
			v.Boost.SetBoost(nil)
		}
		return nil
	})
}

// collect gathers the indexes of misclassified samples during the
// evaluator's sweep.
func (v *Validation) collect(e *engine.Engine) error {
	b, ok := e.State().Batch.(*data.Batch)
	if !ok {
		return nil
	}
	val, ok := asValue(e.State().Output)
	if !ok {
		return nil
	}
	rows, _ := val.Pred.Dims()
	for i := 0; i < rows; i++ {
		if idx := b.Indices[i]; idx >= v.universe {
			v.universe = idx + 1
		}
		if rowArgmax(val.Pred, i) != rowArgmax(val.True, i) {
			v.misses = append(v.misses, b.Indices[i])
		}
	}
	return nil
}
