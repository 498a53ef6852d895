// Package metrics provides evaluation metrics that attach to engine
// events. A metric accumulates over the iterations of an epoch and is
// computed at the epoch boundary; Attach does the event wiring so the
// value lands in State.Metrics where handlers and recorders read it.
package metrics

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/neurlang/engine"
)

// Metric accumulates batch outputs and reduces them to one number.
type Metric interface {
	Reset()
	Update(output interface{}) error
	Compute() (float64, error)
}

// ErrNoUpdates is returned by Compute before any Update.
var ErrNoUpdates = errors.New("metrics: compute before any update")

// Value is the prediction/target pair that evaluator engines publish as
// State.Output. Both matrices hold one row per sample; class targets are
// one-hot encoded.
type Value struct {
	Pred *mat.Dense
	True *mat.Dense
}

func asValue(output interface{}) (Value, error) {
	switch v := output.(type) {
	case Value:
		return v, nil
	case *Value:
		return *v, nil
	}
	return Value{}, fmt.Errorf("want metrics.Value output, got %T", output)
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

// Attach wires m to e under name: Reset on EpochStarted, Update with
// State.Output on IterationCompleted and Compute into State.Metrics[name]
// on EpochCompleted. A *RunningAverage additionally publishes after every
// iteration so progress handlers can read the smoothed value mid-epoch.
func Attach(e *engine.Engine, name string, m Metric) {
	_, running := m.(*RunningAverage)
	publish := func(e *engine.Engine) error {
		v, err := m.Compute()
		if err != nil {
			return fmt.Errorf("metric %s: %w", name, err)
		}
		e.State().Metrics[name] = v
		return nil
	}
	e.On(engine.EpochStarted, func(e *engine.Engine) error {
		m.Reset()
		return nil
	})
	e.On(engine.IterationCompleted, func(e *engine.Engine) error {
		if err := m.Update(e.State().Output); err != nil {
			return fmt.Errorf("metric %s: %w", name, err)
		}
		if running {
			return publish(e)
		}
		return nil
	})
	e.On(engine.EpochCompleted, publish)
}
