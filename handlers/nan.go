package handlers

import (
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/neurlang/engine"
)

// TerminateOnNaN stops the run as soon as the per-iteration output turns
// NaN or infinite, before a diverged model overwrites anything useful.
// Transform extracts the scalar to check; the default handles the
// float64 loss published by trainer engines and skips everything else.
type TerminateOnNaN struct {
	Transform func(output interface{}) (float64, bool)
}

func NewTerminateOnNaN() *TerminateOnNaN { return &TerminateOnNaN{} }

// Attach registers the guard on IterationCompleted.
func (t *TerminateOnNaN) Attach(e *engine.Engine) {
	extract := t.Transform
	if extract == nil {
		extract = func(output interface{}) (float64, bool) {
			v, ok := output.(float64)
			return v, ok
		}
	}
	e.On(engine.IterationCompleted, func(e *engine.Engine) error {
		v, ok := extract(e.State().Output)
		if !ok {
			return nil
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			log.WithFields(log.Fields{
				"run_id":    e.State().RunID,
				"epoch":     e.State().Epoch,
				"iteration": e.State().Iteration,
				"output":    v,
			}).Warn("non-finite output, terminating")
			e.Terminate()
		}
		return nil
	})
}
