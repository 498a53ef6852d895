// Package history records training runs and their per-epoch metrics to
// pluggable backends. Recording is advisory: a failed write is logged
// and the run carries on, so a flaky database never costs a model.
package history

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/neurlang/engine"
)

// Run identifies one training run.
type Run struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	MaxEpochs int       `json:"max_epochs" db:"max_epochs"`
	Seed      int64     `json:"seed" db:"seed"`
	StartedAt time.Time `json:"started_at" db:"started_at"`
}

// Epoch is one recorded epoch of a run.
type Epoch struct {
	RunID     string             `json:"run_id" db:"run_id"`
	Epoch     int                `json:"epoch" db:"epoch"`
	Iteration int                `json:"iteration" db:"iteration"`
	Seconds   float64            `json:"seconds" db:"seconds"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Recorder persists runs and their epochs.
type Recorder interface {
	SaveRun(ctx context.Context, run Run) error
	SaveEpoch(ctx context.Context, ep Epoch) error
}

// Attach wires the recorder to the engine: the run row goes out on
// Started, one epoch row per EpochCompleted. Resumed runs reuse their
// run id, so a duplicate run insert may be reported by the backend and
// logged like any other failure.
func Attach(e *engine.Engine, name string, r Recorder) {
	e.On(engine.Started, func(e *engine.Engine) error {
		s := e.State()
		run := Run{
			ID:        s.RunID,
			Name:      name,
			MaxEpochs: s.MaxEpochs,
			Seed:      s.Seed,
			StartedAt: time.Now(),
		}
		if err := r.SaveRun(context.Background(), run); err != nil {
			log.WithFields(log.Fields{
				"run_id": s.RunID,
				"name":   name,
			}).Warnf("history: save run failed: %v", err)
		}
		return nil
	})
	e.On(engine.EpochCompleted, func(e *engine.Engine) error {
		snap := e.StateSnapshot()
		ep := Epoch{
			RunID:     snap.RunID,
			Epoch:     snap.Epoch,
			Iteration: snap.Iteration,
			Seconds:   snap.Times["epoch"],
			Metrics:   snap.Metrics,
		}
		if err := r.SaveEpoch(context.Background(), ep); err != nil {
			log.WithFields(log.Fields{
				"run_id": snap.RunID,
				"epoch":  snap.Epoch,
			}).Warnf("history: save epoch failed: %v", err)
		}
		return nil
	})
}
