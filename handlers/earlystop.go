package handlers

import (
	log "github.com/sirupsen/logrus"

	"github.com/neurlang/engine"
	"github.com/neurlang/engine/nn"
	"github.com/neurlang/engine/parallel"
)

// EarlyStopping terminates the run after Patience epochs without the
// score improving by more than MinDelta. With Net set it also terminates
// when the weights revisit a fingerprint already seen since the last
// improvement, the cheap way out of a training loop that keeps cycling
// through the same states.
type EarlyStopping struct {
	Patience int
	MinDelta float64
	Score    func(s *engine.State) float64
	Net      *nn.Network

	best         float64
	primed       bool
	since        int
	improvements int
	cycles       *parallel.CycleSet
}

func NewEarlyStopping(patience int, score func(s *engine.State) float64) *EarlyStopping {
	if patience < 1 {
		patience = 1
	}
	return &EarlyStopping{Patience: patience, Score: score, cycles: parallel.NewCycleSet()}
}

// Attach registers the stopper on EpochCompleted.
func (s *EarlyStopping) Attach(e *engine.Engine) {
	if s.cycles == nil {
		s.cycles = parallel.NewCycleSet()
	}
	e.On(engine.EpochCompleted, func(e *engine.Engine) error {
		score := s.Score(e.State())
		if !s.primed || score > s.best+s.MinDelta {
			s.best, s.primed = score, true
			s.since = 0
			s.improvements++
		} else {
			s.since++
			if s.since >= s.Patience {
				log.WithFields(log.Fields{
					"run_id":   e.State().RunID,
					"epoch":    e.State().Epoch,
					"best":     s.best,
					"patience": s.Patience,
				}).Info("early stopping")
				e.Terminate()
				return nil
			}
		}
		if s.Net == nil {
			return nil
		}
		sum := s.Net.Fingerprint()
		generation := byte(s.improvements)
		if s.cycles.Exists(sum, generation) {
			log.WithFields(log.Fields{
				"run_id": e.State().RunID,
				"epoch":  e.State().Epoch,
			}).Info("weight cycle detected, stopping")
			e.Terminate()
			return nil
		}
		s.cycles.Insert(sum, generation)
		return nil
	})
}
