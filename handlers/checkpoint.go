package handlers

import (
	"encoding/json"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/neurlang/engine"
	"github.com/neurlang/engine/nn"
)

// Checkpoint saves the network weights and an engine-state sidecar every
// time the score improves. Path holds the compressed weights, Path plus
// ".state" the JSON sidecar. Bigger scores win; negate a loss to
// checkpoint on it. Save failures are logged and do not stop the run.
type Checkpoint struct {
	Path  string
	Score func(s *engine.State) float64

	Best  float64
	saved bool

	net *nn.Network
}

// MetricScore scores a run by one entry of State.Metrics.
func MetricScore(name string) func(s *engine.State) float64 {
	return func(s *engine.State) float64 {
		return s.Metrics[name]
	}
}

func NewCheckpoint(net *nn.Network, path string, score func(s *engine.State) float64) *Checkpoint {
	return &Checkpoint{Path: path, Score: score, net: net}
}

type savedState struct {
	Epoch       int                `json:"epoch"`
	Iteration   int                `json:"iteration"`
	EpochLength int                `json:"epoch_length,omitempty"`
	MaxEpochs   int                `json:"max_epochs"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
	RunID       string             `json:"run_id"`
	Seed        int64              `json:"seed,omitempty"`
	Score       float64            `json:"score"`
}

// Attach registers the checkpoint on EpochCompleted.
func (c *Checkpoint) Attach(e *engine.Engine) {
	e.On(engine.EpochCompleted, func(e *engine.Engine) error {
		score := c.Score(e.State())
		if c.saved && score <= c.Best {
			return nil
		}
		if err := c.save(e, score); err != nil {
			log.WithFields(log.Fields{
				"run_id": e.State().RunID,
				"epoch":  e.State().Epoch,
				"path":   c.Path,
			}).Warnf("checkpoint save failed: %v", err)
			return nil
		}
		c.Best, c.saved = score, true
		return nil
	})
}

func (c *Checkpoint) save(e *engine.Engine, score float64) error {
	if err := c.net.WriteCompressedWeightsToFile(c.Path); err != nil {
		return err
	}
	snap := e.StateSnapshot()
	doc := savedState{
		Epoch:       snap.Epoch,
		Iteration:   snap.Iteration,
		EpochLength: snap.EpochLength,
		MaxEpochs:   snap.MaxEpochs,
		Metrics:     snap.Metrics,
		RunID:       snap.RunID,
		Seed:        snap.Seed,
		Score:       score,
	}
	f, err := os.Create(c.Path + ".state")
	if err != nil {
		return err
	}
	if err := json.NewEncoder(f).Encode(doc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Resume reloads the checkpointed weights into the network and the saved
// state into the engine, so the next Run continues where the checkpoint
// left off. The best score is restored too.
func (c *Checkpoint) Resume(e *engine.Engine) error {
	if err := c.net.ReadCompressedWeightsFromFile(c.Path); err != nil {
		return fmt.Errorf("resume weights: %w", err)
	}
	f, err := os.Open(c.Path + ".state")
	if err != nil {
		return fmt.Errorf("resume state: %w", err)
	}
	defer f.Close()
	var doc savedState
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		return fmt.Errorf("resume state: %w", err)
	}
	e.LoadState(engine.State{
		Epoch:       doc.Epoch,
		Iteration:   doc.Iteration,
		EpochLength: doc.EpochLength,
		MaxEpochs:   doc.MaxEpochs,
		Metrics:     doc.Metrics,
		RunID:       doc.RunID,
		Seed:        doc.Seed,
	})
	c.Best, c.saved = doc.Score, true
	return nil
}
