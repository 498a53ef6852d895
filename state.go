package engine

// State carries everything a run accumulates. Handlers read and write it
// through Engine.State; the loop itself only touches the counter fields.
type State struct {
	// Epoch is the current epoch, counted from 1 during a run.
	Epoch int
	// Iteration counts process calls cumulatively across epochs, from 1.
	Iteration int
	// EpochLength is the number of iterations per epoch. Zero until known;
	// learned from the first epoch when the loader cannot report it.
	EpochLength int
	// MaxEpochs is the epoch count requested by Run.
	MaxEpochs int

	// Batch is the value most recently produced by the loader.
	Batch interface{}
	// Output is the value most recently returned by the process function.
	Output interface{}

	// Metrics holds named values published by handlers, typically
	// attached metrics and validation results.
	Metrics map[string]float64
	// Times holds wall-clock seconds keyed by "epoch" and "total".
	Times map[string]float64

	// RunID identifies this run in logs and run history backends.
	RunID string
	// Seed is the seed the run's shuffling derives from.
	Seed int64
}

// EpochIteration is the 1-based iteration within the current epoch,
// or the cumulative count while the first epoch's length is still unknown.
func (s *State) EpochIteration() int {
	if s.EpochLength <= 0 {
		return s.Iteration
	}
	n := s.Iteration % s.EpochLength
	if n == 0 && s.Iteration > 0 {
		return s.EpochLength
	}
	return n
}

func newState() *State {
	return &State{
		Metrics: make(map[string]float64),
		Times:   make(map[string]float64),
	}
}
