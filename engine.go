package engine

import "errors"
import "fmt"
import "time"

import "github.com/google/uuid"

// Process consumes one batch and returns the iteration's output, typically
// the loss. The output is stored in State.Output before IterationCompleted
// fires.
type Process func(e *Engine, batch interface{}) (interface{}, error)

// Handler reacts to a fired event. Returning an error aborts the run.
type Handler func(e *Engine) error

// Filter decides per firing whether a registration's handler runs.
type Filter func(e *Engine, ev Event) bool

// Loader produces the batches of one epoch. Reset rewinds it to the start;
// Next returns the next batch and false when the epoch is exhausted.
type Loader interface {
	Reset()
	Next() (interface{}, bool)
}

// Sized is implemented by loaders that know their length up front.
type Sized interface {
	Len() int
}

// Registration ties a handler to an event. It is returned by the On
// family and accepted by Off.
type Registration struct {
	event   Event
	handler Handler
	filter  Filter
	every   int
	nth     int
	seen    int
	removed bool
}

// Event reports which event the registration listens to.
func (r *Registration) Event() Event {
	return r.event
}

var ErrNoProcess = errors.New("engine: nil process function")
var ErrNoLoader = errors.New("engine: nil loader")
var ErrBadEpochs = errors.New("engine: max epochs must be positive")

// Engine drives the loop. It is not safe for concurrent use; handlers
// run synchronously on the goroutine that called Run.
type Engine struct {
	process        Process
	state          *State
	regs           map[Event][]*Registration
	terminate      bool
	terminateEpoch bool
	restored       bool
}

// New returns an engine that will call process once per batch.
func New(process Process) *Engine {
	return &Engine{
		process: process,
		state:   newState(),
		regs:    make(map[Event][]*Registration),
	}
}

// State exposes the run state for handlers and process functions.
func (e *Engine) State() *State {
	return e.state
}

// StateSnapshot returns a copy of the current state with its maps
// duplicated, suitable for checkpointing.
func (e *Engine) StateSnapshot() State {
	snap := *e.state
	snap.Metrics = make(map[string]float64, len(e.state.Metrics))
	for k, v := range e.state.Metrics {
		snap.Metrics[k] = v
	}
	snap.Times = make(map[string]float64, len(e.state.Times))
	for k, v := range e.state.Times {
		snap.Times[k] = v
	}
	return snap
}

// LoadState replaces the engine state so the next Run resumes from it
// instead of starting fresh. Epoch and Iteration pick up where the
// loaded state left off.
func (e *Engine) LoadState(s State) {
	if s.Metrics == nil {
		s.Metrics = make(map[string]float64)
	}
	if s.Times == nil {
		s.Times = make(map[string]float64)
	}
	e.state = &s
	e.restored = true
}

// SetSeed fixes the seed recorded in the run state. Loaders and process
// functions derive their shuffling from it.
func (e *Engine) SetSeed(seed int64) {
	e.state.Seed = seed
}

// On registers handler for every firing of ev.
func (e *Engine) On(ev Event, handler Handler) *Registration {
	return e.add(&Registration{event: ev, handler: handler})
}

// OnEvery registers handler for every n-th firing of ev.
func (e *Engine) OnEvery(ev Event, n int, handler Handler) *Registration {
	if n < 1 {
		n = 1
	}
	return e.add(&Registration{event: ev, handler: handler, every: n})
}

// OnOnce registers handler for the n-th firing of ev only.
func (e *Engine) OnOnce(ev Event, n int, handler Handler) *Registration {
	if n < 1 {
		n = 1
	}
	return e.add(&Registration{event: ev, handler: handler, nth: n})
}

// OnFiltered registers handler behind a custom filter. The filter is
// consulted on each firing of ev.
func (e *Engine) OnFiltered(ev Event, filter Filter, handler Handler) *Registration {
	return e.add(&Registration{event: ev, handler: handler, filter: filter})
}

func (e *Engine) add(r *Registration) *Registration {
	list := e.regs[r.event]
	n := 0
	for _, old := range list {
		if !old.removed {
			list[n] = old
			n++
		}
	}
	e.regs[r.event] = append(list[:n], r)
	return r
}

// Off removes a registration. Removing one that is already gone is a no-op.
func (e *Engine) Off(r *Registration) {
	if r != nil {
		r.removed = true
	}
}

// Has reports whether any handler is registered for ev.
func (e *Engine) Has(ev Event) bool {
	for _, r := range e.regs[ev] {
		if !r.removed {
			return true
		}
	}
	return false
}

// Fire dispatches ev to its handlers in registration order. The first
// handler error stops dispatch and is returned. Applications use it for
// events at or above UserEvent; the loop calls it for lifecycle events.
func (e *Engine) Fire(ev Event) error {
	for _, r := range e.regs[ev] {
		if r.removed {
			continue
		}
		r.seen++
		if r.filter != nil {
			if !r.filter(e, ev) {
				continue
			}
		} else if r.every > 0 {
			if r.seen%r.every != 0 {
				continue
			}
		} else if r.nth > 0 {
			if r.seen != r.nth {
				continue
			}
		}
		if err := r.handler(e); err != nil {
			return fmt.Errorf("%v handler: %w", ev, err)
		}
	}
	return nil
}

// Terminate stops the run after the current iteration. The epoch's
// EpochCompleted is skipped; Completed still fires.
func (e *Engine) Terminate() {
	e.terminate = true
}

// TerminateEpoch ends the current epoch after the current iteration.
// EpochCompleted fires and the run continues with the next epoch.
func (e *Engine) TerminateEpoch() {
	e.terminateEpoch = true
}

// Run drives maxEpochs epochs of loader through the process function.
// It resumes from a loaded state, otherwise it starts fresh. The first
// error from the process function or any handler aborts the run.
func (e *Engine) Run(loader Loader, maxEpochs int) error {
	if e.process == nil {
		return ErrNoProcess
	}
	if loader == nil {
		return ErrNoLoader
	}
	if maxEpochs < 1 {
		return ErrBadEpochs
	}
	if e.restored {
		e.restored = false
	} else {
		seed := e.state.Seed
		e.state = newState()
		e.state.Seed = seed
		e.state.RunID = uuid.NewString()
	}
	if e.state.RunID == "" {
		e.state.RunID = uuid.NewString()
	}
	e.state.MaxEpochs = maxEpochs
	if sized, ok := loader.(Sized); ok {
		if n := sized.Len(); n > 0 {
			e.state.EpochLength = n
		}
	}
	e.terminate = false
	e.terminateEpoch = false
	for _, list := range e.regs {
		for _, r := range list {
			r.seen = 0
		}
	}

	started := time.Now()
	if err := e.Fire(Started); err != nil {
		return err
	}
	for e.state.Epoch < maxEpochs && !e.terminate {
		e.state.Epoch++
		epochStarted := time.Now()
		if err := e.Fire(EpochStarted); err != nil {
			return err
		}
		loader.Reset()
		var count int
		for !e.terminate && !e.terminateEpoch {
			batch, ok := loader.Next()
			if !ok {
				if e.state.EpochLength == 0 {
					e.state.EpochLength = count
				}
				break
			}
			e.state.Iteration++
			count++
			e.state.Batch = batch
			if err := e.Fire(IterationStarted); err != nil {
				return err
			}
			out, err := e.process(e, batch)
			if err != nil {
				return fmt.Errorf("process epoch %d iteration %d: %w",
					e.state.Epoch, e.state.Iteration, err)
			}
			e.state.Output = out
			if err := e.Fire(IterationCompleted); err != nil {
				return err
			}
		}
		e.terminateEpoch = false
		e.state.Times["epoch"] = time.Since(epochStarted).Seconds()
		if e.terminate {
			break
		}
		if err := e.Fire(EpochCompleted); err != nil {
			return err
		}
	}
	e.terminate = false
	e.state.Times["total"] = time.Since(started).Seconds()
	return e.Fire(Completed)
}
