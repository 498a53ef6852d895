package engine

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// ints is a sized loader over a fixed batch count.
type ints struct {
	n int
	i int
}

func (l *ints) Reset() { l.i = 0 }
func (l *ints) Next() (interface{}, bool) {
	if l.i >= l.n {
		return nil, false
	}
	l.i++
	return l.i - 1, true
}
func (l *ints) Len() int { return l.n }

// unsized has no Len so the engine has to learn the epoch length.
type unsized struct {
	n int
	i int
}

func (l *unsized) Reset() { l.i = 0 }
func (l *unsized) Next() (interface{}, bool) {
	if l.i >= l.n {
		return nil, false
	}
	l.i++
	return l.i - 1, true
}

var _ Sized = (*ints)(nil)

func record(e *Engine, log *[]string) {
	for _, ev := range []Event{Started, EpochStarted, IterationStarted, IterationCompleted, EpochCompleted, Completed} {
		ev := ev
		e.On(ev, func(e *Engine) error {
			*log = append(*log, fmt.Sprintf("%v/%d/%d", ev, e.State().Epoch, e.State().Iteration))
			return nil
		})
	}
}

func TestRunEventOrder(t *testing.T) {
	var log []string
	e := New(func(e *Engine, batch interface{}) (interface{}, error) {
		return nil, nil
	})
	record(e, &log)
	if err := e.Run(&ints{n: 2}, 2); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"Started/0/0",
		"EpochStarted/1/0",
		"IterationStarted/1/1", "IterationCompleted/1/1",
		"IterationStarted/1/2", "IterationCompleted/1/2",
		"EpochCompleted/1/2",
		"EpochStarted/2/2",
		"IterationStarted/2/3", "IterationCompleted/2/3",
		"IterationStarted/2/4", "IterationCompleted/2/4",
		"EpochCompleted/2/4",
		"Completed/2/4",
	}
	if got := strings.Join(log, " "); got != strings.Join(want, " ") {
		t.Errorf("event order:\ngot  %s\nwant %s", got, strings.Join(want, " "))
	}
}

func TestRunState(t *testing.T) {
	e := New(func(e *Engine, batch interface{}) (interface{}, error) {
		return batch.(int) * 10, nil
	})
	var lastBatch, lastOutput interface{}
	e.On(IterationCompleted, func(e *Engine) error {
		lastBatch = e.State().Batch
		lastOutput = e.State().Output
		return nil
	})
	if err := e.Run(&ints{n: 3}, 2); err != nil {
		t.Fatal(err)
	}
	s := e.State()
	if s.Epoch != 2 || s.Iteration != 6 || s.EpochLength != 3 || s.MaxEpochs != 2 {
		t.Errorf("state: epoch=%d iteration=%d length=%d max=%d", s.Epoch, s.Iteration, s.EpochLength, s.MaxEpochs)
	}
	if lastBatch != 2 || lastOutput != 20 {
		t.Errorf("batch=%v output=%v, want 2 and 20", lastBatch, lastOutput)
	}
	if s.RunID == "" {
		t.Error("run id not assigned")
	}
	if _, ok := s.Times["total"]; !ok {
		t.Error("total time not recorded")
	}
}

func TestEpochLengthLearned(t *testing.T) {
	e := New(func(e *Engine, batch interface{}) (interface{}, error) { return nil, nil })
	var atFirstEnd int
	e.OnOnce(EpochCompleted, 1, func(e *Engine) error {
		atFirstEnd = e.State().EpochLength
		return nil
	})
	if err := e.Run(&unsized{n: 4}, 2); err != nil {
		t.Fatal(err)
	}
	if atFirstEnd != 4 {
		t.Errorf("learned epoch length %d, want 4", atFirstEnd)
	}
}

func TestEpochIteration(t *testing.T) {
	e := New(func(e *Engine, batch interface{}) (interface{}, error) { return nil, nil })
	var got []int
	e.On(IterationStarted, func(e *Engine) error {
		got = append(got, e.State().EpochIteration())
		return nil
	})
	if err := e.Run(&ints{n: 3}, 2); err != nil {
		t.Fatal(err)
	}
	want := []int{1, 2, 3, 1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("epoch iteration %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestOnEvery(t *testing.T) {
	e := New(func(e *Engine, batch interface{}) (interface{}, error) { return nil, nil })
	var fired []int
	e.OnEvery(IterationCompleted, 3, func(e *Engine) error {
		fired = append(fired, e.State().Iteration)
		return nil
	})
	if err := e.Run(&ints{n: 5}, 2); err != nil {
		t.Fatal(err)
	}
	want := []int{3, 6, 9}
	if len(fired) != len(want) {
		t.Fatalf("fired %v, want %v", fired, want)
	}
	for i := range want {
		if fired[i] != want[i] {
			t.Errorf("firing %d at iteration %d, want %d", i, fired[i], want[i])
		}
	}
}

func TestOnOnce(t *testing.T) {
	e := New(func(e *Engine, batch interface{}) (interface{}, error) { return nil, nil })
	var fired []int
	e.OnOnce(EpochCompleted, 2, func(e *Engine) error {
		fired = append(fired, e.State().Epoch)
		return nil
	})
	if err := e.Run(&ints{n: 1}, 4); err != nil {
		t.Fatal(err)
	}
	if len(fired) != 1 || fired[0] != 2 {
		t.Errorf("fired at epochs %v, want [2]", fired)
	}
}

func TestOnFiltered(t *testing.T) {
	e := New(func(e *Engine, batch interface{}) (interface{}, error) { return nil, nil })
	var fired []int
	e.OnFiltered(EpochCompleted, func(e *Engine, ev Event) bool {
		return e.State().Epoch%2 == 0
	}, func(e *Engine) error {
		fired = append(fired, e.State().Epoch)
		return nil
	})
	if err := e.Run(&ints{n: 1}, 5); err != nil {
		t.Fatal(err)
	}
	want := []int{2, 4}
	if len(fired) != len(want) {
		t.Fatalf("fired at epochs %v, want %v", fired, want)
	}
}

func TestCountersResetBetweenRuns(t *testing.T) {
	e := New(func(e *Engine, batch interface{}) (interface{}, error) { return nil, nil })
	var fired int
	e.OnOnce(EpochCompleted, 1, func(e *Engine) error {
		fired++
		return nil
	})
	if err := e.Run(&ints{n: 1}, 2); err != nil {
		t.Fatal(err)
	}
	if err := e.Run(&ints{n: 1}, 2); err != nil {
		t.Fatal(err)
	}
	if fired != 2 {
		t.Errorf("once handler fired %d times over two runs, want 2", fired)
	}
}

func TestOff(t *testing.T) {
	e := New(func(e *Engine, batch interface{}) (interface{}, error) { return nil, nil })
	var fired int
	reg := e.On(EpochCompleted, func(e *Engine) error {
		fired++
		return nil
	})
	e.OnOnce(EpochCompleted, 2, func(e *Engine) error {
		e.Off(reg)
		return nil
	})
	if !e.Has(EpochCompleted) {
		t.Fatal("Has(EpochCompleted) = false before run")
	}
	if err := e.Run(&ints{n: 1}, 5); err != nil {
		t.Fatal(err)
	}
	if fired != 2 {
		t.Errorf("removed handler fired %d times, want 2", fired)
	}
	e.Off(reg)
	e.Off(nil)
}

func TestTerminate(t *testing.T) {
	var log []string
	e := New(func(e *Engine, batch interface{}) (interface{}, error) { return nil, nil })
	record(e, &log)
	e.On(IterationCompleted, func(e *Engine) error {
		if e.State().Iteration == 3 {
			e.Terminate()
		}
		return nil
	})
	if err := e.Run(&ints{n: 4}, 3); err != nil {
		t.Fatal(err)
	}
	joined := strings.Join(log, " ")
	if !strings.HasSuffix(joined, "IterationCompleted/1/3 Completed/1/3") {
		t.Errorf("tail after terminate: %s", joined)
	}
	if strings.Contains(joined, "IterationStarted/1/4") {
		t.Error("iteration ran past Terminate")
	}
	if strings.Contains(joined, "EpochCompleted") {
		t.Error("EpochCompleted fired for terminated epoch")
	}
	if e.State().Epoch != 1 {
		t.Errorf("epoch = %d after terminate, want 1", e.State().Epoch)
	}
}

func TestTerminateEpoch(t *testing.T) {
	e := New(func(e *Engine, batch interface{}) (interface{}, error) { return nil, nil })
	var completed []int
	e.On(IterationCompleted, func(e *Engine) error {
		if e.State().Epoch == 1 && e.State().EpochIteration() == 2 {
			e.TerminateEpoch()
		}
		return nil
	})
	e.On(EpochCompleted, func(e *Engine) error {
		completed = append(completed, e.State().Iteration)
		return nil
	})
	if err := e.Run(&ints{n: 4}, 2); err != nil {
		t.Fatal(err)
	}
	// epoch 1 cut short at 2 iterations, epoch 2 full length
	if len(completed) != 2 || completed[0] != 2 || completed[1] != 6 {
		t.Errorf("iterations at EpochCompleted: %v, want [2 6]", completed)
	}
}

func TestProcessError(t *testing.T) {
	boom := errors.New("boom")
	e := New(func(e *Engine, batch interface{}) (interface{}, error) {
		if e.State().Iteration == 2 {
			return nil, boom
		}
		return nil, nil
	})
	var completedFired bool
	e.On(Completed, func(e *Engine) error {
		completedFired = true
		return nil
	})
	err := e.Run(&ints{n: 3}, 2)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
	if !strings.Contains(err.Error(), "epoch 1 iteration 2") {
		t.Errorf("err = %v, want epoch and iteration in message", err)
	}
	if completedFired {
		t.Error("Completed fired after process error")
	}
}

func TestHandlerError(t *testing.T) {
	boom := errors.New("boom")
	e := New(func(e *Engine, batch interface{}) (interface{}, error) { return nil, nil })
	e.On(EpochCompleted, func(e *Engine) error { return boom })
	err := e.Run(&ints{n: 1}, 2)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
	if !strings.Contains(err.Error(), "EpochCompleted") {
		t.Errorf("err = %v, want event name in message", err)
	}
}

func TestRunValidation(t *testing.T) {
	e := New(nil)
	if err := e.Run(&ints{n: 1}, 1); !errors.Is(err, ErrNoProcess) {
		t.Errorf("nil process: err = %v", err)
	}
	e = New(func(e *Engine, batch interface{}) (interface{}, error) { return nil, nil })
	if err := e.Run(nil, 1); !errors.Is(err, ErrNoLoader) {
		t.Errorf("nil loader: err = %v", err)
	}
	if err := e.Run(&ints{n: 1}, 0); !errors.Is(err, ErrBadEpochs) {
		t.Errorf("zero epochs: err = %v", err)
	}
}

func TestEmptyLoader(t *testing.T) {
	var log []string
	e := New(func(e *Engine, batch interface{}) (interface{}, error) {
		t.Error("process called on empty loader")
		return nil, nil
	})
	record(e, &log)
	if err := e.Run(&ints{n: 0}, 2); err != nil {
		t.Fatal(err)
	}
	want := "Started/0/0 EpochStarted/1/0 EpochCompleted/1/0 EpochStarted/2/0 EpochCompleted/2/0 Completed/2/0"
	if got := strings.Join(log, " "); got != want {
		t.Errorf("empty loader events:\ngot  %s\nwant %s", got, want)
	}
}

func TestUserEvent(t *testing.T) {
	const validate = UserEvent + 1
	e := New(func(e *Engine, batch interface{}) (interface{}, error) { return nil, nil })
	var fired int
	e.On(validate, func(e *Engine) error {
		fired++
		return nil
	})
	e.On(EpochCompleted, func(e *Engine) error {
		return e.Fire(validate)
	})
	if err := e.Run(&ints{n: 1}, 3); err != nil {
		t.Fatal(err)
	}
	if fired != 3 {
		t.Errorf("user event fired %d times, want 3", fired)
	}
	if validate.String() != "UserEvent(1)" {
		t.Errorf("user event name = %s", validate.String())
	}
}

func TestResume(t *testing.T) {
	e := New(func(e *Engine, batch interface{}) (interface{}, error) { return nil, nil })
	if err := e.Run(&ints{n: 2}, 2); err != nil {
		t.Fatal(err)
	}
	snap := e.StateSnapshot()
	if snap.Epoch != 2 || snap.Iteration != 4 {
		t.Fatalf("snapshot epoch=%d iteration=%d", snap.Epoch, snap.Iteration)
	}

	resumed := New(func(e *Engine, batch interface{}) (interface{}, error) { return nil, nil })
	var epochs []int
	resumed.On(EpochStarted, func(e *Engine) error {
		epochs = append(epochs, e.State().Epoch)
		return nil
	})
	resumed.LoadState(snap)
	if err := resumed.Run(&ints{n: 2}, 4); err != nil {
		t.Fatal(err)
	}
	want := []int{3, 4}
	if len(epochs) != 2 || epochs[0] != 3 || epochs[1] != 4 {
		t.Errorf("resumed epochs %v, want %v", epochs, want)
	}
	if resumed.State().RunID != snap.RunID {
		t.Error("resume changed run id")
	}
	if resumed.State().Iteration != 8 {
		t.Errorf("resumed iteration = %d, want 8", resumed.State().Iteration)
	}
}

func TestResumeAlreadyDone(t *testing.T) {
	e := New(func(e *Engine, batch interface{}) (interface{}, error) {
		t.Error("process called though run was already complete")
		return nil, nil
	})
	var completed int
	e.On(Completed, func(e *Engine) error {
		completed++
		return nil
	})
	e.LoadState(State{Epoch: 3, Iteration: 6})
	if err := e.Run(&ints{n: 2}, 3); err != nil {
		t.Fatal(err)
	}
	if completed != 1 {
		t.Errorf("Completed fired %d times, want 1", completed)
	}
}

func TestSnapshotIsolated(t *testing.T) {
	e := New(func(e *Engine, batch interface{}) (interface{}, error) { return nil, nil })
	if err := e.Run(&ints{n: 1}, 1); err != nil {
		t.Fatal(err)
	}
	e.State().Metrics["acc"] = 0.5
	snap := e.StateSnapshot()
	snap.Metrics["acc"] = 0.9
	if e.State().Metrics["acc"] != 0.5 {
		t.Error("snapshot shares metrics map with live state")
	}
}

func TestSetSeedSurvivesRun(t *testing.T) {
	e := New(func(e *Engine, batch interface{}) (interface{}, error) { return nil, nil })
	e.SetSeed(42)
	if err := e.Run(&ints{n: 1}, 1); err != nil {
		t.Fatal(err)
	}
	if e.State().Seed != 42 {
		t.Errorf("seed = %d after run, want 42", e.State().Seed)
	}
}

func TestEventString(t *testing.T) {
	for ev, want := range map[Event]string{
		Started:            "Started",
		EpochStarted:       "EpochStarted",
		IterationStarted:   "IterationStarted",
		IterationCompleted: "IterationCompleted",
		EpochCompleted:     "EpochCompleted",
		Completed:          "Completed",
		UserEvent:          "UserEvent(0)",
		Event(7):           "Event(7)",
	} {
		if got := ev.String(); got != want {
			t.Errorf("Event(%d).String() = %q, want %q", byte(ev), got, want)
		}
	}
}
