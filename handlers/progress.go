package handlers

import (
	"io"

	"github.com/cheggaaa/pb/v3"

	"github.com/neurlang/engine"
)

// ProgressBar renders one console bar per epoch, sized from the epoch
// length when the loader reports one. Writer overrides the output for
// quiet environments.
type ProgressBar struct {
	Writer io.Writer

	bar *pb.ProgressBar
}

func NewProgressBar() *ProgressBar { return &ProgressBar{} }

// Attach registers the bar lifecycle on the engine.
func (p *ProgressBar) Attach(e *engine.Engine) {
	finish := func(e *engine.Engine) error {
		if p.bar != nil {
			p.bar.Finish()
			p.bar = nil
		}
		return nil
	}
	e.On(engine.EpochStarted, func(e *engine.Engine) error {
		p.bar = pb.New(e.State().EpochLength)
		if p.Writer != nil {
			p.bar.SetWriter(p.Writer)
		}
		p.bar.Start()
		return nil
	})
	e.On(engine.IterationCompleted, func(e *engine.Engine) error {
		if p.bar != nil {
			p.bar.Increment()
		}
		return nil
	})
	e.On(engine.EpochCompleted, finish)
	e.On(engine.Completed, finish)
}
