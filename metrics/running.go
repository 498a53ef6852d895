package metrics

import "fmt"

// RunningAverage smooths a scalar across iterations with exponential
// decay: after priming on the first sample, each update moves the value
// by (1-Alpha) toward the new sample. The sample comes from Source when
// set (the source metric is updated first, then its Compute value is
// taken), from Transform when set, and otherwise straight from the
// output, which must then be a float64. Trainer engines publish the
// batch loss that way.
type RunningAverage struct {
	Alpha     float64
	Source    Metric
	Transform func(output interface{}) (float64, error)

	value  float64
	primed bool
}

// NewRunningAverage smooths the raw float64 output. Alphas outside (0,1)
// fall back to 0.98.
func NewRunningAverage(alpha float64) *RunningAverage {
	if alpha <= 0 || alpha >= 1 {
		alpha = 0.98
	}
	return &RunningAverage{Alpha: alpha}
}

func (r *RunningAverage) Reset() {
	if r.Source != nil {
		r.Source.Reset()
	}
	r.value = 0
	r.primed = false
}

func (r *RunningAverage) sample(output interface{}) (float64, error) {
	switch {
	case r.Source != nil:
		if err := r.Source.Update(output); err != nil {
			return 0, err
		}
		return r.Source.Compute()
	case r.Transform != nil:
		return r.Transform(output)
	}
	v, ok := output.(float64)
	if !ok {
		return 0, fmt.Errorf("running average: want float64 output, got %T", output)
	}
	return v, nil
}

func (r *RunningAverage) Update(output interface{}) error {
	v, err := r.sample(output)
	if err != nil {
		return err
	}
	if !r.primed {
		r.value, r.primed = v, true
		return nil
	}
	r.value = r.Alpha*r.value + (1-r.Alpha)*v
	return nil
}

func (r *RunningAverage) Compute() (float64, error) {
	if !r.primed {
		return 0, ErrNoUpdates
	}
	return r.value, nil
}
