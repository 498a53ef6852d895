package handlers

import (
	log "github.com/sirupsen/logrus"

	"github.com/neurlang/engine"
)

// MetricsLogger writes one structured log line per epoch carrying the
// run id, the epoch counters, the epoch duration and every entry of
// State.Metrics. Logger defaults to the logrus standard logger.
type MetricsLogger struct {
	Logger *log.Logger
}

func NewMetricsLogger() *MetricsLogger { return &MetricsLogger{} }

func (m *MetricsLogger) logger() *log.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return log.StandardLogger()
}

// Attach registers run and epoch log lines on the engine. Attach it
// after handlers that publish metrics so their values are on the record.
func (m *MetricsLogger) Attach(e *engine.Engine) {
	e.On(engine.Started, func(e *engine.Engine) error {
		s := e.State()
		m.logger().WithFields(log.Fields{
			"run_id":     s.RunID,
			"max_epochs": s.MaxEpochs,
			"epoch":      s.Epoch,
		}).Info("run started")
		return nil
	})
	e.On(engine.EpochCompleted, func(e *engine.Engine) error {
		s := e.State()
		fields := log.Fields{
			"run_id":        s.RunID,
			"epoch":         s.Epoch,
			"iteration":     s.Iteration,
			"epoch_seconds": s.Times["epoch"],
		}
		for name, value := range s.Metrics {
			fields[name] = value
		}
		m.logger().WithFields(fields).Info("epoch completed")
		return nil
	})
	e.On(engine.Completed, func(e *engine.Engine) error {
		s := e.State()
		m.logger().WithFields(log.Fields{
			"run_id":        s.RunID,
			"epoch":         s.Epoch,
			"iteration":     s.Iteration,
			"total_seconds": s.Times["total"],
		}).Info("run completed")
		return nil
	})
}
