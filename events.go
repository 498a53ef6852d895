package engine

import "strconv"

// Event names a point in the run lifecycle at which handlers fire.
type Event byte

const (
	// Started fires once, before the first epoch.
	Started Event = iota
	// EpochStarted fires at the beginning of every epoch.
	EpochStarted
	// IterationStarted fires after a batch is loaded, before the process function runs.
	IterationStarted
	// IterationCompleted fires after the process function returns.
	IterationCompleted
	// EpochCompleted fires at the end of every epoch.
	EpochCompleted
	// Completed fires once, after the final epoch or after Terminate.
	Completed
)

// UserEvent is the first event value free for application-defined events.
// Custom events are fired with Engine.Fire.
const UserEvent Event = 32

var eventNames = [...]string{
	Started:            "Started",
	EpochStarted:       "EpochStarted",
	IterationStarted:   "IterationStarted",
	IterationCompleted: "IterationCompleted",
	EpochCompleted:     "EpochCompleted",
	Completed:          "Completed",
}

// String names the event for logs and error messages.
func (ev Event) String() string {
	if int(ev) < len(eventNames) {
		return eventNames[ev]
	}
	if ev >= UserEvent {
		return "UserEvent(" + strconv.Itoa(int(ev-UserEvent)) + ")"
	}
	return "Event(" + strconv.Itoa(int(ev)) + ")"
}
