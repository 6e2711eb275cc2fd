package sim

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// StateError reports an illegal shift state transition: booking a Filled
// shift or releasing an Open one. It indicates a scheduling bug and aborts
// the run.
type StateError struct {
	ShiftID int
	Op      string // "book" or "release"
	State   ShiftState
	Time    float64
}

func (e *StateError) Error() string {
	return fmt.Sprintf("shift %d: cannot %s at t=%.6f while %s", e.ShiftID, e.Op, e.Time, e.State)
}

// LogicError reports a violation of the event clock's ordering contract,
// e.g. scheduling an event before the current simulated time.
type LogicError struct {
	Op    string
	Time  float64
	Clock float64
}

func (e *LogicError) Error() string {
	return fmt.Sprintf("%s: event time %.6f precedes clock %.6f", e.Op, e.Time, e.Clock)
}
