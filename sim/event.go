package sim

import "github.com/sirupsen/logrus"

// Event defines the interface for all simulation events.
// Each event has a Timestamp in continuous simulated time and an Execute
// method that advances marketplace state when invoked. An Execute error
// aborts the run.
type Event interface {
	Timestamp() float64
	Execute(*Simulator) error
}

// ArrivalEvent represents a nurse arriving at the marketplace.
type ArrivalEvent struct {
	time    float64
	NurseID int
}

// Timestamp returns the scheduled time of the ArrivalEvent.
func (e *ArrivalEvent) Timestamp() float64 {
	return e.time
}

// Execute assigns the nurse an arm, schedules the next arrival, and resolves
// the nurse's choice against the currently open shifts.
func (e *ArrivalEvent) Execute(sim *Simulator) error {
	logrus.Debugf("<< Arrival: nurse %d at t=%.6f", e.NurseID, e.time)
	return sim.handleArrival(e)
}

// ReleaseEvent reopens a filled shift once its fill duration has elapsed.
type ReleaseEvent struct {
	time    float64
	ShiftID int
}

// Timestamp returns the scheduled time of the ReleaseEvent.
func (e *ReleaseEvent) Timestamp() float64 {
	return e.time
}

// Execute returns the shift to Open.
func (e *ReleaseEvent) Execute(sim *Simulator) error {
	logrus.Debugf("<< Release: shift %d at t=%.6f", e.ShiftID, e.time)
	return sim.store.Release(e.ShiftID)
}
