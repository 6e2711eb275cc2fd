// Package sim provides the core discrete-event simulation engine for a
// two-sided shift-booking marketplace under experimental treatment.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - entity.go: Shifts (Open ↔ Filled) and nurses, and the arm they carry
//   - event.go: Event types that drive the simulation (Arrival, Release)
//   - simulator.go: The event loop, arrival handling, and booking
//
// # Architecture
//
// One Simulator owns everything a run mutates: the ShiftStore, the
// EventClock, and a PartitionedRNG whose named streams keep shift
// utilities, arm assignment, arrivals, choices and fill durations
// independent of one another. Runs share nothing, so separate seeds can be
// simulated in parallel.
//
// Analysis lives in sub-packages that consume a finished SimulationResult:
//   - sim/metrics/: per-arm outcomes, lift, naive standard error
//   - sim/bootstrap/: block bootstrap of the lift
//   - sim/workload/: arrival processes and fill durations
//   - sim/trace/: decision trace recording
//
// # Key Types
//
//   - Config: the typed, validated run configuration (LoadConfig, DefaultConfig)
//   - ChoiceEngine: ranking, consideration-set truncation and logit choice
//   - Assigner: listing or customer randomization
//   - SimulationResult: ordered bookings, arrivals and the final shift snapshot
package sim
