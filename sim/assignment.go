package sim

import "math/rand"

// Assigner draws experiment arms. Under listing randomization each shift gets
// an arm once, at creation; under customer randomization each nurse gets an
// arm on arrival and shifts only carry the Boosted flag.
//
// Shift draws and nurse draws use separate streams, so a market (its shifts,
// arms and boosted subset) can be held fixed while nurse arms vary.
type Assigner struct {
	mode          RandomizationMode
	treatmentProb float64
	boostedShare  float64
	shiftRNG      *rand.Rand
	nurseRNG      *rand.Rand
}

// NewAssigner creates an Assigner from a validated config.
func NewAssigner(cfg Config, shiftRNG, nurseRNG *rand.Rand) *Assigner {
	return &Assigner{
		mode:          cfg.Normalize().Mode,
		treatmentProb: cfg.TreatmentProb,
		boostedShare:  cfg.BoostedShare,
		shiftRNG:      shiftRNG,
		nurseRNG:      nurseRNG,
	}
}

// ShiftArm returns the arm and Boosted flag for a newly created shift.
func (a *Assigner) ShiftArm() (Arm, bool) {
	if a.mode == CustomerRandomization {
		return Unassigned, a.shiftRNG.Float64() < a.boostedShare
	}
	if a.shiftRNG.Float64() < a.treatmentProb {
		return Treated, true
	}
	return Control, false
}

// NurseArm returns the arm of an arriving nurse. Only draws under customer
// randomization.
func (a *Assigner) NurseArm() Arm {
	if a.mode != CustomerRandomization {
		return Unassigned
	}
	if a.nurseRNG.Float64() < a.treatmentProb {
		return Treated
	}
	return Control
}
