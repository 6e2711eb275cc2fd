// Package trace provides decision-trace recording for choice-model analysis.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// NoChoice is the ChosenPosition of a nurse who left without booking.
const NoChoice = -1

// CandidateScore captures one shift shown to a nurse, in ranked order.
type CandidateScore struct {
	ShiftID     int
	Utility     float64 // effective utility used for the choice weight
	Boosted     bool    // promoted for this nurse
	Treated     bool    // shift arm is Treated (always false under customer randomization)
	Probability float64 // normalized choice probability
}

// ChoiceRecord captures a single nurse's consideration set and outcome.
type ChoiceRecord struct {
	NurseID        int
	Clock          float64
	NurseArm       string
	Available      int              // open shifts at arrival
	Candidates     []CandidateScore // consideration set, best position first
	NoChoiceProb   float64          // probability mass of the outside option
	ChosenPosition int              // index into Candidates, or NoChoice
	ChosenShift    int              // shift ID, or NoChoice
}
