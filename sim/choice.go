package sim

import (
	"math"
	"math/rand"
	"sort"
)

// NoChoice is the ChosenPosition of a nurse who leaves without booking.
const NoChoice = -1

// Candidate is one ranked entry of a nurse's consideration set.
type Candidate struct {
	Shift    Shift
	Boosted  bool    // promoted for this nurse
	Utility  float64 // effective utility: base plus treatment boost when boosted
	tieBreak float64
}

// ChoiceOutcome is the resolved decision of one nurse.
type ChoiceOutcome struct {
	Candidates     []Candidate // consideration set in rank order, at most k
	Probabilities  []float64   // choice probability per candidate position
	NoChoiceProb   float64     // probability of the outside option
	ChosenPosition int         // 0-based position in Candidates, or NoChoice
}

// Booked reports whether the nurse chose a shift.
func (o ChoiceOutcome) Booked() bool {
	return o.ChosenPosition != NoChoice
}

// Chosen returns the selected candidate. Only valid when Booked.
func (o ChoiceOutcome) Chosen() Candidate {
	return o.Candidates[o.ChosenPosition]
}

// ChoiceEngine ranks open shifts for an arriving nurse, truncates to the
// consideration set, and samples a position-weighted logit choice against an
// outside option. All draws come from a single stream so a run is
// reproducible given its seed.
type ChoiceEngine struct {
	k             int
	weights       []float64
	outsideWeight float64
	rule          RankingRule
	mode          RandomizationMode
	boost         float64
	rng           *rand.Rand
}

// NewChoiceEngine creates a ChoiceEngine from a validated config.
func NewChoiceEngine(cfg Config, rng *rand.Rand) *ChoiceEngine {
	cfg = cfg.Normalize()
	return &ChoiceEngine{
		k:             cfg.K,
		weights:       cfg.PositionWeights[:cfg.K],
		outsideWeight: cfg.OutsideOptionWeight,
		rule:          cfg.RankingRule,
		mode:          cfg.Mode,
		boost:         cfg.TreatmentBoost,
		rng:           rng,
	}
}

// IsBoosted reports whether shift is promoted in nurse's ranking. Under
// listing randomization the shift's own arm decides; under customer
// randomization only treated nurses see the Boosted subset promoted.
func IsBoosted(mode RandomizationMode, shift Shift, nurse Nurse) bool {
	if mode == CustomerRandomization {
		return nurse.Arm == Treated && shift.Boosted
	}
	return shift.Arm == Treated
}

// Rank orders available shifts for nurse. One tie-break value is drawn per
// shift, in the order given, on every call.
func (c *ChoiceEngine) Rank(available []Shift, nurse Nurse) []Candidate {
	ranked := make([]Candidate, len(available))
	for i, sh := range available {
		boosted := IsBoosted(c.mode, sh, nurse)
		u := sh.BaseUtility
		if boosted {
			u += c.boost
		}
		ranked[i] = Candidate{Shift: sh, Boosted: boosted, Utility: u, tieBreak: c.rng.Float64()}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return c.less(ranked[i], ranked[j])
	})
	return ranked
}

func (c *ChoiceEngine) less(a, b Candidate) bool {
	if c.rule == RankUtility {
		if a.Utility != b.Utility {
			return a.Utility > b.Utility
		}
		if a.Boosted != b.Boosted {
			return a.Boosted
		}
	} else {
		if a.Boosted != b.Boosted {
			return a.Boosted
		}
		if a.Shift.BaseUtility != b.Shift.BaseUtility {
			return a.Shift.BaseUtility > b.Shift.BaseUtility
		}
	}
	if a.tieBreak != b.tieBreak {
		return a.tieBreak < b.tieBreak
	}
	return a.Shift.ID < b.Shift.ID
}

// Choose ranks available shifts, keeps the first k, and samples one outcome.
// An empty market yields NoChoice without consuming a choice draw.
func (c *ChoiceEngine) Choose(available []Shift, nurse Nurse) ChoiceOutcome {
	ranked := c.Rank(available, nurse)
	if len(ranked) > c.k {
		ranked = ranked[:c.k]
	}
	out := ChoiceOutcome{Candidates: ranked, ChosenPosition: NoChoice, NoChoiceProb: 1}
	if len(ranked) == 0 {
		return out
	}

	probs, outside := ChoiceProbabilities(ranked, c.weights, c.outsideWeight)
	if probs == nil {
		return out
	}
	out.Probabilities = probs
	out.NoChoiceProb = outside
	out.ChosenPosition = sampleCategorical(c.rng, probs, outside)
	return out
}

// ChoiceProbabilities returns the position-weighted logit probability of each
// candidate and of the outside option: w_i = weights[i]·exp(u_i) against
// outsideWeight·exp(0). Returns nil when every weight is zero.
func ChoiceProbabilities(candidates []Candidate, weights []float64, outsideWeight float64) ([]float64, float64) {
	// Shift logits by their max (floored at the outside option's 0) so exp
	// cannot overflow.
	m := 0.0
	for _, cand := range candidates {
		m = math.Max(m, cand.Utility)
	}
	probs := make([]float64, len(candidates))
	outside := outsideWeight * math.Exp(-m)
	total := outside
	for i, cand := range candidates {
		probs[i] = weights[i] * math.Exp(cand.Utility-m)
		total += probs[i]
	}
	if !(total > 0) || math.IsInf(total, 0) {
		return nil, 1
	}
	for i := range probs {
		probs[i] /= total
	}
	return probs, outside / total
}

// sampleCategorical returns the index of the drawn candidate, or NoChoice.
func sampleCategorical(rng *rand.Rand, probs []float64, outside float64) int {
	r := rng.Float64()
	cum := 0.0
	last := NoChoice
	for i, p := range probs {
		if p <= 0 {
			continue
		}
		cum += p
		last = i
		if r < cum {
			return i
		}
	}
	if outside > 0 {
		return NoChoice
	}
	// Rounding left r past the cumulative sum with no outside option.
	return last
}
