package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalDecisions       int
	BookedCount          int
	NoChoiceCount        int // nurse saw shifts but took the outside option
	EmptyMarketCount     int // nurse saw no open shifts
	MeanChosenPosition   float64
	MeanConsiderationSet float64
	// TreatedShare is the fraction of all consideration-set slots held by
	// treated shifts. Zero under customer randomization.
	TreatedShare         float64
	PositionDistribution map[int]int // chosen position → count
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		PositionDistribution: make(map[int]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalDecisions = len(st.Choices)
	slots, treatedSlots, positionSum := 0, 0, 0
	for _, c := range st.Choices {
		slots += len(c.Candidates)
		for _, cand := range c.Candidates {
			if cand.Treated {
				treatedSlots++
			}
		}
		switch {
		case len(c.Candidates) == 0:
			summary.EmptyMarketCount++
		case c.ChosenPosition == NoChoice:
			summary.NoChoiceCount++
		default:
			summary.BookedCount++
			positionSum += c.ChosenPosition
			summary.PositionDistribution[c.ChosenPosition]++
		}
	}

	if summary.BookedCount > 0 {
		summary.MeanChosenPosition = float64(positionSum) / float64(summary.BookedCount)
	}
	if summary.TotalDecisions > 0 {
		summary.MeanConsiderationSet = float64(slots) / float64(summary.TotalDecisions)
	}
	if slots > 0 {
		summary.TreatedShare = float64(treatedSlots) / float64(slots)
	}
	return summary
}
