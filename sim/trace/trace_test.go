package trace

import (
	"testing"
)

func TestSimulationTrace_RecordChoice_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for decisions
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})

	// WHEN a choice record is recorded
	st.RecordChoice(ChoiceRecord{
		NurseID:        7,
		Clock:          12.5,
		NurseArm:       "treated",
		Candidates:     []CandidateScore{{ShiftID: 3, Probability: 0.6}},
		NoChoiceProb:   0.4,
		ChosenPosition: 0,
		ChosenShift:    3,
	})

	// THEN the trace contains one choice record with correct data
	if len(st.Choices) != 1 {
		t.Fatalf("expected 1 choice, got %d", len(st.Choices))
	}
	if st.Choices[0].NurseID != 7 {
		t.Errorf("expected nurse 7, got %d", st.Choices[0].NurseID)
	}
	if st.Choices[0].ChosenShift != 3 {
		t.Errorf("expected shift 3, got %d", st.Choices[0].ChosenShift)
	}
}

func TestIsValidTraceLevel(t *testing.T) {
	tests := []struct {
		level string
		want  bool
	}{
		{"", true},
		{"none", true},
		{"decisions", true},
		{"verbose", false},
		{"Decisions", false},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := IsValidTraceLevel(tt.level); got != tt.want {
				t.Errorf("IsValidTraceLevel(%q) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestTraceLevel_Enabled(t *testing.T) {
	if TraceLevelNone.Enabled() {
		t.Error("none must not be enabled")
	}
	if TraceLevel("").Enabled() {
		t.Error("empty level must not be enabled")
	}
	if !TraceLevelDecisions.Enabled() {
		t.Error("decisions must be enabled")
	}
}
