// Package clinical defines the shared data model for the triage engine:
// classifier findings, urgency assessments, and the enumerations both are
// built from. These are pure domain types with no storage or transport
// knowledge; repositories serialize them at their own boundaries.
package clinical

import "fmt"

// Finding is a single condition detected by the external image classifier.
// Immutable once produced for a given scan.
type Finding struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// Validate checks that a finding is well formed before it enters the engine.
func (f Finding) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("finding name is required")
	}
	if f.Confidence < 0 || f.Confidence > 1 {
		return fmt.Errorf("finding %q: confidence %v outside [0,1]", f.Name, f.Confidence)
	}
	return nil
}

// ValidateFindings validates a full classifier result. An empty list is valid
// (a normal-appearing study).
func ValidateFindings(findings []Finding) error {
	for _, f := range findings {
		if err := f.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Action is the recommended clinical action attached to an assessment.
type Action string

const (
	ActionImmediate Action = "immediate"
	ActionUrgent    Action = "urgent"
	ActionRoutine   Action = "routine"
)

// Valid reports whether a is one of the three recognized actions.
func (a Action) Valid() bool {
	return a == ActionImmediate || a == ActionUrgent || a == ActionRoutine
}

// Confidence expresses how much trust to place in an assessment's reasoning.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Valid reports whether c is one of the three recognized confidence levels.
func (c Confidence) Valid() bool {
	return c == ConfidenceHigh || c == ConfidenceMedium || c == ConfidenceLow
}

// Assessment is the final urgency verdict for one scan. It is produced exactly
// once per evaluation and is immutable afterwards; status transitions happen on
// the scan record, never here. The urgency score obeys the same rules whether
// the reasoning backend or the deterministic fallback produced it, so consumers
// never need to know which path ran.
type Assessment struct {
	UrgencyScore      float64    `json:"urgency_score"`
	Reasoning         string     `json:"reasoning"`
	RecommendedAction Action     `json:"recommended_action"`
	RiskFactors       []string   `json:"risk_factors"`
	Confidence        Confidence `json:"confidence"`

	// Provenance: how much retrieved context informed this assessment.
	RAGEnabled          bool `json:"rag_enabled"`
	HospitalCasesUsed   int  `json:"hospital_cases_used"`
	PatientHistoryFound bool `json:"patient_history_found"`
}

// ClampUrgency forces a backend-supplied score into the valid [1,10] band.
// Zero is reserved for the no-findings case and is only ever produced by the
// fallback scorer, never by clamping.
func ClampUrgency(score float64) float64 {
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}

// ActionForUrgency maps an urgency score to the action band used by the
// deterministic scorer: >=9 immediate, >=7 urgent, otherwise routine.
func ActionForUrgency(score float64) Action {
	switch {
	case score >= 9:
		return ActionImmediate
	case score >= 7:
		return ActionUrgent
	default:
		return ActionRoutine
	}
}
