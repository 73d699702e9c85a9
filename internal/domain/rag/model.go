package rag

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// HospitalCase is one finalized scan in institutional memory. Rows are
// append-only: a case is written once when its scan is finalized and never
// updated afterwards.
type HospitalCase struct {
	ID                     uuid.UUID `db:"id" json:"id"`
	CaseID                 string    `db:"case_id" json:"case_id"`
	Conditions             []string  `db:"conditions" json:"conditions"`
	UrgencyScore           float64   `db:"urgency_score" json:"urgency_score"`
	Outcome                string    `db:"outcome" json:"outcome"`
	TimeToTreatmentMinutes float64   `db:"time_to_treatment_minutes" json:"time_to_treatment_minutes"`
	FacilityType           string    `db:"facility_type" json:"facility_type"`
	Complications          []string  `db:"complications" json:"complications"`
	PatientAgeRange        string    `db:"patient_age_range" json:"patient_age_range,omitempty"`
	FinalDiagnosis         string    `db:"final_diagnosis" json:"final_diagnosis,omitempty"`
	ClinicalNotes          string    `db:"clinical_notes" json:"clinical_notes,omitempty"`
	SearchContent          string    `db:"search_content" json:"-"`
	CreatedAt              time.Time `db:"created_at" json:"created_at"`

	// Similarity is populated on retrieval only, monotonic in the match score.
	Similarity float64 `db:"-" json:"similarity,omitempty"`
}

// DeriveSearchContent builds the keyword-matching text from the case fields.
// Deterministic so re-deriving for the same case always yields the same text.
func (c *HospitalCase) DeriveSearchContent() string {
	return fmt.Sprintf("Conditions: %s. Urgency: %g. Outcome: %s. %s",
		strings.Join(c.Conditions, ", "), c.UrgencyScore, c.Outcome, c.ClinicalNotes)
}

// ScanEntry is one prior scan inside a patient's history. Stored as JSONB
// inside patient_record rows; typed everywhere else.
type ScanEntry struct {
	Date                  string   `json:"date,omitempty"`
	ScanID                string   `json:"scan_id,omitempty"`
	Findings              []string `json:"findings,omitempty"`
	Urgency               float64  `json:"urgency,omitempty"`
	Outcome               string   `json:"outcome,omitempty"`
	Complications         []string `json:"complications,omitempty"`
	TreatmentDurationDays int      `json:"treatment_duration_days,omitempty"`
}

// PatientRecord is one physical history row, written once per visit. The
// logical patient history is the merge of all records for an identifier,
// computed at read time by MergeHistory.
type PatientRecord struct {
	ID                 uuid.UUID   `db:"id" json:"id"`
	PatientID          string      `db:"patient_id" json:"patient_id"`
	Age                *int        `db:"age" json:"age,omitempty"`
	Gender             *string     `db:"gender" json:"gender,omitempty"`
	ChronicConditions  []string    `db:"chronic_conditions" json:"chronic_conditions"`
	RiskFactors        []string    `db:"risk_factors" json:"risk_factors"`
	ScanHistory        []ScanEntry `db:"scan_history" json:"scan_history"`
	MedicationHistory  []string    `db:"medication_history" json:"medication_history"`
	LastAdmissionDate  string      `db:"last_admission_date" json:"last_admission_date,omitempty"`
	TotalPreviousScans int         `db:"total_previous_scans" json:"total_previous_scans"`
	CreatedAt          time.Time   `db:"created_at" json:"created_at"`
}

// PatientHistory is the merged longitudinal view of one patient. A nil
// *PatientHistory means "no history on file", which is different from a
// history whose fields happen to be empty.
type PatientHistory struct {
	PatientID          string      `json:"patient_id"`
	Age                *int        `json:"age,omitempty"`
	Gender             *string     `json:"gender,omitempty"`
	ChronicConditions  []string    `json:"chronic_conditions"`
	RiskFactors        []string    `json:"risk_factors"`
	ScanHistory        []ScanEntry `json:"scan_history"`
	MedicationHistory  []string    `json:"medication_history"`
	LastAdmissionDate  string      `json:"last_admission_date,omitempty"`
	TotalPreviousScans int         `json:"total_previous_scans"`
}

// HasComplications reports whether any prior scan recorded complications.
func (h *PatientHistory) HasComplications() bool {
	for _, entry := range h.ScanHistory {
		if len(entry.Complications) > 0 {
			return true
		}
	}
	return false
}
