package scan

import (
	"time"

	"github.com/google/uuid"

	"github.com/vitaltriage/api/pkg/clinical"
)

// Status tracks how far a scan is through the review cycle. A scan enters the
// worklist as pending and leaves it on any transition away from pending.
type Status string

const (
	StatusPending   Status = "pending"
	StatusReviewed  Status = "reviewed"
	StatusConfirmed Status = "confirmed"
	StatusDismissed Status = "dismissed"
)

var validStatuses = map[Status]bool{
	StatusPending:   true,
	StatusReviewed:  true,
	StatusConfirmed: true,
	StatusDismissed: true,
}

// Scan is one uploaded study plus the assessment produced for it at ingest
// time. The assessment fields are written once and never updated; only Status
// changes afterwards.
type Scan struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	FacilityID uuid.UUID  `db:"facility_id" json:"facility_id"`
	PatientID  *uuid.UUID `db:"patient_id" json:"patient_id,omitempty"`

	Findings []clinical.Finding `db:"findings" json:"findings"`

	UrgencyScore      float64             `db:"urgency_score" json:"urgency_score"`
	Reasoning         string              `db:"reasoning" json:"reasoning"`
	RecommendedAction clinical.Action     `db:"recommended_action" json:"recommended_action"`
	RiskFactors       []string            `db:"risk_factors" json:"risk_factors"`
	AIConfidence      clinical.Confidence `db:"ai_confidence" json:"ai_confidence"`

	RAGEnabled          bool `db:"rag_enabled" json:"rag_enabled"`
	HospitalCasesUsed   int  `db:"hospital_cases_used" json:"hospital_cases_used"`
	PatientHistoryFound bool `db:"patient_history_found" json:"patient_history_found"`

	Status     Status    `db:"status" json:"status"`
	UploadedAt time.Time `db:"uploaded_at" json:"uploaded_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Stats summarizes the whole scan table for the dashboard endpoint. Urgency
// bands: critical >=8, urgent 4-7, routine <4.
type Stats struct {
	TotalScans   int            `json:"total_scans"`
	AvgUrgency   float64        `json:"avg_urgency"`
	ByUrgency    map[string]int `json:"scans_by_urgency"`
	PendingScans int            `json:"pending_scans"`
}
