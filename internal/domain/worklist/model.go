package worklist

import (
	"time"

	"github.com/google/uuid"

	"github.com/vitaltriage/api/pkg/clinical"
)

// QueueEntry is one pending scan as the reading radiologist sees it: the scan
// plus the denormalized facility and patient context needed to pick what to
// read next. WaitMinutes is computed at query time, never stored.
type QueueEntry struct {
	ScanID       uuid.UUID `json:"scan_id"`
	FacilityID   uuid.UUID `json:"facility_id"`
	FacilityName string    `json:"facility_name"`

	PatientIdentifier *string `json:"patient_identifier,omitempty"`
	PatientName       *string `json:"patient_name,omitempty"`
	PatientAge        *int    `json:"patient_age,omitempty"`

	Findings          []clinical.Finding  `json:"findings"`
	UrgencyScore      float64             `json:"urgency_score"`
	RecommendedAction clinical.Action     `json:"recommended_action"`
	RiskFactors       []string            `json:"risk_factors"`
	AIConfidence      clinical.Confidence `json:"ai_confidence"`

	UploadedAt  time.Time `json:"uploaded_at"`
	WaitMinutes int       `json:"wait_minutes"`
}
